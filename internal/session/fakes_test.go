package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scholaco/tracker/internal/domain"
	"github.com/scholaco/tracker/pkg/email"
)

type memStore struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]*domain.Application
	clock     time.Time
	insertErr error
	selectErr error
}

func newMemStore() *memStore {
	return &memStore{
		rows:  map[uuid.UUID]*domain.Application{},
		clock: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) Select(_ context.Context, owner uuid.UUID) ([]*domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectErr != nil {
		return nil, s.selectErr
	}
	var out []*domain.Application
	for _, a := range s.rows {
		if a.UserID == owner {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) Insert(_ context.Context, owner uuid.UUID, f domain.ApplicationFields) (*domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	s.clock = s.clock.Add(time.Minute)
	a := &domain.Application{
		ID:           uuid.New(),
		UserID:       owner,
		Name:         f.Name,
		Organization: f.Organization,
		Amount:       f.Amount,
		Deadline:     f.Deadline,
		Status:       f.Status,
		Reminder:     f.Reminder,
		Notes:        f.Notes,
		CreatedAt:    s.clock,
	}
	s.rows[a.ID] = a
	cp := *a
	return &cp, nil
}

func (s *memStore) Update(_ context.Context, owner, id uuid.UUID, p domain.ApplicationPatch) (*domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[id]
	if !ok || a.UserID != owner {
		return nil, fmt.Errorf("application %s: %w", id, domain.ErrNotFound)
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Notes != nil {
		a.Notes = p.Notes
	}
	if p.ClearReminder {
		a.Reminder = nil
	} else if p.Reminder != nil {
		a.Reminder = p.Reminder
	}
	cp := *a
	return &cp, nil
}

func (s *memStore) Delete(_ context.Context, owner, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[id]
	if !ok || a.UserID != owner {
		return fmt.Errorf("application %s: %w", id, domain.ErrNotFound)
	}
	delete(s.rows, id)
	return nil
}

func (s *memStore) ListUpcomingDeadlines(context.Context, time.Time, time.Time) ([]*domain.UpcomingDeadline, error) {
	return nil, nil
}

func (s *memStore) has(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rows[id]
	return ok
}

type fakeResolver struct {
	users      map[uuid.UUID]*domain.User
	profiles   map[uuid.UUID]*domain.Profile
	profileErr error
}

func (r *fakeResolver) CurrentUser(_ context.Context, sessionID uuid.UUID) (*domain.User, error) {
	if u, ok := r.users[sessionID]; ok {
		return u, nil
	}
	return nil, domain.ErrUnauthenticated
}

func (r *fakeResolver) Profile(_ context.Context, userID uuid.UUID) (*domain.Profile, error) {
	if r.profileErr != nil {
		return nil, r.profileErr
	}
	if p, ok := r.profiles[userID]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

type fakeMailer struct {
	mu        sync.Mutex
	submitted []string
	err       error
}

func (m *fakeMailer) SendWelcome(context.Context, string, string) (*email.SendResult, error) {
	return &email.SendResult{}, nil
}

func (m *fakeMailer) SendDeadlineReminder(context.Context, string, string, string, time.Time, int) (*email.SendResult, error) {
	return &email.SendResult{}, nil
}

func (m *fakeMailer) SendApplicationSubmitted(_ context.Context, to, appName string) (*email.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitted = append(m.submitted, to+":"+appName)
	if m.err != nil {
		return nil, m.err
	}
	return &email.SendResult{Provider: "fake"}, nil
}

var errBoom = errors.New("boom")
