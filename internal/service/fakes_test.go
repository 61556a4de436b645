package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/scholaco/tracker/internal/domain"
	"github.com/scholaco/tracker/pkg/email"
)

type fakeUsers struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*domain.User
	createErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uuid.UUID]*domain.User{}}
}

func (r *fakeUsers) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.byID[u.ID] = u
	return nil
}

func (r *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
}

func (r *fakeUsers) GetByEmail(_ context.Context, addr string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if strings.EqualFold(u.Email, addr) {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
}

type fakeProfiles struct {
	byID      map[uuid.UUID]*domain.Profile
	createErr error
}

func (r *fakeProfiles) Create(_ context.Context, p *domain.Profile) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.byID[p.ID] = p
	return nil
}

func (r *fakeProfiles) GetByID(_ context.Context, id uuid.UUID) (*domain.Profile, error) {
	if p, ok := r.byID[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("profile: %w", domain.ErrNotFound)
}

type fakeSessions struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*domain.Session
}

func (r *fakeSessions) Create(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.byID[s.ID] = &cp
	return nil
}

func (r *fakeSessions) GetByID(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byID[id]; ok && s.ExpiresAt.After(time.Now()) {
		cp := *s
		return &cp, nil
	}
	return nil, fmt.Errorf("session not found or expired: %w", domain.ErrNotFound)
}

func (r *fakeSessions) GetByToken(_ context.Context, hash string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.byID {
		if s.RefreshTokenHash == hash && s.ExpiresAt.After(time.Now()) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("session not found or expired: %w", domain.ErrNotFound)
}

func (r *fakeSessions) Update(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[s.ID]; !ok {
		return fmt.Errorf("session: %w", domain.ErrNotFound)
	}
	cp := *s
	r.byID[s.ID] = &cp
	return nil
}

func (r *fakeSessions) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("session: %w", domain.ErrNotFound)
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeSessions) DeleteExpired(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.byID {
		if !s.ExpiresAt.After(time.Now()) {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

type sentReminder struct {
	to, app, org string
	days         int
}

type fakeMailer struct {
	mu        sync.Mutex
	welcomed  []string
	reminders []sentReminder
	err       error
}

func (m *fakeMailer) SendWelcome(_ context.Context, to, name string) (*email.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcomed = append(m.welcomed, to+":"+name)
	if m.err != nil {
		return nil, m.err
	}
	return &email.SendResult{Provider: "fake"}, nil
}

func (m *fakeMailer) SendDeadlineReminder(_ context.Context, to, appName, org string, _ time.Time, days int) (*email.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminders = append(m.reminders, sentReminder{to: to, app: appName, org: org, days: days})
	if m.err != nil {
		return nil, m.err
	}
	return &email.SendResult{Provider: "fake"}, nil
}

func (m *fakeMailer) SendApplicationSubmitted(context.Context, string, string) (*email.SendResult, error) {
	return &email.SendResult{Provider: "fake"}, nil
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

var (
	keyOnce sync.Once
	testKey *rsa.PrivateKey
)

func rsaKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	keyOnce.Do(func() {
		var err error
		testKey, err = rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
	})
	return testKey
}
