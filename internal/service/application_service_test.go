package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scholaco/tracker/internal/domain"
)

type staticIdentity struct {
	user *domain.User
}

func (i staticIdentity) CurrentUser(context.Context) (*domain.User, error) {
	if i.user == nil {
		return nil, domain.ErrUnauthenticated
	}
	return i.user, nil
}

// recordingStore hands back canned rows and remembers what it was asked.
type recordingStore struct {
	rows      []*domain.Application
	selectErr error
	owner     uuid.UUID
	fields    domain.ApplicationFields
	patch     domain.ApplicationPatch
	upcoming  []*domain.UpcomingDeadline
	from, to  time.Time
}

func (s *recordingStore) Select(_ context.Context, owner uuid.UUID) ([]*domain.Application, error) {
	s.owner = owner
	return s.rows, s.selectErr
}

func (s *recordingStore) Insert(_ context.Context, owner uuid.UUID, f domain.ApplicationFields) (*domain.Application, error) {
	s.owner, s.fields = owner, f
	return &domain.Application{ID: uuid.New(), UserID: owner, Name: f.Name, Status: f.Status, CreatedAt: time.Now()}, nil
}

func (s *recordingStore) Update(_ context.Context, owner, id uuid.UUID, p domain.ApplicationPatch) (*domain.Application, error) {
	s.owner, s.patch = owner, p
	return &domain.Application{ID: id, UserID: owner}, nil
}

func (s *recordingStore) Delete(_ context.Context, owner, _ uuid.UUID) error {
	s.owner = owner
	return nil
}

func (s *recordingStore) ListUpcomingDeadlines(_ context.Context, from, to time.Time) ([]*domain.UpcomingDeadline, error) {
	s.from, s.to = from, to
	return s.upcoming, nil
}

func TestApplicationServiceRequiresIdentity(t *testing.T) {
	svc := NewApplicationService(&recordingStore{}, staticIdentity{}, zap.NewNop())
	ctx := context.Background()

	_, err := svc.ListForCurrentUser(ctx)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = svc.Create(ctx, domain.ApplicationFields{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), domain.ErrUnauthenticated)

	stats, err := svc.ComputeStats(ctx)
	assert.Nil(t, stats)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestListForCurrentUserSortsNewestFirst(t *testing.T) {
	base := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	store := &recordingStore{rows: []*domain.Application{
		{Name: "middle", CreatedAt: base.Add(time.Hour)},
		{Name: "oldest", CreatedAt: base},
		{Name: "newest", CreatedAt: base.Add(2 * time.Hour)},
	}}
	user := &domain.User{ID: uuid.New()}
	svc := NewApplicationService(store, staticIdentity{user: user}, zap.NewNop())

	apps, err := svc.ListForCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, user.ID, store.owner)
	assert.Equal(t, "newest", apps[0].Name)
	assert.Equal(t, "middle", apps[1].Name)
	assert.Equal(t, "oldest", apps[2].Name)
}

func TestCreateDefaultsStatusAndOwner(t *testing.T) {
	store := &recordingStore{}
	user := &domain.User{ID: uuid.New()}
	svc := NewApplicationService(store, staticIdentity{user: user}, zap.NewNop())

	app, err := svc.Create(context.Background(), domain.ApplicationFields{Name: "Gates"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotStarted, store.fields.Status)
	assert.Equal(t, user.ID, app.UserID)

	_, err = svc.Create(context.Background(), domain.ApplicationFields{Name: "Gates", Status: domain.StatusAwaiting})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAwaiting, store.fields.Status)
}

func TestClearReminderPatchesOnlyReminder(t *testing.T) {
	store := &recordingStore{}
	svc := NewApplicationService(store, staticIdentity{user: &domain.User{ID: uuid.New()}}, zap.NewNop())

	_, err := svc.ClearReminder(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationPatch{ClearReminder: true}, store.patch)
}

func TestComputeStats(t *testing.T) {
	amount := func(s string) *string { return &s }
	store := &recordingStore{rows: []*domain.Application{
		{Status: domain.StatusInProgress, Amount: amount("$1,000")},
		{Status: domain.StatusAwaiting, Amount: amount("500")},
		{Status: domain.StatusAwaiting, Amount: amount("$250")},
		{Status: domain.StatusNotStarted, Amount: amount("TBD")},
	}}
	svc := NewApplicationService(store, staticIdentity{user: &domain.User{ID: uuid.New()}}, zap.NewNop())

	stats, err := svc.ComputeStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &domain.Stats{Total: 4, InProgress: 1, Awaiting: 2, PotentialAwards: 1750}, stats)

	store.selectErr = domain.ErrTransport
	stats, err = svc.ComputeStats(context.Background())
	assert.Nil(t, stats)
	assert.ErrorIs(t, err, domain.ErrTransport)
}
