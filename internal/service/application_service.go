package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scholaco/tracker/internal/domain"
	"github.com/scholaco/tracker/internal/repository"
)

// Identity reports who is signed in. It returns domain.ErrUnauthenticated
// when nobody is.
type Identity interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
}

// ApplicationService is the application repository scoped to whoever the
// Identity says is signed in.
type ApplicationService struct {
	store    repository.ApplicationStore
	identity Identity
	logger   *zap.Logger
}

func NewApplicationService(store repository.ApplicationStore, identity Identity, logger *zap.Logger) *ApplicationService {
	return &ApplicationService{store: store, identity: identity, logger: logger}
}

// ListForCurrentUser returns the owner's records newest first.
func (s *ApplicationService) ListForCurrentUser(ctx context.Context) ([]*domain.Application, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	apps, err := s.store.Select(ctx, owner)
	if err != nil {
		return nil, err
	}

	// The store already orders rows, but the order is re-established here so
	// callers never depend on it.
	sort.SliceStable(apps, func(i, j int) bool {
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})

	return apps, nil
}

// Create persists a new record owned by the current user. Status defaults to
// not_started.
func (s *ApplicationService) Create(ctx context.Context, fields domain.ApplicationFields) (*domain.Application, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	if fields.Status == "" {
		fields.Status = domain.StatusNotStarted
	}

	app, err := s.store.Insert(ctx, owner, fields)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("application created", zap.String("id", app.ID.String()), zap.String("owner", owner.String()))
	return app, nil
}

func (s *ApplicationService) Update(ctx context.Context, id uuid.UUID, patch domain.ApplicationPatch) (*domain.Application, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Update(ctx, owner, id, patch)
}

func (s *ApplicationService) Delete(ctx context.Context, id uuid.UUID) error {
	owner, err := s.owner(ctx)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, owner, id)
}

// ClearReminder dismisses the reminder on a record.
func (s *ApplicationService) ClearReminder(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	return s.Update(ctx, id, domain.ApplicationPatch{ClearReminder: true})
}

// ComputeStats aggregates the current user's full set. Stats is nil when the
// list could not be fetched.
func (s *ApplicationService) ComputeStats(ctx context.Context) (*domain.Stats, error) {
	apps, err := s.ListForCurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return domain.ComputeStats(apps), nil
}

func (s *ApplicationService) owner(ctx context.Context) (uuid.UUID, error) {
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if user == nil {
		return uuid.Nil, domain.ErrUnauthenticated
	}
	return user.ID, nil
}
