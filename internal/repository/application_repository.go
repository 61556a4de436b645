package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/scholaco/tracker/internal/domain"
)

// ApplicationStore persists applications. Every read and write is filtered by
// the owning user id; rows owned by someone else behave as if absent.
type ApplicationStore interface {
	Select(ctx context.Context, ownerID uuid.UUID) ([]*domain.Application, error)
	Insert(ctx context.Context, ownerID uuid.UUID, fields domain.ApplicationFields) (*domain.Application, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, patch domain.ApplicationPatch) (*domain.Application, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	// ListUpcomingDeadlines spans all owners and is only used by the reminder job.
	ListUpcomingDeadlines(ctx context.Context, from, to time.Time) ([]*domain.UpcomingDeadline, error)
}
