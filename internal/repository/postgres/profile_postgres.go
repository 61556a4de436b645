package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scholaco/tracker/internal/domain"
	"github.com/scholaco/tracker/internal/repository"
)

type profileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository stores the display profile written beside each user
func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	query := `INSERT INTO profiles (id, email, full_name) VALUES (:id, :email, :full_name)`

	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("%w: failed to create profile: %v", domain.ErrTransport, err)
	}

	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	query := `SELECT id, email, full_name FROM profiles WHERE id = $1`

	var profile domain.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to get profile: %v", domain.ErrTransport, err)
	}

	return &profile, nil
}
