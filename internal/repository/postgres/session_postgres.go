package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scholaco/tracker/internal/domain"
	"github.com/scholaco/tracker/internal/repository"
)

type sessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// Create inserts a new session into the database
func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, refresh_token_hash, expires_at, created_at)
		VALUES (:id, :user_id, :refresh_token_hash, :expires_at, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("%w: failed to create session: %v", domain.ErrTransport, err)
	}

	return nil
}

// GetByID returns an unexpired session.
func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `
		SELECT id, user_id, refresh_token_hash, expires_at, created_at
		FROM sessions
		WHERE id = $1 AND expires_at > $2`

	return r.get(ctx, query, id, time.Now())
}

// GetByToken retrieves an unexpired session by its refresh token hash
func (r *sessionRepository) GetByToken(ctx context.Context, tokenHash string) (*domain.Session, error) {
	query := `
		SELECT id, user_id, refresh_token_hash, expires_at, created_at
		FROM sessions
		WHERE refresh_token_hash = $1 AND expires_at > $2`

	return r.get(ctx, query, tokenHash, time.Now())
}

func (r *sessionRepository) get(ctx context.Context, query string, args ...interface{}) (*domain.Session, error) {
	var session domain.Session
	if err := r.db.GetContext(ctx, &session, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session not found or expired: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to get session: %v", domain.ErrTransport, err)
	}
	return &session, nil
}

// Update rotates the refresh token hash and expiry.
func (r *sessionRepository) Update(ctx context.Context, session *domain.Session) error {
	query := `
		UPDATE sessions
		SET refresh_token_hash = :refresh_token_hash, expires_at = :expires_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, session)
	if err != nil {
		return fmt.Errorf("%w: failed to update session: %v", domain.ErrTransport, err)
	}
	return requireRow(result, "session")
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete session: %v", domain.ErrTransport, err)
	}
	return requireRow(result, "session")
}

func (r *sessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("%w: failed to delete expired sessions: %v", domain.ErrTransport, err)
	}
	return result.RowsAffected()
}

func requireRow(result sql.Result, what string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %v", domain.ErrTransport, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}
