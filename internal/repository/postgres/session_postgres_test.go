package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholaco/tracker/internal/domain"
)

func TestSessionRepository_GetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)
	id := uuid.New()

	mock.ExpectQuery(`FROM sessions\s+WHERE id = \$1 AND expires_at > \$2`).
		WithArgs(id, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "refresh_token_hash", "expires_at", "created_at"}))

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_CreateAndDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)
	s := &domain.Session{ID: uuid.New(), UserID: uuid.New(), RefreshTokenHash: "h", ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now()}

	mock.ExpectExec(`INSERT INTO sessions`).
		WithArgs(s.ID, s.UserID, "h", s.ExpiresAt, s.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM sessions WHERE id = \$1`).
		WithArgs(s.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), s))
	require.NoError(t, repo.Delete(context.Background(), s.ID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	mock.ExpectExec(`DELETE FROM sessions WHERE expires_at <= \$1`).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`DELETE FROM sessions`).
		WillReturnError(errors.New("timeout"))

	n, err := repo.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	_, err = repo.DeleteExpired(context.Background())
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.NoError(t, mock.ExpectationsWereMet())
}
