package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholaco/tracker/internal/domain"
)

func TestProfileRepository(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)
	p := &domain.Profile{ID: uuid.New(), Email: "ada@example.com", FullName: "Ada Lovelace"}

	mock.ExpectExec(`INSERT INTO profiles`).
		WithArgs(p.ID, p.Email, p.FullName).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT id, email, full_name FROM profiles WHERE id = \$1`).
		WithArgs(p.ID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "full_name"}).AddRow(p.ID.String(), p.Email, p.FullName))

	require.NoError(t, repo.Create(context.Background(), p))
	got, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
