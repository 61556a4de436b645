package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scholaco/tracker/internal/domain"
	"github.com/scholaco/tracker/internal/repository"
)

const applicationColumns = `id, user_id, name, organization, amount, deadline, status, reminder, notes, created_at`

type applicationStore struct {
	db *sqlx.DB
}

func NewApplicationStore(db *sqlx.DB) repository.ApplicationStore {
	return &applicationStore{db: db}
}

func (r *applicationStore) Select(ctx context.Context, ownerID uuid.UUID) ([]*domain.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE user_id = $1
		ORDER BY created_at DESC`

	apps := []*domain.Application{}
	if err := r.db.SelectContext(ctx, &apps, query, ownerID); err != nil {
		return nil, fmt.Errorf("%w: failed to list applications: %v", domain.ErrTransport, err)
	}

	return apps, nil
}

// Insert lets the database assign id and created_at.
func (r *applicationStore) Insert(ctx context.Context, ownerID uuid.UUID, f domain.ApplicationFields) (*domain.Application, error) {
	query := `
		INSERT INTO applications (user_id, name, organization, amount, deadline, status, reminder, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + applicationColumns

	var app domain.Application
	err := r.db.GetContext(ctx, &app, query,
		ownerID, f.Name, f.Organization, f.Amount, dateArg(f.Deadline), f.Status, f.Reminder, f.Notes)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create application: %v", domain.ErrTransport, err)
	}

	return &app, nil
}

// Update writes only the columns named by the patch.
func (r *applicationStore) Update(ctx context.Context, ownerID, id uuid.UUID, p domain.ApplicationPatch) (*domain.Application, error) {
	if p.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}

	var (
		sets []string
		args []interface{}
	)
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if p.Name != nil {
		set("name", *p.Name)
	}
	if p.Organization != nil {
		set("organization", *p.Organization)
	}
	if p.Amount != nil {
		set("amount", *p.Amount)
	}
	switch {
	case p.ClearDeadline:
		set("deadline", nil)
	case p.Deadline != nil:
		set("deadline", dateArg(p.Deadline))
	}
	if p.Status != nil {
		set("status", *p.Status)
	}
	switch {
	case p.ClearReminder:
		set("reminder", nil)
	case p.Reminder != nil:
		set("reminder", *p.Reminder)
	}
	if p.Notes != nil {
		set("notes", *p.Notes)
	}

	args = append(args, id, ownerID)
	query := fmt.Sprintf(`
		UPDATE applications
		SET %s
		WHERE id = $%d AND user_id = $%d
		RETURNING %s`, strings.Join(sets, ", "), len(args)-1, len(args), applicationColumns)

	var app domain.Application
	if err := r.db.GetContext(ctx, &app, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("application %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to update application: %v", domain.ErrTransport, err)
	}

	return &app, nil
}

func (r *applicationStore) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	query := `DELETE FROM applications WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete application: %v", domain.ErrTransport, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %v", domain.ErrTransport, err)
	}

	if rows == 0 {
		return fmt.Errorf("application %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *applicationStore) ListUpcomingDeadlines(ctx context.Context, from, to time.Time) ([]*domain.UpcomingDeadline, error) {
	query := `
		SELECT a.id, a.user_id, a.name, a.organization, a.amount, a.deadline,
			   a.status, a.reminder, a.notes, a.created_at, u.email
		FROM applications a
		JOIN users u ON u.id = a.user_id
		WHERE a.deadline IS NOT NULL
		  AND a.deadline BETWEEN $1 AND $2
		ORDER BY a.deadline ASC`

	due := []*domain.UpcomingDeadline{}
	if err := r.db.SelectContext(ctx, &due, query, dateArg(&from), dateArg(&to)); err != nil {
		return nil, fmt.Errorf("%w: failed to list upcoming deadlines: %v", domain.ErrTransport, err)
	}

	return due, nil
}

// dateArg drops the clock so a DATE column never sees a timezone shift.
func dateArg(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}
