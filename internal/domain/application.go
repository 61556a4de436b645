package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	StatusNotStarted ApplicationStatus = "not_started"
	StatusInProgress ApplicationStatus = "in_progress"
	StatusAwaiting   ApplicationStatus = "awaiting"
)

// Valid reports whether s is one of the known statuses.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusAwaiting:
		return true
	}
	return false
}

// Application is a single tracked scholarship or grant application.
// Deadline is a calendar date; only its year, month and day are meaningful.
type Application struct {
	ID           uuid.UUID         `json:"id" db:"id"`
	UserID       uuid.UUID         `json:"user_id" db:"user_id"`
	Name         string            `json:"name" db:"name"`
	Organization *string           `json:"organization,omitempty" db:"organization"`
	Amount       *string           `json:"amount,omitempty" db:"amount"`
	Deadline     *time.Time        `json:"deadline,omitempty" db:"deadline"`
	Status       ApplicationStatus `json:"status" db:"status"`
	Reminder     *time.Time        `json:"reminder,omitempty" db:"reminder"`
	Notes        *string           `json:"notes,omitempty" db:"notes"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
}

// ApplicationFields carries caller input for a new application. The owner is
// never part of it.
type ApplicationFields struct {
	Name         string
	Organization *string
	Amount       *string
	Deadline     *time.Time
	Status       ApplicationStatus
	Reminder     *time.Time
	Notes        *string
}

// ApplicationPatch lists the fields an update touches. Nil pointers are left
// alone; ClearDeadline and ClearReminder set the column to NULL.
type ApplicationPatch struct {
	Name          *string
	Organization  *string
	Amount        *string
	Deadline      *time.Time
	ClearDeadline bool
	Status        *ApplicationStatus
	Reminder      *time.Time
	ClearReminder bool
	Notes         *string
}

// Empty reports whether the patch would change nothing.
func (p ApplicationPatch) Empty() bool {
	return p.Name == nil && p.Organization == nil && p.Amount == nil &&
		p.Deadline == nil && !p.ClearDeadline && p.Status == nil &&
		p.Reminder == nil && !p.ClearReminder && p.Notes == nil
}

// Stats is recomputed from the full application set on every request.
type Stats struct {
	Total           int   `json:"total"`
	InProgress      int   `json:"in_progress"`
	Awaiting        int   `json:"awaiting"`
	PotentialAwards int64 `json:"potential_awards"`
}

// ParseAmount keeps only the decimal digits of a free-text amount and reads
// them as an integer. Decimal points are dropped along with everything else,
// so "$1,200.50" parses as 120050. Empty or digit-free input parses as 0.
func ParseAmount(amount string) int64 {
	digits := make([]rune, 0, len(amount))
	for _, r := range amount {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) == 0 {
		return 0
	}
	n, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		// more digits than an int64 holds
		return 0
	}
	return n
}

// ComputeStats aggregates the given applications.
func ComputeStats(apps []*Application) *Stats {
	stats := &Stats{Total: len(apps)}
	for _, app := range apps {
		switch app.Status {
		case StatusInProgress:
			stats.InProgress++
		case StatusAwaiting:
			stats.Awaiting++
		}
		if app.Amount != nil {
			stats.PotentialAwards += ParseAmount(*app.Amount)
		}
	}
	return stats
}

// UpcomingDeadline pairs an application with its owner's address for the
// deadline reminder job.
type UpcomingDeadline struct {
	Application
	Email string `db:"email"`
}
