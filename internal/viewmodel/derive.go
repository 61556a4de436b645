// Package viewmodel derives everything the presentation shows from the raw
// application records. Every function here is pure: the same records and the
// same "now" always yield the same output.
package viewmodel

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"time"

	"github.com/scholaco/tracker/internal/domain"
)

const (
	ListUrgencyThreshold     = 3
	CalendarUrgencyThreshold = 7
)

type Urgency string

const (
	UrgencyNormal Urgency = "normal"
	UrgencyUrgent Urgency = "urgent"
)

type Badge struct {
	Label      string `json:"label"`
	StyleClass string `json:"style_class"`
}

var badges = map[domain.ApplicationStatus]Badge{
	domain.StatusNotStarted: {Label: "Not Started", StyleClass: "bg-maroon-100 text-maroon-700"},
	domain.StatusInProgress: {Label: "In Progress", StyleClass: "bg-yellow-100 text-yellow-700"},
	domain.StatusAwaiting:   {Label: "Awaiting Response", StyleClass: "bg-blue-100 text-blue-700"},
}

// StatusBadge presents unknown statuses as not started.
func StatusBadge(status domain.ApplicationStatus) Badge {
	if b, ok := badges[status]; ok {
		return b
	}
	return badges[domain.StatusNotStarted]
}

// DaysUntil counts calendar days from now's date to date. Negative means
// overdue, 0 means today. A nil date yields nil.
func DaysUntil(date *time.Time, now time.Time) *int {
	if date == nil {
		return nil
	}
	// Both sides are reduced to a UTC midnight so DST changes never shorten
	// or lengthen a day.
	due := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(due.Sub(today).Hours() / 24)
	return &days
}

func UrgencyClass(days *int, threshold int) Urgency {
	if days != nil && *days <= threshold {
		return UrgencyUrgent
	}
	return UrgencyNormal
}

func FormatDate(date *time.Time) string {
	if date == nil {
		return "No deadline"
	}
	return date.Format("Jan 2, 2006")
}

func deadlineText(days *int) string {
	switch {
	case days == nil:
		return "No deadline"
	case *days < 0:
		return "Overdue"
	case *days == 0:
		return "Due today"
	default:
		return fmt.Sprintf("Due in %d days", *days)
	}
}

func daysLeftText(days int) string {
	switch {
	case days < 0:
		return "Overdue"
	case days == 0:
		return "Due today"
	default:
		return fmt.Sprintf("%d days left", days)
	}
}

func orDefault(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

// Card is one row of the dashboard and full application lists.
type Card struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Organization string    `json:"organization"`
	Amount       string    `json:"amount"`
	Badge        Badge     `json:"badge"`
	DaysUntil    *int      `json:"days_until"`
	DeadlineText string    `json:"deadline_text"`
	Urgency      Urgency   `json:"urgency"`
	Deadline     string    `json:"deadline"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewCard(app *domain.Application, now time.Time) Card {
	days := DaysUntil(app.Deadline, now)
	return Card{
		ID:           app.ID.String(),
		Name:         app.Name,
		Organization: orDefault(app.Organization, "No organization"),
		Amount:       orDefault(app.Amount, "Amount TBD"),
		Badge:        StatusBadge(app.Status),
		DaysUntil:    days,
		DeadlineText: deadlineText(days),
		Urgency:      UrgencyClass(days, ListUrgencyThreshold),
		Deadline:     FormatDate(app.Deadline),
		CreatedAt:    app.CreatedAt,
	}
}

type CalendarEntry struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Organization string  `json:"organization"`
	Amount       string  `json:"amount"`
	Month        string  `json:"month"`
	Day          int     `json:"day"`
	DaysUntil    int     `json:"days_until"`
	Text         string  `json:"text"`
	Urgency      Urgency `json:"urgency"`
}

// CalendarEntries yields the records that have a deadline, soonest first.
// Records sharing a deadline keep their input order. The sequence is
// recomputed on every iteration.
func CalendarEntries(apps []*domain.Application, now time.Time) iter.Seq[CalendarEntry] {
	return func(yield func(CalendarEntry) bool) {
		dated := filterSorted(apps,
			func(a *domain.Application) bool { return a.Deadline != nil },
			func(a *domain.Application) time.Time { return *a.Deadline })

		for _, app := range dated {
			days := DaysUntil(app.Deadline, now)
			entry := CalendarEntry{
				ID:           app.ID.String(),
				Name:         app.Name,
				Organization: orDefault(app.Organization, "No organization"),
				Amount:       orDefault(app.Amount, "Amount TBD"),
				Month:        app.Deadline.Format("Jan"),
				Day:          app.Deadline.Day(),
				DaysUntil:    *days,
				Text:         daysLeftText(*days),
				Urgency:      UrgencyClass(days, CalendarUrgencyThreshold),
			}
			if !yield(entry) {
				return
			}
		}
	}
}

type ReminderEntry struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	At     time.Time `json:"at"`
	Date   string    `json:"date"`
	Time   string    `json:"time"`
	IsPast bool      `json:"is_past"`
}

// ReminderEntries yields the records that have a reminder, earliest first,
// with labels rendered in now's location.
func ReminderEntries(apps []*domain.Application, now time.Time) iter.Seq[ReminderEntry] {
	return func(yield func(ReminderEntry) bool) {
		reminded := filterSorted(apps,
			func(a *domain.Application) bool { return a.Reminder != nil },
			func(a *domain.Application) time.Time { return *a.Reminder })

		for _, app := range reminded {
			at := app.Reminder.In(now.Location())
			entry := ReminderEntry{
				ID:     app.ID.String(),
				Name:   app.Name,
				At:     *app.Reminder,
				Date:   at.Format("Jan 2, 2006"),
				Time:   at.Format("3:04 PM"),
				IsPast: app.Reminder.Before(now),
			}
			if !yield(entry) {
				return
			}
		}
	}
}

func filterSorted(apps []*domain.Application, keep func(*domain.Application) bool, key func(*domain.Application) time.Time) []*domain.Application {
	out := make([]*domain.Application, 0, len(apps))
	for _, a := range apps {
		if keep(a) {
			out = append(out, a)
		}
	}
	slices.SortStableFunc(out, func(a, b *domain.Application) int {
		return key(a).Compare(key(b))
	})
	return out
}

// FormatAwards renders a whole-dollar total with thousands separators.
func FormatAwards(total int64) string {
	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}
	digits := strconv.FormatInt(total, 10)
	out := make([]byte, 0, len(digits)+len(digits)/3)
	for i := range len(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return sign + "$" + string(out)
}

const recentLimit = 5

type Dashboard struct {
	Recent          []Card        `json:"recent"`
	All             []Card        `json:"all"`
	Stats           *domain.Stats `json:"stats"`
	PotentialAwards string        `json:"potential_awards"`
	Greeting        string        `json:"greeting,omitempty"`
}

// NewDashboard orders cards newest first. A nil stats leaves the totals
// unset rather than showing zeros.
func NewDashboard(apps []*domain.Application, stats *domain.Stats, now time.Time) Dashboard {
	sorted := slices.Clone(apps)
	slices.SortStableFunc(sorted, func(a, b *domain.Application) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})

	all := make([]Card, 0, len(sorted))
	for _, app := range sorted {
		all = append(all, NewCard(app, now))
	}

	d := Dashboard{
		Recent: all[:min(recentLimit, len(all))],
		All:    all,
		Stats:  stats,
	}
	if stats != nil {
		d.PotentialAwards = FormatAwards(stats.PotentialAwards)
	}
	return d
}
