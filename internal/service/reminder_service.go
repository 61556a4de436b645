package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/scholaco/tracker/internal/repository"
	"github.com/scholaco/tracker/internal/viewmodel"
)

const reminderSentTTL = 48 * time.Hour

// ReminderService emails owners about deadlines that are close. Each
// application is reminded at most once per calendar day.
type ReminderService struct {
	store    repository.ApplicationStore
	redis    *redis.Client
	mailer   Mailer
	leadDays int
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// ReminderRun summarizes one pass of the dispatcher.
type ReminderRun struct {
	Due     int
	Sent    int
	Skipped int
	Failed  int
}

func NewReminderService(store repository.ApplicationStore, redisClient *redis.Client, mailer Mailer, leadDays int, loc *time.Location, logger *zap.Logger) *ReminderService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderService{
		store:    store,
		redis:    redisClient,
		mailer:   mailer,
		leadDays: leadDays,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

func sentKey(appID, day string) string {
	return fmt.Sprintf("reminder:sent:%s:%s", appID, day)
}

// Run sends reminders for every deadline between today and today plus the
// lead time. Send failures are logged and never abort the pass.
func (s *ReminderService) Run(ctx context.Context) (*ReminderRun, error) {
	now := s.now().In(s.loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, 0, s.leadDays)
	day := from.Format("2006-01-02")

	due, err := s.store.ListUpcomingDeadlines(ctx, from, to)
	if err != nil {
		return nil, err
	}

	run := &ReminderRun{Due: len(due)}
	for _, d := range due {
		log := s.logger.With(zap.String("application_id", d.ID.String()), zap.String("to", d.Email))

		first, err := s.redis.SetNX(ctx, sentKey(d.ID.String(), day), now.Unix(), reminderSentTTL).Result()
		if err != nil {
			log.Warn("reminder de-duplication unavailable, skipping", zap.Error(err))
			run.Skipped++
			continue
		}
		if !first {
			run.Skipped++
			continue
		}

		days := 0
		if n := viewmodel.DaysUntil(d.Deadline, now); n != nil {
			days = *n
		}
		org := ""
		if d.Organization != nil {
			org = *d.Organization
		}

		if _, err := s.mailer.SendDeadlineReminder(ctx, d.Email, d.Name, org, *d.Deadline, days); err != nil {
			log.Warn("deadline reminder not sent", zap.Error(err))
			// let a later pass on the same day try again
			s.redis.Del(ctx, sentKey(d.ID.String(), day))
			run.Failed++
			continue
		}
		run.Sent++
	}

	s.logger.Info("deadline reminder pass finished",
		zap.Int("due", run.Due),
		zap.Int("sent", run.Sent),
		zap.Int("skipped", run.Skipped),
		zap.Int("failed", run.Failed))
	return run, nil
}

// Job adapts Run for the scheduler.
func (s *ReminderService) Job(timeout time.Duration) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := s.Run(ctx); err != nil {
			s.logger.Error("deadline reminder pass failed", zap.Error(err))
		}
	}
}
