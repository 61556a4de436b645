package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/scholaco/tracker/internal/config"
	"github.com/scholaco/tracker/internal/database"
	"github.com/scholaco/tracker/internal/handler"
	"github.com/scholaco/tracker/internal/handler/middleware"
	"github.com/scholaco/tracker/internal/repository"
	"github.com/scholaco/tracker/internal/repository/postgres"
	"github.com/scholaco/tracker/internal/service"
	"github.com/scholaco/tracker/internal/session"
	"github.com/scholaco/tracker/pkg/blacklist"
	"github.com/scholaco/tracker/pkg/email"
	"github.com/scholaco/tracker/pkg/jwt"
	"github.com/scholaco/tracker/pkg/logger"
	"github.com/scholaco/tracker/pkg/validator"
)

const (
	sessionPurgeInterval = time.Hour
	reminderJobTimeout   = 5 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, &cfg.Database, zl)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			zl.Warn("error closing database connection", zap.Error(err))
		}
	}()

	if err := database.Migrate(&cfg.Database, zl); err != nil {
		return err
	}

	redisClient, err := database.ConnectRedis(ctx, &cfg.Redis, zl)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			zl.Warn("error closing redis connection", zap.Error(err))
		}
	}()

	privateKey, publicKey, err := loadRSAKeys(&cfg.JWT)
	if err != nil {
		return err
	}

	tokenService, err := jwt.NewTokenService(
		privateKey,
		publicKey,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
		cfg.JWT.Issuer,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	tokenBlacklist := blacklist.NewTokenBlacklist(redisClient)

	// a nil mailer turns every email side effect off
	var mailer service.Mailer
	if cfg.Email.Enabled {
		notifier, err := email.NewNotifier(ctx, &email.EmailConfig{
			Provider:  cfg.Email.Provider,
			APIKey:    cfg.Email.APIKey,
			BaseURL:   cfg.Email.BrevoURL,
			Region:    cfg.Email.AWSRegion,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
			AppURL:    cfg.Server.AppURL,
			Timeout:   cfg.Email.Timeout,
		})
		if err != nil {
			zl.Warn("email disabled: notifier could not be created", zap.Error(err))
		} else {
			mailer = email.NewMailer(notifier, cfg.Server.AppURL, zl)
			zl.Info("email enabled", zap.String("provider", cfg.Email.Provider))
		}
	}

	userRepo := postgres.NewUserRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	applicationStore := postgres.NewApplicationStore(db)

	authService := service.NewAuthService(userRepo, profileRepo, sessionRepo, tokenService, tokenBlacklist, mailer, zl)
	sessions := session.NewManager(applicationStore, authService, mailer,
		session.Config{DeleteConfirmWindow: cfg.Session.DeleteConfirmWindow}, zl)

	scheduler, err := newScheduler(cfg, applicationStore, authService, sessions, redisClient, mailer, zl)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	validate := validator.NewValidator()

	app := fiber.New(fiber.Config{
		AppName:      "ScholaCo Tracker",
		ErrorHandler: handler.ErrorHandler(zl),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	app.Use(middleware.RecoveryMiddleware(zl))
	app.Use(middleware.LoggerMiddleware(zl))
	app.Use(middleware.CORSMiddleware(cfg.Server.AllowOrigins))

	handler.SetupRoutes(app, handler.Handlers{
		Auth:        handler.NewAuthHandler(authService, sessions, validate),
		Application: handler.NewApplicationHandler(validate),
		View:        handler.NewViewHandler(),
		Integration: handler.NewIntegrationHandler(),
		Health: handler.NewHealthHandler(map[string]handler.Check{
			"database": db.PingContext,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		}),
	}, middleware.AuthMiddleware(authService), middleware.RequireSession(sessions))

	listenErr := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Server.Port
		zl.Info("server starting", zap.String("addr", addr), zap.String("environment", cfg.Server.Environment))
		listenErr <- app.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zl.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}

	zl.Info("server stopped")
	return nil
}

// newScheduler registers the background jobs: session cleanup (database rows
// and in-memory controllers) always, deadline reminders only with email on.
func newScheduler(
	cfg *config.Config,
	store repository.ApplicationStore,
	authService *service.AuthService,
	sessions *session.Manager,
	redisClient *redis.Client,
	mailer service.Mailer,
	zl *zap.Logger,
) (*service.SchedulerService, error) {
	loc, err := time.LoadLocation(cfg.Reminder.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder timezone %q: %w", cfg.Reminder.Timezone, err)
	}

	scheduler := service.NewSchedulerService(loc)

	if _, err := scheduler.ScheduleInterval(sessionPurgeInterval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		authService.PurgeExpiredSessions(ctx)
		// expired sessions never reach RequireSession again
		sessions.Sweep(ctx)
	}); err != nil {
		return nil, err
	}

	switch {
	case !cfg.Reminder.Enabled:
		zl.Info("deadline reminders disabled")
	case mailer == nil:
		zl.Warn("deadline reminders disabled: email is off")
	default:
		reminders := service.NewReminderService(store, redisClient, mailer, cfg.Reminder.LeadDays, loc, zl)
		if _, err := scheduler.Schedule(cfg.Reminder.Schedule, reminders.Job(reminderJobTimeout)); err != nil {
			return nil, err
		}
		zl.Info("deadline reminders scheduled",
			zap.String("schedule", cfg.Reminder.Schedule),
			zap.Int("lead_days", cfg.Reminder.LeadDays),
			zap.String("timezone", loc.String()))
	}

	return scheduler, nil
}

// loadRSAKeys loads RSA private and public keys from files
func loadRSAKeys(cfg *config.JWTConfig) ([]byte, []byte, error) {
	privateKey, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read private key file: %w", err)
	}

	publicKey, err := os.ReadFile(cfg.PublicKeyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read public key file: %w", err)
	}

	if len(privateKey) == 0 {
		return nil, nil, fmt.Errorf("private key file is empty")
	}
	if len(publicKey) == 0 {
		return nil, nil, fmt.Errorf("public key file is empty")
	}

	return privateKey, publicKey, nil
}
