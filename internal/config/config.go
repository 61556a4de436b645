package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Email    EmailConfig
	Reminder ReminderConfig
	Session  SessionConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AllowOrigins string
	AppURL       string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	PrivateKeyPath     string
	PublicKeyPath      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	Issuer             string
}

type EmailConfig struct {
	Enabled   bool
	Provider  string
	APIKey    string
	BrevoURL  string
	AWSRegion string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

type ReminderConfig struct {
	Enabled  bool
	Schedule string
	LeadDays int
	Timezone string
}

type SessionConfig struct {
	DeleteConfirmWindow time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	// .env is optional outside development
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173"),
			AppURL:       strings.TrimRight(getEnv("APP_URL", "http://localhost:5173"), "/"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "scholaco"),
			Password: getEnv("DB_PASSWORD", "scholaco"),
			DBName:   getEnv("DB_NAME", "scholaco"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			PrivateKeyPath:     getEnv("JWT_PRIVATE_KEY_PATH", "./keys/private.pem"),
			PublicKeyPath:      getEnv("JWT_PUBLIC_KEY_PATH", "./keys/public.pem"),
			AccessTokenExpiry:  getDurationEnv("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshTokenExpiry: getDurationEnv("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
			Issuer:             getEnv("JWT_ISSUER", "scholaco"),
		},
		Email: EmailConfig{
			Enabled:   getBoolEnv("EMAIL_ENABLED", false),
			Provider:  getEnv("EMAIL_PROVIDER", "brevo"),
			APIKey:    getEnv("EMAIL_API_KEY", ""),
			BrevoURL:  getEnv("BREVO_API_URL", "https://api.brevo.com/v3/smtp/email"),
			AWSRegion: getEnv("AWS_REGION", "us-east-1"),
			FromEmail: getEnv("EMAIL_FROM", ""),
			FromName:  getEnv("EMAIL_FROM_NAME", "Scholaco"),
			Timeout:   getDurationEnv("EMAIL_TIMEOUT", 10*time.Second),
		},
		Reminder: ReminderConfig{
			Enabled:  getBoolEnv("REMINDER_ENABLED", true),
			Schedule: getEnv("REMINDER_SCHEDULE", "0 0 8 * * *"),
			LeadDays: getIntEnv("REMINDER_LEAD_DAYS", 3),
			Timezone: getEnv("REMINDER_TIMEZONE", "UTC"),
		},
		Session: SessionConfig{
			DeleteConfirmWindow: getDurationEnv("DELETE_CONFIRM_WINDOW", 3*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	if cfg.Email.Enabled && cfg.Email.FromEmail == "" {
		return nil, fmt.Errorf("EMAIL_FROM is required when EMAIL_ENABLED=true")
	}
	if cfg.Reminder.LeadDays < 0 {
		return nil, fmt.Errorf("REMINDER_LEAD_DAYS must not be negative")
	}

	return cfg, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL is the DSN in URL form, as golang-migrate expects it.
func (c *DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
