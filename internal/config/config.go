// Package config resolves service configuration from built-in defaults, an
// optional YAML file and environment variables, in that order of precedence.
package config

import (
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/validation"
)

// Config is the complete service configuration.
type Config struct {
	Environment string         `koanf:"environment" validate:"oneof=development production test"`
	Server      ServerConfig   `koanf:"server"`
	Database    DatabaseConfig `koanf:"database"`
	Auth        AuthConfig     `koanf:"auth"`
	Booking     BookingConfig  `koanf:"booking"`
	Reminder    ReminderConfig `koanf:"reminder"`
	SMTP        SMTPConfig     `koanf:"smtp"`
	Logging     LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port              int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout       time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout      time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout       time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// DatabaseConfig holds PostgreSQL connection settings. URL wins over the
// individual fields when set.
type DatabaseConfig struct {
	URL             string `koanf:"url"`
	Host            string `koanf:"host"`
	Port            string `koanf:"port"`
	User            string `koanf:"user"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name"`
	SSLMode         string `koanf:"sslmode"`
	MaxConns        int32  `koanf:"max_conns" validate:"min=1"`
	MinConns        int32  `koanf:"min_conns" validate:"min=0"`
	ConnectAttempts int    `koanf:"connect_attempts" validate:"min=1"`
}

// DSN builds a libpq-compatible connection string.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// AuthConfig configures bearer token verification.
type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	Issuer    string        `koanf:"issuer"`
	TokenTTL  time.Duration `koanf:"token_ttl" validate:"min=0"`
}

// BookingConfig holds the meetup scheduling rules.
type BookingConfig struct {
	DefaultCapacity    int    `koanf:"default_capacity" validate:"min=1,max=1000"`
	RevealWindowDays   int    `koanf:"reveal_window_days" validate:"min=0"`
	ReminderWindowDays int    `koanf:"reminder_window_days" validate:"min=0"`
	UpcomingLimit      int    `koanf:"upcoming_limit" validate:"min=1,max=50"`
	Timezone           string `koanf:"timezone" validate:"required"`
}

// Policy returns the reveal/reminder offsets as a value for the policy functions.
func (b BookingConfig) Policy() model.Policy {
	return model.Policy{
		RevealWindowDays:   b.RevealWindowDays,
		ReminderWindowDays: b.ReminderWindowDays,
	}
}

// Location resolves the configured meetup time zone.
func (b BookingConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", b.Timezone, err)
	}
	return loc, nil
}

// ReminderConfig configures the daily reminder dispatch.
type ReminderConfig struct {
	Enabled       bool    `koanf:"enabled"`
	RunAt         string  `koanf:"run_at" validate:"datetime=15:04"`
	MaxConcurrent int     `koanf:"max_concurrent" validate:"min=1"`
	SendRate      float64 `koanf:"send_rate" validate:"min=0"`
	SendBurst     int     `koanf:"send_burst" validate:"min=1"`
}

// SMTPConfig configures outbound email. When disabled, notifications are logged.
type SMTPConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host" validate:"required_if=Enabled true"`
	Port            int           `koanf:"port" validate:"min=0,max=65535"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	From            string        `koanf:"from" validate:"omitempty,email"`
	FromName        string        `koanf:"from_name"`
	UseTLS          bool          `koanf:"use_tls"`
	Timeout         time.Duration `koanf:"timeout"`
	BreakerFailures uint32        `koanf:"breaker_failures" validate:"min=1"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// LoggingConfig configures the zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	if _, err := c.Booking.Location(); err != nil {
		return err
	}
	if c.IsProduction() && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters in production")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port:              8080,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"http://localhost:5173"},
			RateLimitRequests: 30,
			RateLimitWindow:   time.Minute,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			Password:        "postgres",
			Name:            "meetup",
			SSLMode:         "disable",
			MaxConns:        20,
			MinConns:        2,
			ConnectAttempts: 5,
		},
		Auth: AuthConfig{
			Issuer:   "coffee-meetup",
			TokenTTL: 24 * time.Hour,
		},
		Booking: BookingConfig{
			DefaultCapacity:    model.DefaultCapacity,
			RevealWindowDays:   2,
			ReminderWindowDays: 1,
			UpcomingLimit:      2,
			Timezone:           "UTC",
		},
		Reminder: ReminderConfig{
			Enabled:       true,
			RunAt:         "09:00",
			MaxConcurrent: 4,
			SendRate:      5,
			SendBurst:     5,
		},
		SMTP: SMTPConfig{
			Port:            587,
			FromName:        "Coffee Meetup",
			UseTLS:          true,
			Timeout:         30 * time.Second,
			BreakerFailures: 5,
			BreakerTimeout:  time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
