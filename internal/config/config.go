package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
)

const defaultSessionSecret = "dev-secret-change-in-production-use-openssl-rand-hex-32"

// Config holds application configuration loaded from environment variables
type Config struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
	SessionSecret      string
	Env                string
	Port               string

	DatabaseURL string
	RedisURL    string

	LogLevel  string
	LogFormat string

	DisplayTimezone     string
	CatalogManifest     string
	CatalogSyncSchedule string
	MetricsEnabled      bool

	RegistrationCount int
	UpcomingWindowEnd int
	OngoingDuration   time.Duration
	TimelineCap       int
}

// Load reads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		GoogleClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:  os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:   os.Getenv("GOOGLE_CALLBACK_URL"),
		SessionSecret:       os.Getenv("SESSION_SECRET"),
		Env:                 getEnvWithDefault("ENV", "development"),
		Port:                getEnvWithDefault("PORT", "8080"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisURL:            os.Getenv("REDIS_URL"),
		LogLevel:            getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvWithDefault("LOG_FORMAT", "text"),
		DisplayTimezone:     getEnvWithDefault("DISPLAY_TIMEZONE", "UTC"),
		CatalogManifest:     os.Getenv("CATALOG_MANIFEST"),
		CatalogSyncSchedule: getEnvWithDefault("CATALOG_SYNC_SCHEDULE", "0 * * * *"),
		MetricsEnabled:      getEnvBool("METRICS_ENABLED", false),
		RegistrationCount:   getEnvInt("REGISTRATION_COUNT", 2),
		UpcomingWindowEnd:   getEnvInt("UPCOMING_WINDOW_END", 4),
		OngoingDuration:     getEnvDuration("ONGOING_DURATION", 2*time.Hour),
		TimelineCap:         getEnvInt("TIMELINE_CAP", 3),
	}

	// Warn if using default session secret (insecure for production)
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = defaultSessionSecret
		log.Println("WARNING: Using default SESSION_SECRET. Generate a secure secret with: openssl rand -hex 32")
	}

	return cfg
}

// Validate reports configuration values that cannot be used
func (c *Config) Validate() error {
	var errs []error

	if _, err := time.LoadLocation(c.DisplayTimezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", c.DisplayTimezone, err))
	}
	if _, err := cron.ParseStandard(c.CatalogSyncSchedule); err != nil {
		errs = append(errs, fmt.Errorf("invalid CATALOG_SYNC_SCHEDULE %q: %w", c.CatalogSyncSchedule, err))
	}
	if c.RegistrationCount < 0 {
		errs = append(errs, fmt.Errorf("REGISTRATION_COUNT must not be negative, got %d", c.RegistrationCount))
	}
	if c.UpcomingWindowEnd < 1 {
		errs = append(errs, fmt.Errorf("UPCOMING_WINDOW_END must be at least 1, got %d", c.UpcomingWindowEnd))
	}
	if c.OngoingDuration <= 0 {
		errs = append(errs, fmt.Errorf("ONGOING_DURATION must be positive, got %s", c.OngoingDuration))
	}
	if c.TimelineCap < 0 {
		errs = append(errs, fmt.Errorf("TIMELINE_CAP must not be negative, got %d", c.TimelineCap))
	}
	if c.IsProduction() && c.SessionSecret == defaultSessionSecret {
		errs = append(errs, errors.New("SESSION_SECRET is required in production"))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the app runs with ENV=production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location returns the display timezone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("WARNING: invalid boolean for %s=%q, using %t", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("WARNING: invalid integer for %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("WARNING: invalid duration for %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
