// Package config provides environment-driven configuration for the coliving backend.
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// KV provider names accepted in KV_PROVIDER.
const (
	KVProviderRedis  = "redis"
	KVProviderMemory = "memory"
)

// Config holds all application configuration values.
type Config struct {
	DatabaseURL   Secret
	Port          string
	ListenHost    string
	LogLevel      string
	CORSOrigins   []string
	KVProvider    string
	RedisAddr     string
	RedisPassword Secret
	RedisDB       int
	AdminAPIKey   Secret
	CronSecret    Secret
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  Secret
	MailFrom      string
	RetentionDays int
	Holidays      []string
	AuditQueue    int
	Migrate       bool
}

// minSecretLen is the minimum length for shared secrets.
const minSecretLen = 16

// holidayPattern matches "MM-DD" calendar entries.
var holidayPattern = regexp.MustCompile(`^\d{2}-\d{2}$`)

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:   Secret(envOrDefault("DATABASE_URL", "")),
		Port:          envOrDefault("PORT", "3040"),
		ListenHost:    envOrDefault("LISTEN_HOST", "127.0.0.1"),
		LogLevel:      envOrDefault("LOG_LEVEL", "info"),
		KVProvider:    envOrDefault("KV_PROVIDER", KVProviderRedis),
		RedisAddr:     envOrDefault("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: Secret(envOrDefault("REDIS_PASSWORD", "")),
		AdminAPIKey:   Secret(envOrDefault("ADMIN_API_KEY", "")),
		CronSecret:    Secret(envOrDefault("CRON_SECRET", "")),
		SMTPHost:      envOrDefault("SMTP_HOST", ""),
		SMTPUser:      envOrDefault("SMTP_USER", ""),
		SMTPPassword:  Secret(envOrDefault("SMTP_PASSWORD", "")),
		MailFrom:      envOrDefault("MAIL_FROM", ""),
		Migrate:       envOrDefault("APP_MIGRATE", "true") == "true",
	}

	redisDB, err := strconv.Atoi(envOrDefault("REDIS_DB", "0"))
	if err != nil || redisDB < 0 || redisDB > 15 {
		return nil, fmt.Errorf("REDIS_DB must be an integer between 0 and 15")
	}
	cfg.RedisDB = redisDB

	smtpPort, err := strconv.Atoi(envOrDefault("SMTP_PORT", "587"))
	if err != nil || smtpPort < 1 || smtpPort > 65535 {
		return nil, fmt.Errorf("SMTP_PORT must be a valid port number")
	}
	cfg.SMTPPort = smtpPort

	retention, err := strconv.Atoi(envOrDefault("REMINDER_RETENTION_DAYS", "90"))
	if err != nil || retention < 1 || retention > 3650 {
		return nil, fmt.Errorf("REMINDER_RETENTION_DAYS must be an integer between 1 and 3650")
	}
	cfg.RetentionDays = retention

	auditQueue, err := strconv.Atoi(envOrDefault("AUDIT_QUEUE_SIZE", "1000"))
	if err != nil || auditQueue < 1 {
		return nil, fmt.Errorf("AUDIT_QUEUE_SIZE must be a positive integer")
	}
	cfg.AuditQueue = auditQueue

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3000")
	cfg.CORSOrigins = strings.Split(origins, ",")
	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if holidays := os.Getenv("HOLIDAYS"); holidays != "" {
		for _, h := range strings.Split(holidays, ",") {
			cfg.Holidays = append(cfg.Holidays, strings.TrimSpace(h))
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

func (c *Config) validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateNetwork(); err != nil {
		return err
	}

	if err := c.validateKV(); err != nil {
		return err
	}

	if err := c.validateSecrets(); err != nil {
		return err
	}

	if err := c.validateMail(); err != nil {
		return err
	}

	if err := c.validateCORS(); err != nil {
		return err
	}

	for _, h := range c.Holidays {
		if !holidayPattern.MatchString(h) {
			return fmt.Errorf("HOLIDAYS entries must be MM-DD, got %q", h)
		}
	}

	return nil
}

func (c *Config) validateDatabase() error {
	if c.DatabaseURL.Value() == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	dbURL, err := url.Parse(c.DatabaseURL.Value())
	if err != nil {
		return fmt.Errorf("DATABASE_URL is not a valid URL: %w", err)
	}

	if dbURL.Scheme != "postgres" && dbURL.Scheme != "postgresql" {
		return fmt.Errorf("DATABASE_URL scheme must be postgres:// or postgresql://")
	}

	if dbURL.Hostname() == "" {
		return fmt.Errorf("DATABASE_URL must include a host")
	}

	dbHost := dbURL.Hostname()
	if dbHost != "localhost" && dbHost != "127.0.0.1" && dbHost != "::1" {
		sslmode := dbURL.Query().Get("sslmode")
		if sslmode == "disable" {
			return fmt.Errorf("DATABASE_URL sslmode=disable is not allowed for non-local host %q", dbHost)
		}
	}

	return nil
}

func (c *Config) validateNetwork() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid integer: %w", err)
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	switch c.ListenHost {
	case "127.0.0.1", "::1", "localhost", "0.0.0.0":
	default:
		return fmt.Errorf("LISTEN_HOST must be a loopback address or 0.0.0.0, got %q", c.ListenHost)
	}

	return nil
}

func (c *Config) validateKV() error {
	switch c.KVProvider {
	case KVProviderRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when KV_PROVIDER is redis")
		}
	case KVProviderMemory:
		// Dev/test only; nothing to validate.
	default:
		return fmt.Errorf("KV_PROVIDER must be 'redis' or 'memory', got %q", c.KVProvider)
	}

	return nil
}

func (c *Config) validateSecrets() error {
	if len(c.AdminAPIKey.Value()) < minSecretLen {
		return fmt.Errorf("ADMIN_API_KEY must be at least %d characters", minSecretLen)
	}

	if len(c.CronSecret.Value()) < minSecretLen {
		return fmt.Errorf("CRON_SECRET must be at least %d characters", minSecretLen)
	}

	if c.AdminAPIKey == c.CronSecret {
		return fmt.Errorf("ADMIN_API_KEY and CRON_SECRET must differ")
	}

	return nil
}

func (c *Config) validateMail() error {
	if c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST is required")
	}

	if c.MailFrom == "" {
		return fmt.Errorf("MAIL_FROM is required")
	}

	return nil
}

func (c *Config) validateCORS() error {
	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			return fmt.Errorf("CORS_ORIGINS must not contain wildcard '*'")
		}
		if strings.ContainsAny(origin, "*?[]") {
			return fmt.Errorf("CORS_ORIGINS must not contain glob characters (*?[]), got %q", origin)
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("CORS_ORIGINS contains invalid origin %q (must have scheme and host)", origin)
		}
	}

	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
