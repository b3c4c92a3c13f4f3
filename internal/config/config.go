package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider is the read-only view of configuration that the rest of the
// application depends on. Tests supply their own implementation.
type Provider interface {
	GetDBURL() string
	GetDBNs() string
	GetDBDb() string
	GetDBUser() string
	GetDBPass() string
	GetDBQueryTimeout() time.Duration
	GetDBExecuteTimeout() time.Duration
	GetAppAddr() string
	GetSessionSecret() string
	GetSyncInterval() time.Duration
	GetMessageLimit() int
	GetPubSubDriver() string
	GetNatsURL() string
	GetRelayEnabled() bool
	GetHomeDir() string
}

// Pub/sub drivers accepted by PUBSUB_DRIVER.
const (
	DriverMemory = "memory"
	DriverNats   = "nats"
)

const (
	defaultAppAddr        = ":8080"
	defaultQueryTimeout   = 5 * time.Second
	defaultExecuteTimeout = 10 * time.Second
	defaultSyncInterval   = 3 * time.Second
	defaultMessageLimit   = 50
	defaultSessionSecret  = "livechat-development-secret-change-me"
)

// ErrMissingDatabaseSettings is returned by Validate when the database
// location is incomplete.
var ErrMissingDatabaseSettings = errors.New("SURREAL_URL, SURREAL_NS and SURREAL_DB must be set")

// Config holds all configuration for the application.
type Config struct {
	DBUrl            string
	DBNs             string
	DBDb             string
	DBUser           string
	DBPass           string
	DBQueryTimeout   time.Duration
	DBExecuteTimeout time.Duration
	AppAddr          string
	SessionSecret    string
	SyncInterval     time.Duration
	MessageLimit     int
	PubSubDriver     string
	NatsURL          string
	RelayEnabled     bool
	HomeDir          string
}

// New loads configuration from a .env file, if present, and the environment.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	return &Config{
		DBUrl:            os.Getenv("SURREAL_URL"),
		DBUser:           os.Getenv("SURREAL_USER"),
		DBPass:           os.Getenv("SURREAL_PASS"),
		DBNs:             os.Getenv("SURREAL_NS"),
		DBDb:             os.Getenv("SURREAL_DB"),
		DBQueryTimeout:   durationEnv("DB_QUERY_TIMEOUT", defaultQueryTimeout),
		DBExecuteTimeout: durationEnv("DB_EXECUTE_TIMEOUT", defaultExecuteTimeout),
		AppAddr:          stringEnv("APP_ADDR", defaultAppAddr),
		SessionSecret:    stringEnv("SESSION_SECRET", defaultSessionSecret),
		SyncInterval:     durationEnv("SYNC_INTERVAL", defaultSyncInterval),
		MessageLimit:     intEnv("MESSAGE_LIMIT", defaultMessageLimit),
		PubSubDriver:     strings.ToLower(stringEnv("PUBSUB_DRIVER", DriverMemory)),
		NatsURL:          os.Getenv("NATS_URL"),
		RelayEnabled:     boolEnv("RELAY_ENABLED", true),
		HomeDir:          homeDir(),
	}
}

// Validate reports configuration that would prevent the application from
// reaching its backend.
func (c *Config) Validate() error {
	if c.DBUrl == "" || c.DBNs == "" || c.DBDb == "" {
		return ErrMissingDatabaseSettings
	}
	switch c.PubSubDriver {
	case DriverMemory:
	case DriverNats:
		if c.NatsURL == "" {
			return errors.New("NATS_URL must be set when PUBSUB_DRIVER is nats")
		}
	default:
		return errors.New("PUBSUB_DRIVER must be memory or nats")
	}
	if c.MessageLimit <= 0 {
		return errors.New("MESSAGE_LIMIT must be positive")
	}
	return nil
}

func (c *Config) GetDBURL() string { return c.DBUrl }
func (c *Config) GetDBNs() string { return c.DBNs }
func (c *Config) GetDBDb() string { return c.DBDb }
func (c *Config) GetDBUser() string { return c.DBUser }
func (c *Config) GetDBPass() string { return c.DBPass }
func (c *Config) GetDBQueryTimeout() time.Duration { return c.DBQueryTimeout }
func (c *Config) GetDBExecuteTimeout() time.Duration { return c.DBExecuteTimeout }
func (c *Config) GetAppAddr() string { return c.AppAddr }
func (c *Config) GetSessionSecret() string { return c.SessionSecret }
func (c *Config) GetSyncInterval() time.Duration { return c.SyncInterval }
func (c *Config) GetMessageLimit() int { return c.MessageLimit }
func (c *Config) GetPubSubDriver() string { return c.PubSubDriver }
func (c *Config) GetNatsURL() string { return c.NatsURL }
func (c *Config) GetRelayEnabled() bool { return c.RelayEnabled }
func (c *Config) GetHomeDir() string { return c.HomeDir }

func stringEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("Ignoring invalid duration", "key", key, "value", v)
		return fallback
	}
	return d
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("Ignoring invalid integer", "key", key, "value", v)
		return fallback
	}
	return n
}

func boolEnv(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("Ignoring invalid boolean", "key", key, "value", v)
		return fallback
	}
	return b
}

// homeDir resolves where the CLI keeps its session file.
func homeDir() string {
	if v := strings.TrimSpace(os.Getenv("LIVECHAT_HOME")); v != "" {
		return v
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "livechat")
	}
	return ".livechat"
}
