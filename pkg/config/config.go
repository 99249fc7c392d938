package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// MinWatchIntervalMinutes is the shortest interval the status watcher may be scheduled with
const MinWatchIntervalMinutes = 15

// Config holds all configuration for the application
type Config struct {
	Environment   string
	IsProduction  bool
	IsDevelopment bool
	Language      string

	// Discord Bot Configuration
	DiscordToken  string
	CommandPrefix string

	// MongoDB Configuration
	MongoDBURI      string
	MongoDBDatabase string

	// Session Configuration
	JWTSecret        string
	SessionTTLHours  int
	SessionToken     string
	SessionTokenFile string

	// Device-local storage
	SnapshotDBPath string

	// Redis Configuration (optional, enables the shared run lease)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Status Watcher Configuration
	WatchIntervalMinutes int
	RetryDelaySeconds    int
	MinBatteryPercent    int
	NotifyOnFirstSight   bool
	PruneSnapshots       bool
	MetricsAddr          string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Environment:      getEnv("ENVIRONMENT", "development"),
		Language:         getEnv("LANGUAGE", "hr"),
		DiscordToken:     getEnv("DISCORD_TOKEN", ""),
		CommandPrefix:    getEnv("COMMAND_PREFIX", "!"),
		MongoDBURI:       getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDBDatabase:  getEnv("MONGODB_DATABASE", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		SessionToken:     getEnv("SESSION_TOKEN", ""),
		SessionTokenFile: getEnv("SESSION_TOKEN_FILE", ""),
		SnapshotDBPath:   getEnv("SNAPSHOT_DB_PATH", "menza_snapshots.db"),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		MetricsAddr:      getEnv("METRICS_ADDR", ""),
	}

	// Derived properties
	cfg.IsProduction = cfg.Environment == "production"
	cfg.IsDevelopment = !cfg.IsProduction

	if cfg.MongoDBDatabase == "" {
		cfg.MongoDBDatabase = "menza"
		if cfg.IsDevelopment {
			cfg.MongoDBDatabase = "menza_dev"
		}
	}

	// Parse numeric values
	cfg.SessionTTLHours = getEnvInt("SESSION_TTL_HOURS", 24*30)
	cfg.RedisDB = getEnvInt("REDIS_DB", 0)
	cfg.WatchIntervalMinutes = getEnvInt("STATUSWATCH_INTERVAL_MINUTES", MinWatchIntervalMinutes)
	cfg.RetryDelaySeconds = getEnvInt("STATUSWATCH_RETRY_DELAY_SECONDS", 30)
	cfg.MinBatteryPercent = getEnvInt("STATUSWATCH_MIN_BATTERY_PERCENT", 15)

	// Parse boolean values
	cfg.NotifyOnFirstSight = getEnvBool("STATUSWATCH_NOTIFY_ON_FIRST_SIGHT", true)
	cfg.PruneSnapshots = getEnvBool("STATUSWATCH_PRUNE_SNAPSHOTS", true)

	// The platform scheduler never runs periodic work more often than this
	if cfg.WatchIntervalMinutes < MinWatchIntervalMinutes {
		cfg.WatchIntervalMinutes = MinWatchIntervalMinutes
	}

	return cfg, nil
}

// ValidateBot checks the configuration required by the Discord bot
func (c *Config) ValidateBot() error {
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN environment variable is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	return nil
}

// ValidateWatcher checks the configuration required by the status watcher
func (c *Config) ValidateWatcher() error {
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN environment variable is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if c.SnapshotDBPath == "" {
		return fmt.Errorf("SNAPSHOT_DB_PATH must not be empty")
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt parses an integer environment variable, falling back on parse errors
func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}
