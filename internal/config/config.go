// Package config handles application configuration loading and validation using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Criterion kinds understood by the achievement evaluator.
const (
	CriterionTotalUniqueVisits    = "total_unique_visits"
	CriterionUniqueMunicipalities = "unique_municipalities"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Schema management modes.
const (
	MigrateAuto       = "auto"       // gorm AutoMigrate
	MigrateMigrations = "migrations" // embedded golang-migrate SQL files
)

// DefaultCheckinRadiusMeters is the geofence radius used when none is configured.
const DefaultCheckinRadiusMeters = 4000

// Config represents the application configuration.
type Config struct {
	Server       ServerConfig        `mapstructure:"server"`
	Database     DatabaseConfig      `mapstructure:"database"`
	Cache        CacheConfig         `mapstructure:"cache"`
	Checkin      CheckinConfig       `mapstructure:"checkin"`
	Auth         AuthConfig          `mapstructure:"auth"`
	Achievements []AchievementConfig `mapstructure:"achievements"`
	Metrics      MetricsConfig       `mapstructure:"metrics"`
	Logging      LoggingConfig       `mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Environment  string `mapstructure:"environment"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // seconds
}

// DatabaseConfig contains database connection settings for PostgreSQL, SQLite and Redis.
type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"`
	Migrate  string         `mapstructure:"migrate"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains PostgreSQL database connection and pool settings.
type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// SQLiteConfig contains the SQLite database location, used for local development.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig contains Redis cache connection and pool settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// CacheConfig controls caching of the read-only location catalog.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	TTL     int    `mapstructure:"ttl"` // seconds
	Prefix  string `mapstructure:"prefix"`
}

// CheckinConfig contains geofence settings for check-ins.
type CheckinConfig struct {
	RadiusMeters float64 `mapstructure:"radius_meters"`
	// RecordRepeatVisits keeps a timestamped ledger row for every successful
	// check-in, including repeats. Statistics count distinct locations either way.
	RecordRepeatVisits bool `mapstructure:"record_repeat_visits"`
}

// AuthConfig contains password hashing settings.
type AuthConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

// AchievementConfig is one entry of the achievement catalog.
type AchievementConfig struct {
	ID               uint   `mapstructure:"id"`
	Name             string `mapstructure:"name"`
	Description      string `mapstructure:"description"`
	Criterion        string `mapstructure:"criterion"`
	Threshold        int    `mapstructure:"threshold"`
	UnlockedImageURL string `mapstructure:"unlocked_image_url"`
}

// MetricsConfig contains metrics settings.
type MetricsConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig contains Prometheus metrics exporter settings.
type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig contains application logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// DefaultAchievements returns the built-in achievement catalog. It seeds the
// achievements table when the configuration file does not declare one.
func DefaultAchievements() []AchievementConfig {
	return []AchievementConfig{
		{ID: 1, Name: "Novice Explorer", Description: "Visit your first unique location.", Criterion: CriterionTotalUniqueVisits, Threshold: 1},
		{ID: 2, Name: "Keen Explorer", Description: "Visit 5 unique locations.", Criterion: CriterionTotalUniqueVisits, Threshold: 5},
		{ID: 3, Name: "Municipality Conqueror (1)", Description: "Visit locations in 1 different municipality.", Criterion: CriterionUniqueMunicipalities, Threshold: 1},
		{ID: 4, Name: "Municipality Conqueror (3)", Description: "Visit locations in 3 different municipalities.", Criterion: CriterionUniqueMunicipalities, Threshold: 3},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.migrate", MigrateAuto)
	v.SetDefault("database.sqlite.path", "geoquest.db")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.ssl_mode", "disable")
	v.SetDefault("database.postgres.max_open_conns", 25)
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.conn_max_lifetime", 300)
	v.SetDefault("database.redis.host", "localhost")
	v.SetDefault("database.redis.port", 6379)
	v.SetDefault("database.redis.pool_size", 10)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl", 300)
	v.SetDefault("cache.prefix", "geoquest")

	v.SetDefault("checkin.radius_meters", DefaultCheckinRadiusMeters)
	v.SetDefault("checkin.record_repeat_visits", true)

	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("metrics.prometheus.enabled", true)
	v.SetDefault("metrics.prometheus.port", 9090)
	v.SetDefault("metrics.prometheus.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// Load reads configuration from file and environment variables.
// A missing config file is not an error: defaults and environment apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/geoquest/")
	}

	// Server configuration
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
	_ = v.BindEnv("server.environment", "SERVER_ENVIRONMENT")

	// Database configuration
	_ = v.BindEnv("database.driver", "DATABASE_DRIVER")
	_ = v.BindEnv("database.migrate", "DATABASE_MIGRATE")
	_ = v.BindEnv("database.sqlite.path", "SQLITE_PATH")
	_ = v.BindEnv("database.postgres.host", "POSTGRES_HOST")
	_ = v.BindEnv("database.postgres.port", "POSTGRES_PORT")
	_ = v.BindEnv("database.postgres.database", "POSTGRES_DB")
	_ = v.BindEnv("database.postgres.user", "POSTGRES_USER")
	_ = v.BindEnv("database.postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("database.postgres.ssl_mode", "POSTGRES_SSL_MODE")
	_ = v.BindEnv("database.postgres.max_open_conns", "POSTGRES_MAX_OPEN_CONNS")
	_ = v.BindEnv("database.postgres.max_idle_conns", "POSTGRES_MAX_IDLE_CONNS")
	_ = v.BindEnv("database.postgres.conn_max_lifetime", "POSTGRES_CONN_MAX_LIFETIME")

	// Redis configuration
	_ = v.BindEnv("database.redis.host", "REDIS_HOST")
	_ = v.BindEnv("database.redis.port", "REDIS_PORT")
	_ = v.BindEnv("database.redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("database.redis.db", "REDIS_DB")
	_ = v.BindEnv("database.redis.pool_size", "REDIS_POOL_SIZE")
	_ = v.BindEnv("cache.enabled", "CACHE_ENABLED")
	_ = v.BindEnv("cache.ttl", "CACHE_TTL")

	// Check-in configuration
	_ = v.BindEnv("checkin.radius_meters", "CHECKIN_RADIUS_METERS")
	_ = v.BindEnv("checkin.record_repeat_visits", "CHECKIN_RECORD_REPEAT_VISITS")

	_ = v.BindEnv("auth.bcrypt_cost", "AUTH_BCRYPT_COST")

	// Metrics configuration
	_ = v.BindEnv("metrics.prometheus.enabled", "METRICS_ENABLED")
	_ = v.BindEnv("metrics.prometheus.port", "METRICS_PORT")

	// Logging configuration
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("logging.output", "LOG_OUTPUT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(config.Achievements) == 0 {
		config.Achievements = DefaultAchievements()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Checkin.RadiusMeters <= 0 {
		return fmt.Errorf("checkin.radius_meters must be positive")
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if c.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if c.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	case DriverSQLite:
		if c.Database.SQLite.Path == "" {
			return fmt.Errorf("database.sqlite.path is required")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q (valid: postgres, sqlite)", c.Database.Driver)
	}

	switch c.Database.Migrate {
	case MigrateAuto:
	case MigrateMigrations:
		if c.Database.Driver != DriverPostgres {
			return fmt.Errorf("database.migrate=%s requires the postgres driver", MigrateMigrations)
		}
	default:
		return fmt.Errorf("unsupported database.migrate %q (valid: auto, migrations)", c.Database.Migrate)
	}

	if c.Cache.Enabled && c.Database.Redis.Host == "" {
		return fmt.Errorf("database.redis.host is required when cache is enabled")
	}

	return ValidateAchievements(c.Achievements)
}

// ValidateAchievements checks the catalog for duplicate ids, unknown criteria and bad thresholds.
func ValidateAchievements(catalog []AchievementConfig) error {
	if len(catalog) == 0 {
		return fmt.Errorf("at least one achievement must be configured")
	}

	seen := make(map[uint]bool, len(catalog))
	for _, a := range catalog {
		if a.ID == 0 {
			return fmt.Errorf("achievement %q: id is required", a.Name)
		}
		if seen[a.ID] {
			return fmt.Errorf("achievement id %d is declared twice", a.ID)
		}
		seen[a.ID] = true

		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("achievement %d: name is required", a.ID)
		}
		switch a.Criterion {
		case CriterionTotalUniqueVisits, CriterionUniqueMunicipalities:
		default:
			return fmt.Errorf("achievement %d: unknown criterion %q", a.ID, a.Criterion)
		}
		if a.Threshold < 1 {
			return fmt.Errorf("achievement %d: threshold must be at least 1", a.ID)
		}
	}
	return nil
}

// ReadTimeoutDuration returns the HTTP read timeout.
func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(c.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns the HTTP write timeout.
func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(c.WriteTimeout) * time.Second
}

// TTLDuration returns the cache entry lifetime.
func (c *CacheConfig) TTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Second
}
