package config

import "time"

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"                    envDefault:"localhost"`
	Port     int    `env:"PORT"                    envDefault:"5432"`
	User     string `env:"USER"                    envDefault:"ifcore"`
	Password string `env:"PASSWORD"                envDefault:"ifcore"`
	Name     string `env:"NAME"                    envDefault:"ifcore"`
	SSLMode  string `env:"SSL_MODE"                envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration for the job status cache.
type RedisConfig struct {
	URI      string `env:"URI"      envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	// Timeout bounds dialing and each cache command.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"500ms"`
}

// CacheConfig controls the Redis-backed job status cache.
type CacheConfig struct {
	// Enabled turns the cache on. When false the check service reads straight from Postgres.
	Enabled bool `env:"CACHE_ENABLED" envDefault:"false"`

	// JobStatusTTL bounds how long a terminal job status is remembered.
	JobStatusTTL time.Duration `env:"CACHE_JOB_STATUS_TTL" envDefault:"10m"`
}
