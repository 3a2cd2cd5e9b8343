package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - database.go: Database and cache configuration
//   - http.go: HTTP server and upload limits
//   - storage.go: Object storage for uploaded models
//   - inference.go: External check and chat service
//   - categories.go: Team to category mapping
//   - services.go: Service mode and runner configuration
//   - client.go: Session core used by the admin CLI
type AppConfig struct {
	// IsDev controls development mode behavior.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`
	Cache    CacheConfig

	// HTTP server configuration
	HTTP   HTTPConfig
	Upload UploadConfig `envPrefix:"UPLOAD_"`

	Storage   StorageConfig   `envPrefix:"STORAGE_"`
	Inference InferenceConfig `envPrefix:"INFERENCE_"`
	Category  CategoryConfig  `envPrefix:"CATEGORY_"`

	// Service mode configuration
	Services string `env:"SERVICES" envDefault:"http"`

	JobSync JobSyncConfig
	Reaper  ReaperConfig

	Client ClientConfig `envPrefix:"CLIENT_"`

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Upload.Sanitize()
	c.Storage.Sanitize()
	c.Inference.Sanitize()
	c.Category.Sanitize()
	c.JobSync.Sanitize()
	c.Reaper.Sanitize()
	c.Client.Sanitize()
	c.Observability.Sanitize()

	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	return c.serviceEnabled(ServiceModeHTTP)
}

// IsJobSyncEnabled returns true if the background job sync runner is enabled.
func (c *AppConfig) IsJobSyncEnabled() bool {
	return c.serviceEnabled(ServiceModeJobSync)
}

// IsReaperEnabled returns true if the reaper service is enabled.
func (c *AppConfig) IsReaperEnabled() bool {
	return c.serviceEnabled(ServiceModeReaper)
}

func (c *AppConfig) serviceEnabled(mode ServiceMode) bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[mode]
}
