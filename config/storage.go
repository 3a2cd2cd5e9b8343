package config

import "strings"

// Storage drivers.
const (
	StorageDriverMinio  = "minio"
	StorageDriverMemory = "memory"
)

// StorageConfig points at the S3-compatible bucket that holds uploaded models.
type StorageConfig struct {
	// Driver selects the backend: "minio" for any S3-compatible endpoint, "memory" for local runs.
	Driver          string `env:"DRIVER"            envDefault:"minio"`
	Endpoint        string `env:"ENDPOINT"          envDefault:"localhost:9000"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"     envDefault:"minioadmin"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY" envDefault:"minioadmin"`
	Bucket          string `env:"BUCKET"            envDefault:"ifcore-models"`
	UseSSL          bool   `env:"USE_SSL"           envDefault:"false"`
	Region          string `env:"REGION"            envDefault:""`
	// CreateBucket makes the bucket on startup when it does not exist yet.
	CreateBucket bool `env:"CREATE_BUCKET" envDefault:"true"`
	// MaxRetries bounds retries for transient storage failures.
	MaxRetries uint64 `env:"MAX_RETRIES" envDefault:"3"`
}

// Sanitize applies guardrails to storage configuration values.
func (s *StorageConfig) Sanitize() {
	s.Endpoint = strings.TrimSpace(s.Endpoint)
	s.Bucket = strings.TrimSpace(s.Bucket)
	s.Driver = strings.ToLower(strings.TrimSpace(s.Driver))
	if s.Driver != StorageDriverMemory {
		s.Driver = StorageDriverMinio
	}
	if s.MaxRetries > 10 {
		s.MaxRetries = 10
	}
}
