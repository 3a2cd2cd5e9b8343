package config

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// MaxConnections caps concurrently accepted connections. Zero disables the cap.
	MaxConnections int `env:"HTTP_MAX_CONNECTIONS" envDefault:"0"`

	// CompressionEnabled enables gzip compression for JSON responses.
	CompressionEnabled bool `env:"HTTP_COMPRESSION_ENABLED" envDefault:"false"`

	// CompressionLevel is the gzip compression level (1-9).
	// Default is 6 (standard gzip default).
	CompressionLevel int `env:"HTTP_COMPRESSION_LEVEL" envDefault:"6"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	// Clamp compression level to valid gzip range (1-9)
	if h.CompressionLevel < 1 {
		h.CompressionLevel = 1
	}
	if h.CompressionLevel > 9 {
		h.CompressionLevel = 9
	}
	if h.MaxConnections < 0 {
		h.MaxConnections = 0
	}
}

// DefaultUploadMaxBytes is the largest model file accepted by default (200 MiB).
const DefaultUploadMaxBytes int64 = 200 << 20

// UploadConfig bounds model uploads.
type UploadConfig struct {
	// MaxBytes is the largest accepted model file.
	MaxBytes int64 `env:"MAX_BYTES" envDefault:"209715200"`
}

// Sanitize applies guardrails to upload configuration values.
func (u *UploadConfig) Sanitize() {
	if u.MaxBytes <= 0 {
		u.MaxBytes = DefaultUploadMaxBytes
	}
}
