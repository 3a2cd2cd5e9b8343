package config

import (
	"strings"
	"time"
)

// ClientConfig configures the session core driven by the admin CLI.
type ClientConfig struct {
	// APIBaseURL is where the ifcore HTTP API is served.
	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8080"`

	// PollInterval is the delay between job poller ticks.
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"2s"`

	// PollConcurrency caps parallel job fetches within one tick.
	PollConcurrency int `env:"POLL_CONCURRENCY" envDefault:"8"`

	// RequestTimeout bounds each API call made by the client.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`
}

// Sanitize applies guardrails to client configuration values.
func (c *ClientConfig) Sanitize() {
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.PollInterval < 100*time.Millisecond {
		c.PollInterval = 100 * time.Millisecond
	}
	if c.PollConcurrency < 1 {
		c.PollConcurrency = 1
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 60 * time.Second
	}
}
