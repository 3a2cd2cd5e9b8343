package config

import (
	"strings"
	"time"
)

// InferenceConfig configures the external service that runs compliance checks and chat.
type InferenceConfig struct {
	// BaseURL of the inference service (e.g. "https://example-space.hf.space").
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:7860"`

	// CheckTimeout bounds the hand-off POST /check. The model travels inline, so this is generous.
	CheckTimeout time.Duration `env:"CHECK_TIMEOUT" envDefault:"30s"`

	// JobTimeout bounds a single GET /jobs/{id} status read.
	JobTimeout time.Duration `env:"JOB_TIMEOUT" envDefault:"8s"`

	// ChatTimeout bounds the chat proxy; LLM replies are slow.
	ChatTimeout time.Duration `env:"CHAT_TIMEOUT" envDefault:"50s"`

	// MaxRetries applies to idempotent reads only. POST /check is never retried.
	MaxRetries int `env:"MAX_RETRIES" envDefault:"2"`
}

// Sanitize applies guardrails to inference configuration values.
func (c *InferenceConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.CheckTimeout <= 0 {
		c.CheckTimeout = 30 * time.Second
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = 8 * time.Second
	}
	if c.ChatTimeout <= 0 {
		c.ChatTimeout = 50 * time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
}
