package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:     "single service - http",
			input:    "http",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true},
		},
		{
			name:  "multiple services",
			input: "http,job-sync,reaper",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:    true,
				ServiceModeJobSync: true,
				ServiceModeReaper:  true,
			},
		},
		{
			name:  "services with spaces",
			input: " http , job-sync ",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:    true,
				ServiceModeJobSync: true,
			},
		},
		{
			name:     "duplicate services",
			input:    "reaper,reaper",
			expected: map[ServiceMode]bool{ServiceModeReaper: true},
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
		{
			name:        "only commas",
			input:       ",,",
			expectError: true,
		},
		{
			name:        "invalid service",
			input:       "http,scheduler",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseServices(tt.input)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("ParseServices(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestConfig_ServiceEnabledMethods(t *testing.T) {
	cfg := &AppConfig{Services: "http,reaper"}
	assert.True(t, cfg.IsHTTPServerEnabled())
	assert.True(t, cfg.IsReaperEnabled())
	assert.False(t, cfg.IsJobSyncEnabled())

	cfg.Services = "bogus"
	assert.False(t, cfg.IsHTTPServerEnabled())
}

func TestValidServiceModes(t *testing.T) {
	modes := ValidServiceModes()
	assert.Equal(t, []ServiceMode{ServiceModeHTTP, ServiceModeJobSync, ServiceModeReaper}, modes)
}

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, 2*time.Second, cfg.Client.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.Inference.CheckTimeout)
	assert.Equal(t, 8*time.Second, cfg.Inference.JobTimeout)
	assert.Equal(t, 50*time.Second, cfg.Inference.ChatTimeout)
	assert.Equal(t, DefaultUploadMaxBytes, cfg.Upload.MaxBytes)
	assert.Equal(t, "energy", cfg.Category.TeamMap["lux-ai"])
	assert.Equal(t, "structure", cfg.Category.TeamMap["Mastodonte"])
	assert.Len(t, cfg.Category.TeamMap, 5)
}

func TestAppConfig_ParseEnv(t *testing.T) {
	t.Setenv("CATEGORY_TEAM_MAP", " team-x : lighting ,team-y:fire-safety, :energy")
	t.Setenv("INFERENCE_BASE_URL", "https://checks.example.com/ ")
	t.Setenv("STORAGE_BUCKET", "models")
	t.Setenv("CLIENT_POLL_INTERVAL", "10ms")
	t.Setenv("UPLOAD_MAX_BYTES", "0")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, map[string]string{"team-x": "lighting", "team-y": "fire-safety"}, cfg.Category.TeamMap)
	assert.Equal(t, "https://checks.example.com", cfg.Inference.BaseURL)
	assert.Equal(t, "models", cfg.Storage.Bucket)
	assert.Equal(t, 100*time.Millisecond, cfg.Client.PollInterval)
	assert.Equal(t, DefaultUploadMaxBytes, cfg.Upload.MaxBytes)
}

func TestReaperConfig_Sanitize(t *testing.T) {
	r := ReaperConfig{Interval: time.Second, MaxAge: time.Second, BatchSize: 0}
	r.Sanitize()
	assert.Equal(t, time.Minute, r.Interval)
	assert.Equal(t, 5*time.Minute, r.MaxAge)
	assert.Equal(t, 1, r.BatchSize)
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{Enabled: true, StatsdAddress: "   ", Prefix: ".ifcore."}
	cfg.Sanitize()
	assert.False(t, cfg.IsEnabled())
	assert.Equal(t, "ifcore", cfg.Prefix)
}
