package providers_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/scrivener/internal/providers"
)

func TestConfigDefaults(t *testing.T) {
	tests := []struct {
		provider    providers.Provider
		extra       func(*providers.Config)
		concurrency int
	}{
		{providers.ProviderOpenAI, func(c *providers.Config) { c.APIKey = "k" }, 8},
		{providers.ProviderVertex, func(c *providers.Config) { c.Project, c.Region = "p", "us-central1" }, 4},
		{providers.ProviderBedrock, func(c *providers.Config) { c.Region = "us-east-1" }, 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			cfg := providers.Config{Name: "x", Provider: tt.provider, Model: "m"}
			tt.extra(&cfg)

			require.NoError(t, cfg.Finalize(""))
			assert.Equal(t, tt.concurrency, cfg.Concurrency)
			assert.Equal(t, 3, cfg.MaxRetries)
			assert.Equal(t, 5*time.Minute, cfg.TimeoutDuration())
		})
	}
}

func TestConfigEnv(t *testing.T) {
	t.Setenv("SCRIVENER_ADAPTER_GPT_VISION_API_KEY", "from-env")
	t.Setenv("SCRIVENER_ADAPTER_GPT_VISION_MODEL", "gpt-4.1")

	cfg := providers.Config{Name: "gpt-vision", Provider: providers.ProviderOpenAI, Model: "gpt-4o"}
	require.NoError(t, cfg.Finalize("SCRIVENER_ADAPTER"))

	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, "gpt-4.1", cfg.Model)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  providers.Config
	}{
		{"missing name", providers.Config{Provider: providers.ProviderOpenAI, Model: "m", APIKey: "k"}},
		{"unknown provider", providers.Config{Name: "x", Provider: "azure", Model: "m"}},
		{"missing model", providers.Config{Name: "x", Provider: providers.ProviderOpenAI, APIKey: "k"}},
		{"openai without key", providers.Config{Name: "x", Provider: providers.ProviderOpenAI, Model: "m"}},
		{"vertex without project", providers.Config{Name: "x", Provider: providers.ProviderVertex, Model: "m", Region: "r"}},
		{"bedrock without region", providers.Config{Name: "x", Provider: providers.ProviderBedrock, Model: "m"}},
		{"bad timeout", providers.Config{Name: "x", Provider: providers.ProviderBedrock, Model: "m", Region: "r", Timeout: "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Finalize(""))
		})
	}
}

func TestConfigMerge(t *testing.T) {
	base := providers.Config{Name: "x", Provider: providers.ProviderOpenAI, Model: "a", Concurrency: 8}
	base.Merge(&providers.Config{Model: "b", Concurrency: 2})

	assert.Equal(t, "b", base.Model)
	assert.Equal(t, 2, base.Concurrency)
	assert.Equal(t, providers.ProviderOpenAI, base.Provider)
}
