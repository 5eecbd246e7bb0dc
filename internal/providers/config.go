package providers

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
)

// Provider names a model backend.
type Provider string

const (
	ProviderOpenAI  Provider = "openai"
	ProviderVertex  Provider = "vertex"
	ProviderBedrock Provider = "bedrock"
)

// DefaultConcurrency is the simultaneous-request ceiling per provider.
var DefaultConcurrency = map[Provider]int{
	ProviderOpenAI:  8,
	ProviderVertex:  4,
	ProviderBedrock: 2,
}

// Config describes one named adapter: a provider, a model, its credentials,
// and the limits the scheduler and retry policy apply to it.
type Config struct {
	Name        string   `toml:"name" json:"name"`
	Provider    Provider `toml:"provider" json:"provider"`
	Model       string   `toml:"model" json:"model"`
	APIKey      string   `toml:"api_key" json:"-"`
	BaseURL     string   `toml:"base_url" json:"-"`
	Project     string   `toml:"project" json:"-"`
	Region      string   `toml:"region" json:"-"`
	Concurrency int      `toml:"concurrency" json:"concurrency"`
	MaxRetries  int      `toml:"max_retries" json:"max_retries"`
	Timeout     string   `toml:"timeout" json:"timeout"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
// Overrides are read from <prefix>_<NAME>_{API_KEY,MODEL,BASE_URL,PROJECT,REGION}.
func (c *Config) Finalize(prefix string) error {
	c.loadDefaults()
	if prefix != "" {
		c.loadEnv(prefix)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Project != "" {
		c.Project = overlay.Project
	}
	if overlay.Region != "" {
		c.Region = overlay.Region
	}
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadDefaults() {
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency[c.Provider]
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.Timeout == "" {
		c.Timeout = "5m"
	}
}

func (c *Config) loadEnv(prefix string) {
	key := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(c.Name))
	env := func(field string) string {
		return os.Getenv(fmt.Sprintf("%s_%s_%s", prefix, key, field))
	}

	if v := env("API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := env("MODEL"); v != "" {
		c.Model = v
	}
	if v := env("BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := env("PROJECT"); v != "" {
		c.Project = v
	}
	if v := env("REGION"); v != "" {
		c.Region = v
	}
}

func (c *Config) validate() error {
	if c.Name == "" {
		return fmt.Errorf("name required")
	}
	if _, ok := DefaultConcurrency[c.Provider]; !ok {
		return fmt.Errorf("%w: %q (supported: %v)", ErrUnknownProvider, c.Provider, Providers())
	}
	if c.Model == "" {
		return fmt.Errorf("%s: model required", c.Name)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%s: concurrency must be positive", c.Name)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("%s: invalid timeout: %w", c.Name, err)
	}

	switch c.Provider {
	case ProviderOpenAI:
		if c.APIKey == "" {
			return fmt.Errorf("%s: api_key required", c.Name)
		}
	case ProviderVertex:
		if c.Project == "" || c.Region == "" {
			return fmt.Errorf("%s: project and region required", c.Name)
		}
	case ProviderBedrock:
		if c.Region == "" {
			return fmt.Errorf("%s: region required", c.Name)
		}
	}
	return nil
}

// Providers lists the supported provider names.
func Providers() []Provider {
	out := make([]Provider, 0, len(DefaultConcurrency))
	for p := range DefaultConcurrency {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
