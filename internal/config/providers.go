package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/scrivener/internal/providers"
)

const (
	EnvProvidersDefault = "SCRIVENER_PROVIDERS_DEFAULT"

	// EnvAdapterPrefix prefixes per-adapter overrides:
	// SCRIVENER_ADAPTER_<NAME>_{API_KEY,MODEL,BASE_URL,PROJECT,REGION}.
	EnvAdapterPrefix = "SCRIVENER_ADAPTER"
)

// ProvidersConfig lists the model adapters and names the default.
type ProvidersConfig struct {
	Default  string             `toml:"default"`
	Adapters []providers.Config `toml:"adapters"`
}

// Finalize applies defaults, environment variable overrides, and validation
// to the section and every adapter.
func (c *ProvidersConfig) Finalize() error {
	c.loadEnv()
	c.loadDefaults()

	for i := range c.Adapters {
		if err := c.Adapters[i].Finalize(EnvAdapterPrefix); err != nil {
			return fmt.Errorf("adapter %d: %w", i, err)
		}
	}
	return c.validate()
}

// Merge overlays adapters by name; unknown names are appended.
func (c *ProvidersConfig) Merge(overlay *ProvidersConfig) {
	if overlay.Default != "" {
		c.Default = overlay.Default
	}

	for _, o := range overlay.Adapters {
		merged := false
		for i := range c.Adapters {
			if c.Adapters[i].Name == o.Name {
				c.Adapters[i].Merge(&o)
				merged = true
				break
			}
		}
		if !merged {
			c.Adapters = append(c.Adapters, o)
		}
	}
}

func (c *ProvidersConfig) loadDefaults() {
	if c.Default == "" && len(c.Adapters) > 0 {
		c.Default = c.Adapters[0].Name
	}
}

func (c *ProvidersConfig) loadEnv() {
	if v := os.Getenv(EnvProvidersDefault); v != "" {
		c.Default = v
	}
}

func (c *ProvidersConfig) validate() error {
	if len(c.Adapters) == 0 {
		return fmt.Errorf("at least one adapter required")
	}

	seen := make(map[string]bool, len(c.Adapters))
	for _, a := range c.Adapters {
		if seen[a.Name] {
			return fmt.Errorf("%w: %s", providers.ErrDuplicateName, a.Name)
		}
		seen[a.Name] = true
	}

	if !seen[c.Default] {
		return fmt.Errorf("default adapter %q not configured", c.Default)
	}
	return nil
}
