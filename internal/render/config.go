package render

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds headless browser settings.
type Config struct {
	ExecPath string `toml:"exec_path"`
	Timeout  string `toml:"timeout"`
	Headless *bool  `toml:"headless"`
	Dir      string `toml:"dir"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ExecPath string
	Timeout  string
	Headless string
	Dir      string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// IsHeadless reports whether the browser runs without a window. Defaults to true.
func (c *Config) IsHeadless() bool {
	return c.Headless == nil || *c.Headless
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.ExecPath != "" {
		c.ExecPath = overlay.ExecPath
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.Headless != nil {
		c.Headless = overlay.Headless
	}
	if overlay.Dir != "" {
		c.Dir = overlay.Dir
	}
}

func (c *Config) loadDefaults() {
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.Dir == "" {
		c.Dir = os.TempDir()
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.ExecPath != "" {
		if v := os.Getenv(env.ExecPath); v != "" {
			c.ExecPath = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	if env.Headless != "" {
		if v := os.Getenv(env.Headless); v != "" {
			if headless, err := strconv.ParseBool(v); err == nil {
				c.Headless = &headless
			}
		}
	}
	if env.Dir != "" {
		if v := os.Getenv(env.Dir); v != "" {
			c.Dir = v
		}
	}
}

func (c *Config) validate() error {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
