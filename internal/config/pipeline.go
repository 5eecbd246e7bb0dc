package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvPipelineDefaultCycles = "SCRIVENER_PIPELINE_DEFAULT_CYCLES"
	EnvPipelineMaxCycles     = "SCRIVENER_PIPELINE_MAX_CYCLES"
	EnvPipelineRunTimeout    = "SCRIVENER_PIPELINE_RUN_TIMEOUT"
	EnvPipelineWatchInterval = "SCRIVENER_PIPELINE_WATCH_INTERVAL"
	EnvPipelineStaleAfter    = "SCRIVENER_PIPELINE_STALE_AFTER"
	EnvPipelineTempDir       = "SCRIVENER_PIPELINE_TEMP_DIR"
)

// PipelineConfig bounds translation runs and the stale process watcher.
type PipelineConfig struct {
	DefaultCycles *int   `toml:"default_cycles"`
	MaxCycles     int    `toml:"max_cycles"`
	RunTimeout    string `toml:"run_timeout"`
	WatchInterval string `toml:"watch_interval"`
	StaleAfter    string `toml:"stale_after"`
	TempDir       string `toml:"temp_dir"`
}

// Cycles returns the default critique cycle count.
func (c *PipelineConfig) Cycles() int {
	if c.DefaultCycles == nil {
		return 1
	}
	return *c.DefaultCycles
}

// RunTimeoutDuration returns RunTimeout as a time.Duration.
func (c *PipelineConfig) RunTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RunTimeout)
	return d
}

// WatchIntervalDuration returns WatchInterval as a time.Duration.
func (c *PipelineConfig) WatchIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.WatchInterval)
	return d
}

// StaleAfterDuration returns StaleAfter as a time.Duration.
func (c *PipelineConfig) StaleAfterDuration() time.Duration {
	d, _ := time.ParseDuration(c.StaleAfter)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.DefaultCycles != nil {
		c.DefaultCycles = overlay.DefaultCycles
	}
	if overlay.MaxCycles != 0 {
		c.MaxCycles = overlay.MaxCycles
	}
	if overlay.RunTimeout != "" {
		c.RunTimeout = overlay.RunTimeout
	}
	if overlay.WatchInterval != "" {
		c.WatchInterval = overlay.WatchInterval
	}
	if overlay.StaleAfter != "" {
		c.StaleAfter = overlay.StaleAfter
	}
	if overlay.TempDir != "" {
		c.TempDir = overlay.TempDir
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.DefaultCycles == nil {
		cycles := 1
		c.DefaultCycles = &cycles
	}
	if c.MaxCycles == 0 {
		c.MaxCycles = 5
	}
	if c.RunTimeout == "" {
		c.RunTimeout = "3h"
	}
	if c.WatchInterval == "" {
		c.WatchInterval = "1m"
	}
	if c.StaleAfter == "" {
		c.StaleAfter = "30m"
	}
	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}
}

func (c *PipelineConfig) loadEnv() {
	if v := os.Getenv(EnvPipelineDefaultCycles); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DefaultCycles = &n
		}
	}
	if v := os.Getenv(EnvPipelineMaxCycles); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxCycles = n
		}
	}
	if v := os.Getenv(EnvPipelineRunTimeout); v != "" {
		c.RunTimeout = v
	}
	if v := os.Getenv(EnvPipelineWatchInterval); v != "" {
		c.WatchInterval = v
	}
	if v := os.Getenv(EnvPipelineStaleAfter); v != "" {
		c.StaleAfter = v
	}
	if v := os.Getenv(EnvPipelineTempDir); v != "" {
		c.TempDir = v
	}
}

func (c *PipelineConfig) validate() error {
	if c.MaxCycles < 0 {
		return fmt.Errorf("max_cycles must not be negative")
	}
	if cycles := c.Cycles(); cycles < 0 || cycles > c.MaxCycles {
		return fmt.Errorf("default_cycles must be within [0, %d]", c.MaxCycles)
	}
	for name, v := range map[string]string{
		"run_timeout":    c.RunTimeout,
		"watch_interval": c.WatchInterval,
		"stale_after":    c.StaleAfter,
	} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
