// Package config provides configuration management for ls-telescope.
// Values come from TELESCOPE_* environment variables; command-line flags
// override them in cmd/ls-telescope.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultAPIURL        = "http://127.0.0.1:8080"
	DefaultTimeout       = 30 * time.Second
	DefaultFrameInterval = 50 * time.Millisecond
	DefaultVariant       = "simple"
	DefaultLocale        = "en"

	minTimeout       = 1 * time.Second
	maxTimeout       = 5 * time.Minute
	minFrameInterval = 16 * time.Millisecond
	maxFrameInterval = time.Second
)

// Config holds the application configuration.
type Config struct {
	APIURL  string        // TELESCOPE_API_URL (default: http://127.0.0.1:8080)
	Timeout time.Duration // TELESCOPE_TIMEOUT (default: 30s)

	Variant string // TELESCOPE_VARIANT: "simple" or "extended"
	Locale  string // TELESCOPE_LOCALE (default: en)

	MilestonesFile string // TELESCOPE_MILESTONES (optional, JSON, hot-reloaded)

	FrameInterval time.Duration // TELESCOPE_FRAME_INTERVAL (default: 50ms)
	StarDensity   float64       // TELESCOPE_STAR_DENSITY, virtual px² per star (default: 1000)

	LogFile  string // TELESCOPE_LOG_FILE (optional, rotated)
	LogLevel string // TELESCOPE_LOG_LEVEL (default: info)
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		APIURL:         envStr("TELESCOPE_API_URL", DefaultAPIURL),
		Timeout:        envDuration("TELESCOPE_TIMEOUT", DefaultTimeout),
		Variant:        envStr("TELESCOPE_VARIANT", DefaultVariant),
		Locale:         envStr("TELESCOPE_LOCALE", DefaultLocale),
		MilestonesFile: envStr("TELESCOPE_MILESTONES", ""),
		FrameInterval:  envDuration("TELESCOPE_FRAME_INTERVAL", DefaultFrameInterval),
		StarDensity:    envFloat("TELESCOPE_STAR_DENSITY", 1000),
		LogFile:        envStr("TELESCOPE_LOG_FILE", ""),
		LogLevel:       envStr("TELESCOPE_LOG_LEVEL", "info"),
	}
}

// Validate checks the configuration and clamps intervals into range.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("invalid API URL %q: must start with http:// or https://", c.APIURL)
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")

	switch c.Variant {
	case "simple", "extended":
	default:
		return fmt.Errorf("invalid variant %q: want simple or extended", c.Variant)
	}

	if c.StarDensity <= 0 {
		return fmt.Errorf("invalid star density %v: must be positive", c.StarDensity)
	}

	if c.Timeout < minTimeout {
		c.Timeout = minTimeout
	} else if c.Timeout > maxTimeout {
		c.Timeout = maxTimeout
	}

	if c.FrameInterval < minFrameInterval {
		c.FrameInterval = minFrameInterval
	} else if c.FrameInterval > maxFrameInterval {
		c.FrameInterval = maxFrameInterval
	}

	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
