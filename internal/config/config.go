// Package config loads the suite and stand-in storefront configuration from
// environment variables and CLI flags, validates it, and provides defaults.
//
// The suite reads E2E_* variables. The stand-in storefront binary reads
// LISTEN_ADDR and STOREFRONT_* variables plus the --addr flag.
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kuitang/storefront-e2e/internal/urlutil"
)

// Driver names accepted by E2E_DRIVER.
const (
	DriverPlaywright = "playwright"
	DriverRod        = "rod"
)

const (
	defaultWait         = 5 * time.Second
	defaultPollInterval = 100 * time.Millisecond
	defaultViewport     = "1920x1080"
)

// Config holds all suite and stand-in configuration.
type Config struct {
	// Target
	BaseURL string // Live application URL; empty means start the stand-in storefront

	// Browser
	Driver         string
	Headless       bool
	ViewportWidth  int
	ViewportHeight int

	// Waits
	ImplicitWait time.Duration // Bound applied to every element lookup
	ExplicitWait time.Duration // Default bound for readiness conditions
	PollInterval time.Duration // Pause between condition checks

	// Stand-in storefront
	ListenAddr  string
	GlitchDelay time.Duration // Login delay for performance_glitch_user
}

// ValidationError represents a configuration validation error with multiple issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// ParseFlags parses the storefront binary's CLI flags. Call before LoadConfig.
func ParseFlags() (addr string) {
	flag.StringVar(&addr, "addr", "", "Listen address (default :8080, overrides LISTEN_ADDR env var)")
	flag.Parse()
	return addr
}

// LoadConfig loads configuration from environment variables.
// The addr flag overrides the LISTEN_ADDR env var if non-empty.
func LoadConfig(addr string) (*Config, error) {
	cfg := &Config{}

	cfg.BaseURL = urlutil.NormalizeBase(getEnvOrDefault("E2E_BASE_URL", ""))

	cfg.Driver = strings.ToLower(getEnvOrDefault("E2E_DRIVER", DriverPlaywright))
	cfg.Headless = parseBoolOrDefault("E2E_HEADLESS", true)
	width, height, err := parseViewport(getEnvOrDefault("E2E_VIEWPORT", defaultViewport))
	if err != nil {
		return nil, &ValidationError{Errors: []string{err.Error()}}
	}
	cfg.ViewportWidth = width
	cfg.ViewportHeight = height

	cfg.ImplicitWait = parseDurationOrDefault("E2E_IMPLICIT_WAIT", defaultWait)
	cfg.ExplicitWait = parseDurationOrDefault("E2E_EXPLICIT_WAIT", defaultWait)
	cfg.PollInterval = parseDurationOrDefault("E2E_POLL_INTERVAL", defaultPollInterval)

	cfg.ListenAddr = getEnvOrDefault("LISTEN_ADDR", ":8080")
	if addr != "" {
		cfg.ListenAddr = addr
	}
	cfg.GlitchDelay = parseDurationOrDefault("STOREFRONT_GLITCH_DELAY", 2*time.Second)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that all configuration values are usable.
func (c *Config) Validate() error {
	var errs []string

	if c.BaseURL != "" {
		if !urlutil.IsHTTPBase(c.BaseURL) {
			errs = append(errs, "E2E_BASE_URL must be an absolute http(s) URL")
		}
	}

	switch c.Driver {
	case DriverPlaywright, DriverRod:
	default:
		errs = append(errs, fmt.Sprintf("E2E_DRIVER must be %q or %q", DriverPlaywright, DriverRod))
	}

	if c.ImplicitWait <= 0 {
		errs = append(errs, "E2E_IMPLICIT_WAIT must be positive")
	}
	if c.ExplicitWait <= 0 {
		errs = append(errs, "E2E_EXPLICIT_WAIT must be positive")
	}
	if c.PollInterval <= 0 {
		errs = append(errs, "E2E_POLL_INTERVAL must be positive")
	} else if c.ImplicitWait > 0 && c.PollInterval > c.ImplicitWait {
		errs = append(errs, "E2E_POLL_INTERVAL must not exceed E2E_IMPLICIT_WAIT")
	}

	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		errs = append(errs, "E2E_VIEWPORT must be WIDTHxHEIGHT with positive values")
	}
	if c.GlitchDelay < 0 {
		errs = append(errs, "STOREFRONT_GLITCH_DELAY must not be negative")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// UsesStandIn reports whether the suite should start the in-process storefront.
func (c *Config) UsesStandIn() bool {
	return c.BaseURL == ""
}

// PrintStartupSummary prints a human-readable summary of the storefront configuration.
func (c *Config) PrintStartupSummary(w io.Writer) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "storefront stand-in starting...")
	fmt.Fprintf(w, "  Listen:  %s\n", c.ListenAddr)
	fmt.Fprintf(w, "  Glitch:  %s login delay\n", c.GlitchDelay)
	fmt.Fprintln(w, "")
}

// Helper functions for parsing environment variables

func getEnvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	value := getEnvOrDefault(key, "")
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := getEnvOrDefault(key, "")
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseViewport(value string) (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(value), "x")
	if !ok {
		return 0, 0, fmt.Errorf("E2E_VIEWPORT %q must be WIDTHxHEIGHT", value)
	}
	width, errW := strconv.Atoi(strings.TrimSpace(w))
	height, errH := strconv.Atoi(strings.TrimSpace(h))
	if errW != nil || errH != nil {
		return 0, 0, fmt.Errorf("E2E_VIEWPORT %q must be WIDTHxHEIGHT", value)
	}
	return width, height, nil
}
