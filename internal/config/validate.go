package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateShotstack(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	return nil
}

// RequireAPIKey reports a configuration error when no rendering engine key is set.
// Commands that only compile or validate locally do not need one.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.Shotstack.APIKey) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/storyreel/config.toml"
	}
	return fmt.Errorf("shotstack.api_key is required. Set SHOTSTACK_API_KEY env var or edit %s (create with 'storyreel config init')", defaultPath)
}

func (c *Config) validateShotstack() error {
	switch c.Shotstack.Environment {
	case EnvironmentSandbox, EnvironmentProduction:
	default:
		return fmt.Errorf("shotstack.environment must be %q or %q, got %q", EnvironmentSandbox, EnvironmentProduction, c.Shotstack.Environment)
	}
	for key, value := range map[string]string{
		"shotstack.edit_base_url":   c.Shotstack.EditBaseURL,
		"shotstack.ingest_base_url": c.Shotstack.IngestBaseURL,
	} {
		if err := validateHTTPURL(key, value); err != nil {
			return err
		}
	}
	if c.Shotstack.CallbackURL != "" {
		if err := validateHTTPURL("shotstack.callback_url", c.Shotstack.CallbackURL); err != nil {
			return err
		}
	}
	if c.Shotstack.RequestsPerSecond < 0 {
		return errors.New("shotstack.requests_per_second must be >= 0 (0 disables throttling)")
	}
	return nil
}

func (c *Config) validateRender() error {
	if err := ensurePositiveMap(map[string]int{
		"render.poll_interval_ms":        c.Render.PollIntervalMS,
		"render.max_poll_attempts":       c.Render.MaxPollAttempts,
		"render.max_concurrent_polls":    c.Render.MaxConcurrentPolls,
		"render.resume_interval_seconds": c.Render.ResumeIntervalSeconds,
	}); err != nil {
		return err
	}
	if !strings.HasPrefix(c.Render.Background, "#") {
		return errors.New("render.background must be a hex colour such as #000000")
	}
	return nil
}

func validateHTTPURL(key, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", key, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", key, value)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
