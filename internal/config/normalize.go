package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeShotstack()
	c.normalizeRender()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("STORYREEL_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeShotstack() {
	c.Shotstack.APIKey = strings.TrimSpace(c.Shotstack.APIKey)
	if c.Shotstack.APIKey == "" {
		if value, ok := os.LookupEnv("SHOTSTACK_API_KEY"); ok {
			c.Shotstack.APIKey = strings.TrimSpace(value)
		}
	}
	if value, ok := os.LookupEnv("SHOTSTACK_ENV"); ok && strings.TrimSpace(value) != "" {
		c.Shotstack.Environment = value
	}
	c.Shotstack.Environment = strings.ToLower(strings.TrimSpace(c.Shotstack.Environment))
	switch c.Shotstack.Environment {
	case "", "stage", "sandbox":
		c.Shotstack.Environment = EnvironmentSandbox
	case "v1", "prod", "production":
		c.Shotstack.Environment = EnvironmentProduction
	}
	c.Shotstack.EditBaseURL = strings.TrimRight(strings.TrimSpace(c.Shotstack.EditBaseURL), "/")
	if c.Shotstack.EditBaseURL == "" {
		c.Shotstack.EditBaseURL = editBaseURL(c.Shotstack.Environment)
	}
	c.Shotstack.IngestBaseURL = strings.TrimRight(strings.TrimSpace(c.Shotstack.IngestBaseURL), "/")
	if c.Shotstack.IngestBaseURL == "" {
		c.Shotstack.IngestBaseURL = ingestBaseURL(c.Shotstack.Environment)
	}
	c.Shotstack.CallbackURL = strings.TrimSpace(c.Shotstack.CallbackURL)
	if c.Shotstack.RequestTimeoutSeconds <= 0 {
		c.Shotstack.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
	if c.Shotstack.Burst <= 0 {
		c.Shotstack.Burst = defaultBurst
	}
}

func (c *Config) normalizeRender() {
	if c.Render.PollIntervalMS <= 0 {
		c.Render.PollIntervalMS = defaultPollIntervalMS
	}
	if c.Render.MaxPollAttempts <= 0 {
		c.Render.MaxPollAttempts = defaultMaxPollAttempts
	}
	if c.Render.MaxConcurrentPolls <= 0 {
		c.Render.MaxConcurrentPolls = defaultMaxConcurrentPolls
	}
	if c.Render.ResumeIntervalSeconds <= 0 {
		c.Render.ResumeIntervalSeconds = defaultResumeIntervalSeconds
	}
	c.Render.Background = strings.TrimSpace(c.Render.Background)
	if c.Render.Background == "" {
		c.Render.Background = defaultBackground
	}
	c.Render.Format = strings.ToLower(strings.TrimSpace(c.Render.Format))
	if c.Render.Format == "" {
		c.Render.Format = defaultFormat
	}
	c.Render.Resolution = strings.ToLower(strings.TrimSpace(c.Render.Resolution))
	if c.Render.Resolution == "" {
		c.Render.Resolution = defaultResolution
	}
	c.Render.AspectRatio = strings.TrimSpace(c.Render.AspectRatio)
	if c.Render.AspectRatio == "" {
		c.Render.AspectRatio = defaultAspectRatio
	}
	if c.Render.FPS <= 0 {
		c.Render.FPS = defaultFPS
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
