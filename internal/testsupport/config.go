package testsupport

import (
	"path/filepath"
	"testing"

	"storyreel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Shotstack.APIKey = "test"
	cfgVal.Shotstack.EditBaseURL = "https://api.shotstack.io/edit/stage"
	cfgVal.Shotstack.IngestBaseURL = "https://api.shotstack.io/ingest/stage"
	cfgVal.Shotstack.RequestsPerSecond = 0
	cfgVal.Render.PollIntervalMS = 1
	cfgVal.Render.MaxPollAttempts = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAPIKey sets the rendering engine API key on the test config.
func WithAPIKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Shotstack.APIKey = key
	}
}

// WithEngineURL points both engine base URLs at a test server.
func WithEngineURL(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Shotstack.EditBaseURL = baseURL + "/edit/stage"
		b.cfg.Shotstack.IngestBaseURL = baseURL + "/ingest/stage"
	}
}

// WithAPIToken sets the bearer token protecting the job API.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

// WithPolling overrides the poll bounds on the test config.
func WithPolling(intervalMS, maxAttempts int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Render.PollIntervalMS = intervalMS
		b.cfg.Render.MaxPollAttempts = maxAttempts
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
