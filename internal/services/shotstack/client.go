package shotstack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/services"
)

const (
	EnvironmentSandbox    = "sandbox"
	EnvironmentProduction = "production"

	defaultAPIBase     = "https://api.shotstack.io"
	defaultHTTPTimeout = 30 * time.Second
	maxResponseBytes   = 4 << 20

	apiKeyHeader    = "x-api-key"
	requestIDHeader = "X-Request-Id"
)

// HTTPDoer describes the HTTP client used by the rendering engine client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config captures the connection settings read once at construction.
type Config struct {
	APIKey            string
	Environment       string
	EditBaseURL       string
	IngestBaseURL     string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// BaseURLs returns the edit and ingest API roots for an environment.
func BaseURLs(environment string) (string, string) {
	stage := "stage"
	if strings.EqualFold(strings.TrimSpace(environment), EnvironmentProduction) {
		stage = "v1"
	}
	return defaultAPIBase + "/edit/" + stage, defaultAPIBase + "/ingest/" + stage
}

// Client talks to the rendering engine. It holds no job state between calls
// and is safe for concurrent use.
type Client struct {
	cfg       Config
	http      HTTPDoer
	limiter   *rate.Limiter
	logger    *slog.Logger
	requestID func() string
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithLimiter overrides the outbound request limiter.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		if limiter != nil {
			c.limiter = limiter
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a client from cfg.
func New(cfg Config, opts ...Option) *Client {
	editURL, ingestURL := BaseURLs(cfg.Environment)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.EditBaseURL = strings.TrimRight(strings.TrimSpace(cfg.EditBaseURL), "/")
	cfg.IngestBaseURL = strings.TrimRight(strings.TrimSpace(cfg.IngestBaseURL), "/")
	if cfg.EditBaseURL == "" {
		cfg.EditBaseURL = editURL
	}
	if cfg.IngestBaseURL == "" {
		cfg.IngestBaseURL = ingestURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	client := &Client{
		cfg:       cfg,
		http:      &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(limit, burst),
		logger:    logging.NewNop(),
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// NewFromConfig builds a client from the application configuration.
func NewFromConfig(cfg *config.Config, opts ...Option) *Client {
	return New(Config{
		APIKey:            cfg.Shotstack.APIKey,
		Environment:       cfg.Shotstack.Environment,
		EditBaseURL:       cfg.Shotstack.EditBaseURL,
		IngestBaseURL:     cfg.Shotstack.IngestBaseURL,
		Timeout:           cfg.RequestTimeout(),
		RequestsPerSecond: cfg.Shotstack.RequestsPerSecond,
		Burst:             cfg.Shotstack.Burst,
	}, opts...)
}

// Environment returns the configured environment name.
func (c *Client) Environment() string {
	return c.cfg.Environment
}

// do issues one request. body is JSON encoded when non-nil and a 2xx
// response body is decoded into out when non-nil.
func (c *Client) do(ctx context.Context, op, method, endpoint string, body, out any) error {
	if c.cfg.APIKey == "" {
		return services.Wrap(services.ErrConfiguration, "shotstack", op, "api key required", nil)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("shotstack %s: wait for rate limiter: %w", op, err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("shotstack %s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("shotstack %s: build request: %w", op, err)
	}
	req.Header.Set(apiKeyHeader, c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = c.requestID()
	}
	req.Header.Set(requestIDHeader, requestID)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Method: method, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &TransportError{Op: op, Method: method, URL: endpoint, StatusCode: resp.StatusCode, Err: err}
	}
	c.logger.Debug("shotstack request",
		logging.String("op", op),
		logging.String("method", method),
		logging.String("url", endpoint),
		logging.Int("status_code", resp.StatusCode),
		logging.Duration("elapsed", time.Since(started)),
		logging.String(logging.FieldCorrelationID, requestID),
	)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{Op: op, Method: method, URL: endpoint, StatusCode: resp.StatusCode, Body: string(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return services.Wrap(services.ErrExternalTool, "shotstack", op, "decode response", err)
	}
	return nil
}
