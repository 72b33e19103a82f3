// Package openrouter fetches API key metadata from the OpenRouter /key endpoint.
package openrouter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/arafatkatze/cline/internal/domain/model"
	"github.com/arafatkatze/cline/internal/observability/metrics"
	"github.com/arafatkatze/cline/internal/observability/statsd"
)

const (
	// DefaultBaseURL is used when neither the caller nor the config names one.
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	// DefaultTimeout bounds a single fetch.
	DefaultTimeout = 5 * time.Second

	maxResponseBodyBytes = 1 << 20
)

// Outcome classifies how a fetch ended. Only OutcomeOK carries key info.
type Outcome = model.KeyInfoStatus

const (
	OutcomeOK             = model.KeyInfoStatusOK
	OutcomeNoCredential   = model.KeyInfoStatusNoCredential
	OutcomeInvalidSchema  = model.KeyInfoStatusInvalidSchema
	OutcomeUnauthorized   = model.KeyInfoStatusUnauthorized
	OutcomeHTTPError      = model.KeyInfoStatusHTTPError
	OutcomeTransportError = model.KeyInfoStatusTransportError
)

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    statsd.Sink
}

// Client performs key-info lookups. It never retries.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewClient creates a Client, filling unset Config fields with defaults.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    hc,
		logger:  logger,
		metrics: cfg.Metrics,
	}
}

// BaseURL returns the endpoint root used when a call passes no base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// ResolveBaseURL normalizes baseURL, falling back to the client default.
func (c *Client) ResolveBaseURL(baseURL string) string {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return c.baseURL
	}
	return baseURL
}

// FetchKeyInfo looks up the key's metadata with a single GET {baseURL}/key.
//
// It never fails: every error path is logged and reported as a nil result
// with the matching Outcome. An empty apiKey makes no network call.
func (c *Client) FetchKeyInfo(ctx context.Context, apiKey, baseURL string) (*model.OpenRouterKeyInfo, Outcome) {
	if apiKey == "" {
		return nil, OutcomeNoCredential
	}

	start := time.Now()
	info, status, outcome, err := c.fetch(ctx, apiKey, c.ResolveBaseURL(baseURL))
	metrics.EmitKeyInfoFetch(c.metrics, metrics.KeyInfoFetchMetric{
		Outcome:  string(outcome),
		Status:   status,
		Duration: time.Since(start),
		Err:      err,
	})

	switch outcome {
	case OutcomeOK:
		return info, outcome
	case OutcomeInvalidSchema:
		var verr *ValidationError
		if errors.As(err, &verr) {
			c.logger.ErrorContext(ctx, "openrouter key info validation failed",
				"issues", verr.Issues)
		} else {
			c.logger.ErrorContext(ctx, "openrouter key info validation failed", "error", err)
		}
	case OutcomeUnauthorized:
		c.logger.WarnContext(ctx, "openrouter api key is invalid or unauthorized",
			"status", status)
	default:
		c.logger.ErrorContext(ctx, "error fetching openrouter key info",
			"status", status,
			"error", err)
	}
	return nil, outcome
}

func (c *Client) fetch(
	ctx context.Context,
	apiKey, baseURL string,
) (*model.OpenRouterKeyInfo, int, Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/key", nil)
	if err != nil {
		return nil, 0, OutcomeTransportError, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, OutcomeTransportError, fmt.Errorf("send request: %w", err)
	}

	body, readErr := readResponseBody(resp.Body)
	if closeErr := resp.Body.Close(); closeErr != nil {
		readErr = errors.Join(readErr, fmt.Errorf("close response body: %w", closeErr))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, resp.StatusCode, OutcomeUnauthorized,
			fmt.Errorf("unexpected status: %d", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, resp.StatusCode, OutcomeHTTPError,
			fmt.Errorf("unexpected status: %d", resp.StatusCode)
	case readErr != nil:
		return nil, resp.StatusCode, OutcomeTransportError, fmt.Errorf("read response body: %w", readErr)
	}

	info, err := DecodeKeyInfo(body)
	if err != nil {
		return nil, resp.StatusCode, OutcomeInvalidSchema, err
	}
	return info, resp.StatusCode, OutcomeOK, nil
}

var errBodyTooLarge = fmt.Errorf("response body exceeds %d bytes", maxResponseBodyBytes)

func readResponseBody(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxResponseBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxResponseBodyBytes {
		return nil, errBodyTooLarge
	}
	return data, nil
}
