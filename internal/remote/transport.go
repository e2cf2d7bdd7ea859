package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/atm-session/internal/config"
	"github.com/phrazzld/atm-session/internal/redact"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// RequestIDHeader carries the ID that ties a request to the terminal's logs.
const RequestIDHeader = "X-Request-Id"

// Response is a raw reply from the banking API.
type Response struct {
	StatusCode int
	Status     string
	Body       []byte
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Transport sends one JSON request and returns the reply. A non-nil error
// means no response was received.
type Transport interface {
	Post(ctx context.Context, path string, body any) (*Response, error)
}

// HTTPTransport implements Transport over net/http. Cookies set by the server
// (the session token issued on authentication) are carried on later calls.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPTransport creates a transport for the configured API.
func NewHTTPTransport(cfg config.APIConfig, logger *slog.Logger) (*HTTPTransport, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &HTTPTransport{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Jar:     jar,
			Timeout: cfg.RequestTimeout,
		},
		logger: logger.With("component", "http_transport"),
	}, nil
}

// Post sends body as JSON to path and reads the reply.
func (t *HTTPTransport) Post(ctx context.Context, path string, body any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	log := t.logger.With("request_id", requestID, "path", path)

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		log.Warn("request failed",
			"duration_ms", time.Since(start).Milliseconds(),
			"error", redact.Error(err))
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		log.Warn("failed to read response body",
			"status", resp.StatusCode,
			"error", redact.Error(err))
		return nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	log.Debug("request completed",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"response_bytes", len(data))

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       data,
	}, nil
}
