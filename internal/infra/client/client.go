// Package client is the typed REST client of the pizzeria backend.
// Every call goes through the circuit breaker, a bulkhead and (for
// idempotent reads only) retry with backoff, and is traced.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/observability"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/resilience"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("client")

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// IsClientError reports whether err is a 4xx APIError. Client errors do not
// count as failures for the circuit breaker.
func IsClientError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500
}

// BreakerSuccess is the IsSuccessful hook for the backend circuit breaker.
func BreakerSuccess(err error) bool {
	return err == nil || IsClientError(err) || errors.Is(err, context.Canceled)
}

// Client calls the pizzeria backend REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewClient creates a backend client. baseURL must not end with a slash.
func NewClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, metrics *observability.Metrics, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         cb,
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		metrics:    metrics,
		logger:     logger,
	}
}

// request describes one backend call.
type request struct {
	op     string // metric/span label, e.g. "orders.list"
	method string
	path   string
	token  string
	body   any
	out    any
}

// do executes r. Only GET requests are retried; user actions are sent once.
// Non-2xx answers come back as *APIError, everything else as transport errors.
func (c *Client) do(ctx context.Context, r request) error {
	ctx, span := tracer.Start(ctx, "Client."+r.op)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", r.method),
		attribute.String("http.path", r.path),
	)

	cfg := c.cfg
	if r.method != http.MethodGet {
		cfg = cfg.NoRetry()
	}

	start := time.Now()
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, cfg, func() error {
			err := c.send(ctx, r)
			if err != nil && IsClientError(err) {
				return resilience.Permanent(err)
			}
			return err
		})
	})
	if c.metrics != nil {
		c.metrics.RecordBackendDuration(r.op, time.Since(start))
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if c.metrics != nil && !IsClientError(err) {
			c.metrics.IncrBackendError(r.op)
		}
		return err
	}
	return nil
}

func (c *Client) send(ctx context.Context, r request) error {
	if err := c.bulkhead.Acquire(ctx); err != nil {
		return err
	}
	defer c.bulkhead.Release()

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", r.op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", r.op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend: request failed",
			zap.String("op", r.op),
			zap.String("method", r.method),
			zap.String("path", r.path),
			zap.Error(err),
		)
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", r.op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
		level := c.logger.Warn
		if resp.StatusCode < 500 {
			level = c.logger.Debug
		}
		level("backend: non-2xx response",
			zap.String("op", r.op),
			zap.String("path", r.path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	c.logger.Debug("backend: request OK",
		zap.String("op", r.op),
		zap.String("path", r.path),
		zap.Int("status", resp.StatusCode),
	)

	if r.out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, r.out); err != nil {
		return resilience.Permanent(fmt.Errorf("decode %s response: %w", r.op, err))
	}
	return nil
}

// errorMessage pulls a human readable message out of an error body.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// translate maps a raw call error onto the domain taxonomy.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized:
			return &domain.ErrSessionExpired{Operation: op}
		case http.StatusForbidden:
			return &domain.ErrForbidden{Action: op}
		case http.StatusNotFound:
			return &domain.ErrNotFound{Resource: op, ID: apiErr.Message}
		case http.StatusConflict:
			return &domain.ErrConflict{Message: apiErr.Message}
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return &domain.ErrValidation{Field: "body", Message: apiErr.Message}
		}
		return &domain.ErrNetwork{Operation: op, Status: apiErr.Status, Err: apiErr}
	}
	return &domain.ErrNetwork{Operation: op, Err: err}
}

// Health reports the backend dependency from the circuit breaker's view:
// closed is healthy, half-open degraded, open unhealthy.
func (c *Client) Health() domain.ServiceHealth {
	status := "healthy"
	switch c.cb.State() {
	case gobreaker.StateHalfOpen:
		status = "degraded"
	case gobreaker.StateOpen:
		status = "unhealthy"
	}
	return domain.ServiceHealth{
		Name:        "backend-api",
		Status:      status,
		LastChecked: time.Now().Format(time.RFC3339),
	}
}
