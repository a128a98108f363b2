// Package client provides the signed HTTP transport for the Amazon Product
// Advertising API 5.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Sternrassler/paapi-product-cache/pkg/logging"
	"github.com/Sternrassler/paapi-product-cache/pkg/signer"
)

// Prometheus metrics for PA-API client operations.
var (
	paapiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paapi_requests_total",
		Help: "Total PA-API requests by operation and status",
	}, []string{"operation", "status"})

	paapiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "paapi_request_duration_seconds",
		Help:    "PA-API request duration in seconds by operation",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"operation"})

	paapiErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paapi_errors_total",
		Help: "Total PA-API errors by class",
	}, []string{"class"})
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 10 << 20

// ErrorClass represents a classification of upstream errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassThrottled represents 429 TooManyRequests responses.
	ErrorClassThrottled ErrorClass = "throttled"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents a 2xx response whose body could not be decoded.
	ErrorClassDecode ErrorClass = "decode"
)

// Transport performs the actual network round trip. *http.Client satisfies it.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the client configuration.
type Config struct {
	// Signing holds credentials, region, service and host.
	Signing signer.SigningContext

	// BaseURL overrides https://{host} (tests point this at a mock server).
	// The signed host header is unaffected.
	BaseURL string

	// Transport performs requests. Defaults to an http.Client with Timeout.
	Transport Transport

	// Timeout for the default transport.
	Timeout time.Duration

	// UserAgent header sent with every request (not signed).
	UserAgent string

	// Now returns the signing time. Defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns a configuration for the given signing context.
func DefaultConfig(sc signer.SigningContext) Config {
	return Config{
		Signing:   sc,
		Timeout:   10 * time.Second,
		UserAgent: "paapi-product-cache/0.1.0",
	}
}

// Client signs and sends PA-API operations.
type Client struct {
	transport Transport
	signing   signer.SigningContext
	baseURL   string
	userAgent string
	now       func() time.Time
}

// New creates a new PA-API client.
func New(cfg Config) (*Client, error) {
	if err := cfg.Signing.Validate(); err != nil {
		return nil, err
	}

	transport := cfg.Transport
	if transport == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		transport = &http.Client{Timeout: timeout}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://" + cfg.Signing.Host
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		transport: transport,
		signing:   cfg.Signing,
		baseURL:   baseURL,
		userAgent: cfg.UserAgent,
		now:       now,
	}, nil
}

// Call signs and POSTs payload as the given operation and decodes the JSON
// response into out. out may be nil to discard the body.
// Failures other than local encoding errors are returned as *UpstreamError.
func (c *Client) Call(ctx context.Context, operation string, payload any, out any) error {
	if operation == "" {
		return ErrEmptyOperation
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", operation, err)
	}

	req, err := c.newRequest(ctx, operation, body)
	if err != nil {
		return err
	}

	requestID := uuid.NewString()
	logger := logging.FromContext(ctx, "paapi-client").With().
		Str("operation", operation).
		Str("request_id", requestID).
		Logger()

	startTime := time.Now()
	defer func() {
		paapiRequestDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
	}()

	logger.Debug().Str("path", req.URL.Path).Msg("Executing PA-API request")

	resp, err := c.transport.Do(req)
	if err != nil {
		paapiErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		paapiRequestsTotal.WithLabelValues(operation, "network_error").Inc()
		logger.Error().Err(err).Msg("PA-API request failed")
		return &UpstreamError{
			Operation:  operation,
			ErrorClass: ErrorClassNetwork,
			Message:    "transport failure",
			Err:        err,
		}
	}
	defer resp.Body.Close()

	paapiRequestsTotal.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Inc()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		paapiErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return &UpstreamError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		upErr := newStatusError(operation, resp, data)
		paapiErrorsTotal.WithLabelValues(string(upErr.ErrorClass)).Inc()
		logger.Warn().
			Int("status_code", resp.StatusCode).
			Str("error_class", string(upErr.ErrorClass)).
			Str("code", upErr.Code).
			Msg("PA-API request error")
		return upErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			paapiErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
			return &UpstreamError{
				Operation:  operation,
				StatusCode: resp.StatusCode,
				ErrorClass: ErrorClassDecode,
				Message:    "decode response body",
				Err:        err,
			}
		}
	}

	logger.Info().
		Int("status_code", resp.StatusCode).
		Dur("duration", time.Since(startTime)).
		Msg("PA-API request succeeded")

	return nil
}

// newRequest builds the signed HTTP request. The body sent is exactly the
// body that was hashed.
func (c *Client) newRequest(ctx context.Context, operation string, body []byte) (*http.Request, error) {
	env := signer.NewEnvelope(c.signing, operation, body, c.now())

	auth, err := signer.Sign(c.signing, env)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, env.Method, c.baseURL+env.Path, bytes.NewReader(env.Body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for name, value := range env.Headers {
		req.Header.Set(name, value)
	}
	// net/http sends req.Host, not the Host header entry.
	req.Host = env.Headers[signer.HeaderHost]
	req.Header.Set(signer.HeaderAuthorization, auth)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	return req, nil
}

// newStatusError builds an UpstreamError from a non-2xx response.
func newStatusError(operation string, resp *http.Response, body []byte) *UpstreamError {
	upErr := &UpstreamError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		ErrorClass: classifyStatus(resp.StatusCode),
		Message:    resp.Status,
	}

	var apiErr apiErrorBody
	if err := json.Unmarshal(body, &apiErr); err == nil && len(apiErr.Errors) > 0 {
		upErr.Code = apiErr.Errors[0].Code
		upErr.Message = apiErr.Errors[0].Message
	}

	return upErr
}

// classifyStatus categorizes a non-2xx status code.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassThrottled
	case status >= 500:
		return ErrorClassServer
	default:
		return ErrorClassClient
	}
}
