package telescope

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/litescript/ls-telescope/internal/logging"
	"github.com/litescript/ls-telescope/internal/version"
)

const (
	// DefaultBaseURL is where the calculation server listens by default.
	DefaultBaseURL = "http://127.0.0.1:8080"

	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 30 * time.Second

	// CalculatePath is the calculation endpoint.
	CalculatePath = "/api/calculate"

	// HealthPath is the liveness endpoint.
	HealthPath = "/api/health"

	// DefaultErrorMessage is used when the server gives no usable error text.
	DefaultErrorMessage = "Failed to calculate"

	// maxBodyBytes bounds how much of a response is read.
	maxBodyBytes = 1 << 20
)

// ErrBusy is returned when a calculation is requested while another is in flight.
var ErrBusy = errors.New("a calculation is already in progress")

// APIError is a non-2xx answer from the calculation endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client calls the calculation API. At most one calculation runs at a time.
type Client struct {
	client    *http.Client
	baseURL   string
	timeout   time.Duration
	userAgent string
	logger    *logging.Logger

	mu         sync.Mutex
	inFlight   bool
	generation uint64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a new calculation client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		timeout:   DefaultTimeout,
		userAgent: version.UserAgent,
		logger:    logging.Discard(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = &http.Client{
			Timeout: c.timeout,
		}
	}

	return c
}

// Outcome is the result of one Calculate call.
type Outcome struct {
	Selection  DateSelection
	Result     CalculationResult
	Generation uint64 // 0 when the call was rejected with ErrBusy
	RequestID  string
	Duration   time.Duration
	Error      error
}

// Calculate sends one calculation request for sel.
func (c *Client) Calculate(ctx context.Context, sel DateSelection) Outcome {
	out := Outcome{Selection: sel}

	gen, ok := c.acquire()
	if !ok {
		out.Error = ErrBusy
		return out
	}
	defer c.release()

	out.Generation = gen
	out.RequestID = uuid.NewString()

	start := time.Now()
	result, err := c.calculate(ctx, sel, out.RequestID)
	out.Duration = time.Since(start)
	if err != nil {
		c.logger.Warn("calculation %d (%s) failed after %v: %v", gen, out.RequestID, out.Duration, err)
		out.Error = err
		return out
	}

	c.logger.Debug("calculation %d (%s) done in %v: %.6f ly", gen, out.RequestID, out.Duration, result.LightYears)
	out.Result = result
	return out
}

func (c *Client) calculate(ctx context.Context, sel DateSelection, requestID string) (CalculationResult, error) {
	payload, err := BuildRequest(sel)
	if err != nil {
		return CalculationResult{}, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return CalculationResult{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+CalculatePath, bytes.NewReader(body))
	if err != nil {
		return CalculationResult{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.client.Do(req)
	if err != nil {
		return CalculationResult{}, fmt.Errorf("calculate request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return CalculationResult{}, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return CalculationResult{}, parseAPIError(resp.StatusCode, data)
	}

	var result CalculationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return CalculationResult{}, fmt.Errorf("decode response: %w", err)
	}

	return result, nil
}

// parseAPIError extracts the "error" field of an error body.
func parseAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error string `json:"error"`
	}
	msg := DefaultErrorMessage
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		msg = payload.Error
	}
	return &APIError{StatusCode: status, Message: msg}
}

// Health queries the liveness endpoint and returns the reported status.
func (c *Client) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+HealthPath, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("health request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode health: %w", err)
	}
	return payload.Status, nil
}

func (c *Client) acquire() (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return 0, false
	}
	c.inFlight = true
	c.generation++
	return c.generation, true
}

func (c *Client) release() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}

// InFlight reports whether a calculation is running.
func (c *Client) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Latest returns the generation of the most recently started calculation.
func (c *Client) Latest() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}
