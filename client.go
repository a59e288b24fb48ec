package dashactyl

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/devnote-dev/dashactyl-go/internal/keylock"
)

// Client talks to one Dashactyl panel. It owns the HTTP transport, the
// entity caches and the top-level managers. Manager and entity operations
// on a single *Client are safe for concurrent use; mutations on the same
// entity are serialized per identity. Exported entity fields (User.Username,
// Server.Limits, ...) are plain snapshots: read them after the call that
// refreshes them returns, not concurrently with it.
type Client struct {
	domain     string
	auth       string
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	logger     Logger
	debug      *DebugConfig
	metrics    *MetricsCollector
	locks      *keylock.Map

	validationError error

	// Users exposes account fetch/get/remove operations.
	Users *UserManager
	// Servers exposes the manager-wide server cache and create/delete.
	Servers *ServerManager
	// Coupons exposes coupon create/revoke operations.
	Coupons *CouponManager
}

// New constructs a Client for the panel at domain authenticating with the
// given bearer key. A best effort validation is performed; call IsValid /
// ValidationError for errors.
func New(domain, key string, options ...Option) *Client {
	client := &Client{
		domain: strings.TrimSuffix(domain, "/"),
		auth:   "Bearer " + key,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		timeout:   30 * time.Second,
		userAgent: "dashactyl-go/" + Version,
		logger:    nil,
		debug:     DefaultDebugConfig(),
		metrics:   nil,
		locks:     keylock.New(),
	}

	for _, option := range options {
		option(client)
	}

	client.Users = newUserManager(client)
	client.Servers = newServerManager(client)
	client.Coupons = newCouponManager(client)

	if err := client.ValidateConfiguration(); err != nil {
		client.validationError = err
	}

	return client
}

// Domain returns the panel base URL the client was constructed with.
func (c *Client) Domain() string {
	return c.domain
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

// Ping issues a no-op GET against the panel and returns the elapsed time.
// Intended for liveness checks, not correctness.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if _, err := c.request(ctx, http.MethodGet, "/api", nil); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// envelope is the panel's explicit status shape. Not every endpoint sends
// one; some only include it on failure.
type envelope struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var syntheticSuccess = json.RawMessage(`{"status":"success"}`)

// request performs one HTTP exchange and normalizes the panel's
// inconsistent success/error shapes into (payload, *Error). It never
// retries: mutating endpoints are not idempotent and the panel offers no
// dedupe key.
func (c *Client) request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	op := method + " " + endpointFromPath(path)

	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete:
	default:
		return nil, errValidation(op, "unsupported method %q", method)
	}

	var requestID string
	if c.debug != nil && c.debug.Enabled && c.debug.RequestIDGen != nil {
		requestID = c.debug.RequestIDGen()
	}
	if requestID == "" {
		requestID = defaultRequestID()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, errValidation(op, "encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.domain+path, reader)
	if err != nil {
		return nil, errValidation(op, "build request: %v", err)
	}
	req.Header.Set("Authorization", c.auth)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", requestID)

	if c.debug != nil && c.debug.Enabled && c.debug.LogRequests && c.logger != nil {
		c.logger.Debug("starting request", "requestID", requestID, "method", method, "path", path)
	}

	endpoint := endpointFromPath(path)
	c.metrics.RecordRequestStart(method, endpoint)
	start := time.Now()

	resp, err := c.httpClient.Do(req)

	duration := time.Since(start)
	c.metrics.RecordRequestEnd(method, endpoint)

	if err != nil {
		c.metrics.RecordRequest(method, endpoint, 0, duration)
		c.metrics.RecordError(KindNetwork, endpoint)
		if c.debug != nil && c.debug.Enabled && c.logger != nil {
			c.logger.Warn("request failed", "requestID", requestID, "error", err.Error())
		}
		return nil, errNetwork(op, err)
	}
	defer resp.Body.Close()

	c.metrics.RecordRequest(method, endpoint, resp.StatusCode, duration)

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordError(KindNetwork, endpoint)
		return nil, errNetwork(op, err)
	}

	if c.debug != nil && c.debug.Enabled && c.debug.LogResponses && c.logger != nil {
		c.logger.Debug("response received", "requestID", requestID, "status", resp.StatusCode, "bytes", len(payload))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := http.StatusText(resp.StatusCode)
		var env envelope
		if json.Unmarshal(payload, &env) == nil && env.Message != "" {
			message = env.Message
		}
		c.metrics.RecordError(KindRemote, endpoint)
		return nil, errRemote(op, resp.StatusCode, message)
	}

	if resp.StatusCode == http.StatusNoContent || len(payload) == 0 {
		return syntheticSuccess, nil
	}

	// The panel signals some failures inside a 2xx body.
	var env envelope
	if json.Unmarshal(payload, &env) == nil && env.Status == "failed" {
		status := env.Code
		if status == 0 {
			status = resp.StatusCode
		}
		message := env.Message
		if message == "" {
			message = "request rejected by the panel"
		}
		c.metrics.RecordError(KindRemote, endpoint)
		return nil, errRemote(op, status, message)
	}

	return payload, nil
}

func defaultRequestID() string {
	return uuid.NewString()
}

// endpointFromPath strips query parameters so metric labels stay bounded.
func endpointFromPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}
