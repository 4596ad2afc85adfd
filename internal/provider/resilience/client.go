package resilience

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Predefined errors for resilient operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies this client for circuit breaker naming.
	Name string

	// Timeout bounds each HTTP call, including reading the response headers.
	// Default: 10 seconds
	Timeout time.Duration

	// CircuitBreaker is the circuit breaker configuration.
	// If nil, uses DefaultCircuitBreakerConfig.
	CircuitBreaker *CircuitBreakerConfig

	// Registry receives success/failure reports for health tracking (optional).
	Registry *Registry
}

// DefaultClientConfig returns sensible defaults for the resilient client.
func DefaultClientConfig(name string) ClientConfig {
	cbConfig := DefaultCircuitBreakerConfig(name)
	return ClientConfig{
		Name:           name,
		Timeout:        10 * time.Second,
		CircuitBreaker: &cbConfig,
	}
}

// Client is an HTTP client guarded by a circuit breaker.
// Every request is attempted at most once; callers decide whether to try again.
type Client struct {
	httpClient     *http.Client
	circuitBreaker *gobreaker.CircuitBreaker[*http.Response]
	registry       *Registry
	config         ClientConfig
}

// NewClient creates a new resilient HTTP client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	cbConfig := DefaultCircuitBreakerConfig(cfg.Name)
	if cfg.CircuitBreaker != nil {
		cbConfig = *cfg.CircuitBreaker
	}
	cb := NewCircuitBreaker[*http.Response](cbConfig) //nolint:bodyclose // type param, not response

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		circuitBreaker: cb,
		registry:       cfg.Registry,
		config:         cfg,
	}

	if c.registry != nil {
		c.registry.Register(cfg.Name, c)
	}

	return c
}

// Name returns the client name.
func (c *Client) Name() string {
	return c.config.Name
}

// Do executes an HTTP request with circuit breaker protection.
// Returns immediately with ErrCircuitOpen if the circuit breaker is open.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.DoWithContext(req.Context(), req)
}

// DoWithContext executes an HTTP request with the given context.
// A 5xx response counts as a failure for the circuit breaker but is still
// returned to the caller so the status code can be inspected.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.circuitBreaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller is responsible for closing
		r, err := c.httpClient.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		// Treat 5xx as errors for circuit breaker
		if r.StatusCode >= 500 {
			return r, &ServerError{StatusCode: r.StatusCode}
		}

		return r, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.recordFailure(ErrCircuitOpen)
			return nil, ErrCircuitOpen
		}

		c.recordFailure(err)

		var serverErr *ServerError
		if resp != nil && errors.As(err, &serverErr) {
			return resp, nil
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		c.recordFailure(&ClientError{StatusCode: resp.StatusCode})
	} else {
		c.recordSuccess()
	}

	return resp, nil
}

func (c *Client) recordSuccess() {
	if c.registry != nil {
		c.registry.RecordSuccess(c.config.Name)
	}
}

func (c *Client) recordFailure(err error) {
	if c.registry != nil {
		c.registry.RecordFailure(c.config.Name, err)
	}
}

// ServerError represents an HTTP 5xx server error.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}

// ClientError represents an HTTP 4xx response. It is recorded for health
// reporting but does not trip the circuit breaker.
type ClientError struct {
	StatusCode int
}

func (e *ClientError) Error() string {
	return "client error: " + http.StatusText(e.StatusCode)
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (c *Client) CircuitBreakerState() gobreaker.State {
	return c.circuitBreaker.State()
}

// CircuitBreakerCounts returns the current counts of the circuit breaker.
func (c *Client) CircuitBreakerCounts() gobreaker.Counts {
	return c.circuitBreaker.Counts()
}
