// Package upstream provides a resilient HTTP client for the external
// collaborators the service depends on (routing engine, supplier directory,
// advice gateway), combining circuit breaking with retried requests.
package upstream

import (
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// Errors returned by the resilient client.
var (
	// ErrCircuitOpen indicates the collaborator's circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies the collaborator for breaker naming and the registry.
	Name string

	// Timeout is the per-request timeout (default: 10s).
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts (default: 3).
	MaxRetries uint64

	// InitialInterval is the initial retry backoff (default: 100ms).
	InitialInterval time.Duration

	// MaxInterval caps the retry backoff (default: 5s).
	MaxInterval time.Duration

	// BreakerTimeout is how long the breaker stays open before probing
	// (default: 60s).
	BreakerTimeout time.Duration

	// Registry records request outcomes for health reporting (optional).
	Registry *Registry
}

// DefaultClientConfig returns sensible defaults for a collaborator client.
func DefaultClientConfig(name string) ClientConfig {
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		BreakerTimeout:  60 * time.Second,
	}
}

// Client wraps http.Client with a circuit breaker and exponential-backoff
// retries. Transient failures (network errors, 5xx) are retried; an open
// breaker fails fast with ErrCircuitOpen.
type Client struct {
	name       string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	registry   *Registry
	config     ClientConfig
}

// NewClient creates a resilient HTTP client for one collaborator.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = 60 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: readyToTrip,
	})

	c := &Client{
		name:       cfg.Name,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		registry:   cfg.Registry,
		config:     cfg,
	}

	if cfg.Registry != nil {
		cfg.Registry.register(cfg.Name, c)
	}

	return c
}

// readyToTrip opens the breaker after at least 5 requests with a failure
// rate of 50% or higher.
func readyToTrip(counts gobreaker.Counts) bool {
	failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
	return counts.Requests >= 5 && failureRatio >= 0.5
}

// Do executes the request through the breaker, retrying transient failures.
// The caller is responsible for closing the response body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0 // retries are bounded by MaxRetries

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var lastResp *http.Response

	operation := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			r, doErr := c.httpClient.Do(req.Clone(ctx))
			if doErr != nil {
				return nil, doErr
			}
			// 5xx responses count as failures so the breaker can trip.
			if r.StatusCode >= 500 {
				return r, &ServerError{StatusCode: r.StatusCode}
			}
			return r, nil
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if resp != nil {
				lastResp = resp
			}
			return err
		}

		lastResp = resp
		return nil
	}

	err := backoff.Retry(operation, policy)
	if err != nil {
		c.recordFailure(err)
		// A 5xx that exhausted retries is still a response the caller may
		// want to inspect.
		if lastResp != nil {
			return lastResp, nil
		}
		return nil, err
	}

	c.recordSuccess()
	return lastResp, nil
}

func (c *Client) recordSuccess() {
	if c.registry != nil {
		c.registry.recordSuccess(c.name)
	}
}

func (c *Client) recordFailure(err error) {
	if c.registry != nil {
		c.registry.recordFailure(c.name, err)
	}
}

// BreakerState returns the current circuit breaker state.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// BreakerCounts returns the circuit breaker statistics.
func (c *Client) BreakerCounts() gobreaker.Counts {
	return c.breaker.Counts()
}

// ServerError represents an HTTP 5xx response from a collaborator.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}
