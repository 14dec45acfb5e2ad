// Package osrm provides a client for the OSRM route service.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/carbonchain/carbonchain/internal/geocode"
	"github.com/carbonchain/carbonchain/internal/routing"
	"github.com/carbonchain/carbonchain/internal/upstream"
)

const (
	// ProviderName identifies this routing provider.
	ProviderName = "osrm"

	// DefaultBaseURL is the public OSRM demo server.
	DefaultBaseURL = "http://router.project-osrm.org"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the OSRM client.
type ClientConfig struct {
	// BaseURL is the OSRM base URL (optional, defaults to the demo server).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry is the collaborator registry for health tracking (optional).
	Registry *upstream.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OSRM route service client.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new OSRM client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := upstream.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		if cfg.Registry != nil {
			clientCfg.Registry = cfg.Registry
		}
		httpClient = upstream.NewClient(clientCfg)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Route retrieves the driving leg between two points.
func (c *Client) Route(ctx context.Context, origin, destination geocode.Coordinate) (*routing.Leg, error) {
	// OSRM takes {lon},{lat} pairs separated by semicolons.
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		c.baseURL,
		origin.Lon, origin.Lat,
		destination.Lon, destination.Lat,
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Float64("origin_lat", origin.Lat).
		Float64("origin_lon", origin.Lon).
		Float64("dest_lat", destination.Lat).
		Float64("dest_lon", destination.Lon).
		Msg("requesting route from OSRM")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach routing provider",
			Err:      routing.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, respBody)
	}

	var osrmResp osrmResponse
	if err := json.Unmarshal(respBody, &osrmResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if osrmResp.Code != codeOk || len(osrmResp.Routes) == 0 {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     osrmResp.Code,
			Message:  "no route found between the given points",
			Err:      routing.ErrNoRouteFound,
		}
	}

	best := osrmResp.Routes[0]
	leg := &routing.Leg{
		DistanceKm:  best.Distance / 1000.0,
		DurationMin: best.Duration / 60.0,
	}

	c.logger.Debug().
		Float64("distance_km", leg.DistanceKm).
		Float64("duration_min", leg.DurationMin).
		Msg("received route from OSRM")

	return leg, nil
}

// handleErrorResponse maps OSRM error responses to domain errors.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	var osrmErr osrmResponse
	if err := json.Unmarshal(body, &osrmErr); err == nil && osrmErr.Code == codeNoRoute {
		return &routing.Error{
			Provider: ProviderName,
			Code:     "NO_ROUTE",
			Message:  osrmErr.Message,
			Err:      routing.ErrNoRouteFound,
		}
	}

	if statusCode >= 500 {
		return &routing.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("SERVER_%d", statusCode),
			Message:  "routing provider is temporarily unavailable",
			Err:      routing.ErrProviderUnavailable,
		}
	}

	return &routing.Error{
		Provider: ProviderName,
		Code:     fmt.Sprintf("HTTP_%d", statusCode),
		Message:  fmt.Sprintf("routing provider returned status %d", statusCode),
		Err:      routing.ErrProviderUnavailable,
	}
}
