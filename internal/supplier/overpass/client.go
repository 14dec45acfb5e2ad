// Package overpass provides a client for the Overpass API used to discover
// industrial facilities in OpenStreetMap data.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/carbonchain/carbonchain/internal/geocode"
	"github.com/carbonchain/carbonchain/internal/supplier"
	"github.com/carbonchain/carbonchain/internal/upstream"
)

const (
	// ProviderName identifies this facility provider.
	ProviderName = "overpass"

	// DefaultBaseURL is the public Overpass API interpreter endpoint.
	DefaultBaseURL = "https://overpass-api.de/api/interpreter"

	// DefaultTimeout is the default request timeout. Overpass queries can
	// be slow on the public instance.
	DefaultTimeout = 30 * time.Second

	// queryTimeoutSec is the server-side timeout sent with the query.
	queryTimeoutSec = 25
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Overpass client.
type ClientConfig struct {
	// BaseURL is the interpreter endpoint (optional, defaults to the
	// public instance).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 30s).
	Timeout time.Duration

	// Registry is the collaborator registry for health tracking (optional).
	Registry *upstream.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Overpass API client.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new Overpass client.
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

// IndustrialFacilities queries Overpass for industrial nodes, ways and
// relations within radiusKm of center.
func (c *Client) IndustrialFacilities(ctx context.Context, center geocode.Coordinate, radiusKm float64) ([]supplier.Facility, error) {
	query := buildQuery(center, radiusKm)

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Float64("lat", center.Lat).
		Float64("lon", center.Lon).
		Float64("radius_km", radiusKm).
		Msg("querying Overpass for industrial facilities")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", supplier.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d", supplier.ErrProviderUnavailable, resp.StatusCode)
	}

	var overpassResp overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&overpassResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	facilities := make([]supplier.Facility, 0, len(overpassResp.Elements))
	for i := range overpassResp.Elements {
		facilities = append(facilities, toFacility(&overpassResp.Elements[i]))
	}

	c.logger.Debug().
		Int("element_count", len(facilities)).
		Msg("received facilities from Overpass")

	return facilities, nil
}

// buildQuery assembles an Overpass QL query for industrial land use around
// a point. Ways and relations report their center so every element carries
// usable geometry when OSM has it.
func buildQuery(center geocode.Coordinate, radiusKm float64) string {
	radiusM := int(radiusKm * 1000)

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", queryTimeoutSec)
	for _, selector := range []string{
		`"landuse"="industrial"`,
		`"man_made"="works"`,
		`"building"="industrial"`,
	} {
		for _, kind := range []string{"node", "way", "relation"} {
			fmt.Fprintf(&b, "  %s[%s](around:%d,%.6f,%.6f);\n", kind, selector, radiusM, center.Lat, center.Lon)
		}
	}
	b.WriteString(");\nout center;")

	return b.String()
}

// toFacility converts an Overpass element to the domain model.
func toFacility(el *overpassElement) supplier.Facility {
	f := supplier.Facility{
		ID:   el.ID,
		Kind: el.Type,
		Name: el.Tags["name"],
		Tags: el.Tags,
	}

	switch {
	case el.Lat != 0 || el.Lon != 0:
		f.Coord = &geocode.Coordinate{Lat: el.Lat, Lon: el.Lon}
	case el.Center != nil:
		f.Coord = &geocode.Coordinate{Lat: el.Center.Lat, Lon: el.Center.Lon}
	}

	return f
}

// Overpass API response structures.

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat,omitempty"`
	Lon    float64           `json:"lon,omitempty"`
	Center *overpassCenter   `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
