// Package openrouter provides a chat-completions client for the OpenRouter
// API.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/carbonchain/carbonchain/internal/advisor"
	"github.com/carbonchain/carbonchain/internal/upstream"
)

const (
	// ProviderName identifies this chat provider.
	ProviderName = "openrouter"

	// DefaultBaseURL is the OpenRouter API base URL.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// DefaultModel is the default chat model.
	DefaultModel = "openai/gpt-5-nano"

	// DefaultTimeout is the default request timeout. Chat completions are
	// slow compared to the other collaborators.
	DefaultTimeout = 30 * time.Second

	maxTokens   = 4000
	temperature = 0.7
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the OpenRouter client.
type ClientConfig struct {
	// APIKey is the OpenRouter API key (required).
	APIKey string

	// Model is the chat model identifier (optional, defaults to
	// openai/gpt-5-nano).
	Model string

	// BaseURL is the API base URL (optional).
	BaseURL string

	// SiteURL is sent as HTTP-Referer for OpenRouter rankings (optional).
	SiteURL string

	// SiteName is sent as X-Title for OpenRouter rankings (optional).
	SiteName string

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

// Client is an OpenRouter chat-completions client.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	siteURL    string
	siteName   string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new OpenRouter client.
func NewClient(cfg ClientConfig) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

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
		apiKey:     cfg.APIKey,
		model:      model,
		baseURL:    baseURL,
		siteURL:    cfg.SiteURL,
		siteName:   cfg.SiteName,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Complete sends a chat completion request and returns the reply content.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: no API key configured", advisor.ErrAdvisorUnavailable)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.siteURL != "" {
		req.Header.Set("HTTP-Referer", c.siteURL)
	}
	if c.siteName != "" {
		req.Header.Set("X-Title", c.siteName)
	}

	c.logger.Debug().
		Str("model", c.model).
		Msg("requesting chat completion")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s", advisor.ErrAdvisorUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status code %d", advisor.ErrAdvisorUnavailable, resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices in response", advisor.ErrAdvisorUnavailable)
	}

	return chatResp.Choices[0].Message.Content, nil
}

// OpenRouter API request and response structures.

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}
