// Package advisor turns numeric impact figures into narrative sustainability
// guidance using a chat-completion model, with a static fallback when the
// model is unavailable.
package advisor

import (
	"context"
	"errors"
)

// Sentinel errors for the advisor.
var (
	// ErrAdvisorUnavailable indicates the chat provider is unreachable or
	// not configured.
	ErrAdvisorUnavailable = errors.New("advisor unavailable")
)

// ChatProvider defines the interface for chat-completion providers.
type ChatProvider interface {
	// Complete sends a system and user message and returns the assistant
	// reply content.
	Complete(ctx context.Context, system, user string) (string, error)
	// Name returns the provider identifier for logging and health checks.
	Name() string
	// Model returns the configured model identifier.
	Model() string
}

// Advice is the structured sustainability guidance for an impact summary.
type Advice struct {
	Model                 string   `json:"model"`
	ExecutiveSummary      string   `json:"executive_summary"`
	KeyFindings           []string `json:"key_findings"`
	EmissionReduction     []string `json:"emission_reduction"`
	PolicySuggestions     []string `json:"policy_suggestions"`
	TechnologyInvestments []string `json:"technology_investments"`

	// Fallback is set when the chat model could not be used and the
	// advice is generic.
	Fallback bool `json:"fallback,omitempty"`
}
