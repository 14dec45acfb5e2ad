package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/carbonchain/carbonchain/internal/impact"
)

// ServiceConfig holds configuration for the advisor service.
type ServiceConfig struct {
	// Provider is the chat-completion provider. May be nil when no model
	// is configured, in which case every request gets fallback advice.
	Provider ChatProvider

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service generates sustainability advice from impact summaries.
type Service struct {
	provider ChatProvider
	logger   zerolog.Logger
}

// NewService creates a new advisor service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

const systemPrompt = "You are a carbon emissions expert for supply chains. " +
	"You give short, concrete, actionable analyses."

// Advise produces narrative guidance for an aggregated impact summary.
// Provider failures degrade to generic advice instead of failing the
// request, so the numeric analysis always stays usable.
func (s *Service) Advise(ctx context.Context, summary impact.Summary, routeCount, supplierCount int) *Advice {
	if s.provider == nil {
		return s.fallback(summary, "no chat provider configured")
	}

	prompt := buildPrompt(summary, routeCount, supplierCount)

	content, err := s.provider.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("provider", s.provider.Name()).
			Msg("chat provider failed, serving fallback advice")
		return s.fallback(summary, err.Error())
	}

	advice, err := parseAdvice(content)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("provider", s.provider.Name()).
			Msg("unparseable model reply, serving fallback advice")
		return s.fallback(summary, err.Error())
	}

	advice.Model = s.provider.Model()
	return advice
}

// buildPrompt renders the numeric figures into the analysis request.
func buildPrompt(summary impact.Summary, routeCount, supplierCount int) string {
	var b strings.Builder
	b.WriteString("Supply chain impact analysis:\n\n")
	fmt.Fprintf(&b, "CURRENT STATE:\n")
	fmt.Fprintf(&b, "- Routes analyzed: %d\n", routeCount)
	fmt.Fprintf(&b, "- Suppliers analyzed: %d\n", supplierCount)
	fmt.Fprintf(&b, "- Total transport emissions: %.2f kg CO2e\n", summary.TotalEmissionsKgCO2e)
	fmt.Fprintf(&b, "- Average supplier sustainability: %.1f/100\n", summary.AvgSupplierSustainability)
	fmt.Fprintf(&b, "- Local sourcing ratio: %.0f%%\n", summary.LocalSourcingRatio*100)
	fmt.Fprintf(&b, "- Environmental impact score: %.1f/100\n\n", summary.EnvironmentalImpactScore)
	b.WriteString(`TASK: Write a short sustainability analysis of this data. Include:
1. Executive summary (2 sentences)
2. Key findings (3 items)
3. Emission reduction actions (3 items)
4. Policy suggestions (3 items)
5. Technology investments (3 items)

Reply as JSON:
{
  "executive_summary": "summary",
  "key_findings": ["finding1", "finding2", "finding3"],
  "emission_reduction": ["action1", "action2", "action3"],
  "policy_suggestions": ["policy1", "policy2", "policy3"],
  "technology_investments": ["tech1", "tech2", "tech3"]
}`)
	return b.String()
}

// parseAdvice decodes the model reply, tolerating markdown code fences.
func parseAdvice(content string) (*Advice, error) {
	content = strings.TrimSpace(content)
	if after, ok := strings.CutPrefix(content, "```json"); ok {
		content = after
	} else if after, ok := strings.CutPrefix(content, "```"); ok {
		content = after
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")

	var advice Advice
	if err := json.Unmarshal([]byte(content), &advice); err != nil {
		return nil, fmt.Errorf("decoding model reply: %w", err)
	}
	if advice.ExecutiveSummary == "" {
		return nil, fmt.Errorf("model reply missing executive summary")
	}
	return &advice, nil
}

// fallback returns generic advice built from the numbers alone.
func (s *Service) fallback(summary impact.Summary, reason string) *Advice {
	s.logger.Debug().Str("reason", reason).Msg("using fallback advice")

	return &Advice{
		Model:    "fallback",
		Fallback: true,
		ExecutiveSummary: fmt.Sprintf(
			"The supply chain emits %.2f kg CO2e in transport with an environmental impact score of %.1f/100. "+
				"Local sourcing stands at %.0f%% of suppliers.",
			summary.TotalEmissionsKgCO2e, summary.EnvironmentalImpactScore, summary.LocalSourcingRatio*100),
		KeyFindings: []string{
			"Transport emissions are the dominant measured impact",
			"Supplier sustainability varies across the network",
			"Local sourcing share directly lifts the impact score",
		},
		EmissionReduction: []string{
			"Consolidate shipments to cut driven kilometers",
			"Shift long hauls to lower-emission transport modes",
			"Prefer suppliers within the local sourcing radius",
		},
		PolicySuggestions: []string{
			"Set an internal carbon price for logistics decisions",
			"Add emission criteria to supplier selection",
			"Report transport emissions per route quarterly",
		},
		TechnologyInvestments: []string{
			"Fleet electrification for short-haul routes",
			"Route planning software with emission budgets",
			"Energy monitoring at high-intensity suppliers",
		},
	}
}
