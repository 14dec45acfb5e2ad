package models

import (
	"github.com/carbonchain/carbonchain/internal/advisor"
	"github.com/carbonchain/carbonchain/internal/impact"
)

// ImpactAnalyzeRequest is the body of POST /v1/impact:analyze and
// POST /v1/impact:advise. The caller passes both result sets explicitly.
type ImpactAnalyzeRequest struct {
	Routes    []impact.RouteResult    `json:"routes"`
	Suppliers []impact.SupplierResult `json:"suppliers"`
}

// ImpactAnalyzeResponse wraps the aggregated summary.
type ImpactAnalyzeResponse struct {
	Summary       impact.Summary `json:"summary"`
	RouteCount    int            `json:"route_count"`
	SupplierCount int            `json:"supplier_count"`
}

// ImpactAdviseResponse adds narrative advice to the numeric summary. The
// summary is always present; when the advisor collaborator is down the
// advice falls back to precomputed guidance and a warning is attached.
type ImpactAdviseResponse struct {
	Summary       impact.Summary  `json:"summary"`
	RouteCount    int             `json:"route_count"`
	SupplierCount int             `json:"supplier_count"`
	Advice        *advisor.Advice `json:"advice,omitempty"`
	Warnings      []string        `json:"warnings,omitempty"`
}
