package handler

import (
	"encoding/json"
	"net/http"

	"github.com/carbonchain/carbonchain/internal/advisor"
	"github.com/carbonchain/carbonchain/internal/api/models"
	"github.com/carbonchain/carbonchain/internal/api/response"
	"github.com/carbonchain/carbonchain/internal/impact"
)

// ImpactHandler handles environmental impact endpoints.
type ImpactHandler struct {
	aggregator *impact.Aggregator
	advisor    *advisor.Service
}

// NewImpactHandler creates a new ImpactHandler.
func NewImpactHandler(aggregator *impact.Aggregator, advisorService *advisor.Service) *ImpactHandler {
	return &ImpactHandler{
		aggregator: aggregator,
		advisor:    advisorService,
	}
}

// AnalyzeImpact handles POST /v1/impact:analyze - aggregate route and
// supplier result sets into a combined summary.
func (h *ImpactHandler) AnalyzeImpact(w http.ResponseWriter, r *http.Request) {
	var input models.ImpactAnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	summary := h.aggregator.Aggregate(input.Routes, input.Suppliers)

	resp := models.ImpactAnalyzeResponse{
		Summary:       summary,
		RouteCount:    len(input.Routes),
		SupplierCount: len(input.Suppliers),
	}
	response.JSON(w, r, http.StatusOK, resp)
}

// AdviseImpact handles POST /v1/impact:advise - the analyze summary plus
// narrative recommendations. The numeric portion never depends on the
// advisor collaborator.
func (h *ImpactHandler) AdviseImpact(w http.ResponseWriter, r *http.Request) {
	var input models.ImpactAnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	summary := h.aggregator.Aggregate(input.Routes, input.Suppliers)

	resp := models.ImpactAdviseResponse{
		Summary:       summary,
		RouteCount:    len(input.Routes),
		SupplierCount: len(input.Suppliers),
	}

	advice := h.advisor.Advise(r.Context(), summary, len(input.Routes), len(input.Suppliers))
	resp.Advice = advice
	if advice.Fallback {
		resp.Warnings = append(resp.Warnings, "advisor unavailable, returning precomputed guidance")
	}

	response.JSON(w, r, http.StatusOK, resp)
}
