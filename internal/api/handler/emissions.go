package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carbonchain/carbonchain/internal/api/models"
	"github.com/carbonchain/carbonchain/internal/api/response"
	"github.com/carbonchain/carbonchain/internal/factory"
)

// EmissionsHandler handles factory emission survey endpoints.
type EmissionsHandler struct {
	analyzer *factory.Analyzer
}

// NewEmissionsHandler creates a new EmissionsHandler.
func NewEmissionsHandler(analyzer *factory.Analyzer) *EmissionsHandler {
	return &EmissionsHandler{analyzer: analyzer}
}

// NationalSurvey handles GET /v1/emissions/provinces - the aggregated survey
// across all provinces surveyed so far.
func (h *EmissionsHandler) NationalSurvey(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.analyzer.National())
}

// ProvinceSurvey handles GET /v1/emissions/provinces/{province} - the factory
// emission survey for one province.
func (h *EmissionsHandler) ProvinceSurvey(w http.ResponseWriter, r *http.Request) {
	province := chi.URLParam(r, "province")

	var radiusKm float64
	if raw := r.URL.Query().Get("radius_km"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			response.BadRequest(w, r, "radius_km must be a positive number", []models.FieldError{
				{Field: "radius_km", Message: "must be a positive number", Code: "invalid"},
			})
			return
		}
		radiusKm = parsed
	}

	survey, err := h.analyzer.SurveyProvince(r.Context(), province, radiusKm)
	if err != nil {
		switch {
		case errors.Is(err, factory.ErrUnknownProvince):
			response.NotFound(w, r, "unknown province: "+province)
		case errors.Is(err, factory.ErrProviderUnavailable):
			response.ServiceUnavailable(w, r, "facility provider unavailable")
		default:
			response.InternalError(w, r, "province survey failed")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, survey)
}
