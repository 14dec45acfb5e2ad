package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/carbonchain/carbonchain/internal/api/models"
	"github.com/carbonchain/carbonchain/internal/api/response"
	"github.com/carbonchain/carbonchain/internal/routing"
)

// RouteHandler handles route optimization endpoints.
type RouteHandler struct {
	service *routing.Service
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(service *routing.Service) *RouteHandler {
	return &RouteHandler{service: service}
}

// OptimizeRoutes handles POST /v1/routes:optimize - plan delivery routes with
// attributed emissions.
func (h *RouteHandler) OptimizeRoutes(w http.ResponseWriter, r *http.Request) {
	var input models.OptimizeRoutesRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if input.Origin == "" || len(input.Destinations) == 0 {
		response.BadRequest(w, r, "origin and destinations are required", []models.FieldError{
			{Field: "origin", Message: "required", Code: "required"},
			{Field: "destinations", Message: "at least one destination required", Code: "required"},
		})
		return
	}

	plan, err := h.service.OptimizeRoutes(r.Context(), input.Origin, input.Destinations)
	if err != nil {
		switch {
		case errors.Is(err, routing.ErrEmptyOrigin):
			response.BadRequest(w, r, "origin is required", []models.FieldError{
				{Field: "origin", Message: "required", Code: "required"},
			})
		case errors.Is(err, routing.ErrNoDestinations):
			response.BadRequest(w, r, "at least one destination is required", []models.FieldError{
				{Field: "destinations", Message: "at least one destination required", Code: "required"},
			})
		case errors.Is(err, routing.ErrProviderUnavailable):
			response.ServiceUnavailable(w, r, "routing provider unavailable")
		default:
			response.InternalError(w, r, "route optimization failed")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, plan)
}
