package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/carbonchain/carbonchain/internal/api/models"
	"github.com/carbonchain/carbonchain/internal/api/response"
	"github.com/carbonchain/carbonchain/internal/supplier"
)

// SupplierHandler handles supplier discovery endpoints.
type SupplierHandler struct {
	service *supplier.Service
}

// NewSupplierHandler creates a new SupplierHandler.
func NewSupplierHandler(service *supplier.Service) *SupplierHandler {
	return &SupplierHandler{service: service}
}

// SearchSuppliers handles POST /v1/suppliers:search - rank industrial
// facilities around a location.
func (h *SupplierHandler) SearchSuppliers(w http.ResponseWriter, r *http.Request) {
	var input models.SupplierSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if input.ProductType == "" || input.Location == "" {
		response.BadRequest(w, r, "product_type and location are required", []models.FieldError{
			{Field: "product_type", Message: "required", Code: "required"},
			{Field: "location", Message: "required", Code: "required"},
		})
		return
	}

	result, err := h.service.Search(r.Context(), input.ProductType, input.Location, input.MaxDistanceKm)
	if err != nil {
		switch {
		case errors.Is(err, supplier.ErrEmptyLocation):
			response.BadRequest(w, r, "location is required", []models.FieldError{
				{Field: "location", Message: "required", Code: "required"},
			})
		case errors.Is(err, supplier.ErrProviderUnavailable):
			response.ServiceUnavailable(w, r, "facility provider unavailable")
		default:
			response.InternalError(w, r, "supplier search failed")
		}
		return
	}

	resp := models.SupplierSearchResponse{
		SearchResult: *result,
		Count:        len(result.Suppliers),
	}
	response.JSON(w, r, http.StatusOK, resp)
}
