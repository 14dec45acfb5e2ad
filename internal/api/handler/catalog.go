package handler

import (
	"net/http"

	"github.com/carbonchain/carbonchain/internal/api/models"
	"github.com/carbonchain/carbonchain/internal/api/response"
	"github.com/carbonchain/carbonchain/internal/factory"
)

// CatalogHandler handles static catalog endpoints.
type CatalogHandler struct{}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// ListSectors handles GET /v1/catalog/sectors - the sector emission-factor
// table.
func (h *CatalogHandler) ListSectors(w http.ResponseWriter, r *http.Request) {
	sectors := factory.Sectors()
	resp := models.SectorCatalog{
		Sectors: sectors,
		Count:   len(sectors),
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	response.JSON(w, r, http.StatusOK, resp)
}

// ListProvinces handles GET /v1/catalog/provinces - the provinces the survey
// endpoints accept.
func (h *CatalogHandler) ListProvinces(w http.ResponseWriter, r *http.Request) {
	provinces := factory.Provinces()
	resp := models.ProvinceCatalog{
		Provinces: provinces,
		Count:     len(provinces),
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	response.JSON(w, r, http.StatusOK, resp)
}
