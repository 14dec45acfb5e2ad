package models

import "github.com/carbonchain/carbonchain/internal/supplier"

// SupplierSearchRequest is the body of POST /v1/suppliers:search.
type SupplierSearchRequest struct {
	ProductType   string  `json:"product_type"`
	Location      string  `json:"location"`
	MaxDistanceKm float64 `json:"max_distance_km"`
}

// SupplierSearchResponse is the ranked supplier list plus its count.
type SupplierSearchResponse struct {
	supplier.SearchResult
	Count int `json:"count"`
}
