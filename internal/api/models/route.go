package models

// OptimizeRoutesRequest is the body of POST /v1/routes:optimize.
type OptimizeRoutesRequest struct {
	Origin       string   `json:"origin"`
	Destinations []string `json:"destinations"`
}
