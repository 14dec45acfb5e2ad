package models

import "github.com/carbonchain/carbonchain/internal/factory"

// SectorCatalog lists the sector emission-factor table.
type SectorCatalog struct {
	Sectors []factory.SectorInfo `json:"sectors"`
	Count   int                  `json:"count"`
}

// ProvinceCatalog lists the provinces the survey endpoints accept.
type ProvinceCatalog struct {
	Provinces []string `json:"provinces"`
	Count     int      `json:"count"`
}
