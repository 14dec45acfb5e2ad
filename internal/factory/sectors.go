package factory

// Sector identifies an industrial sector with a known emission profile.
type Sector string

// Known sectors.
const (
	SectorFactory       Sector = "factory"
	SectorManufacturing Sector = "manufacturing"
	SectorChemical      Sector = "chemical"
	SectorTextile       Sector = "textile"
	SectorFood          Sector = "food"
	SectorElectronics   Sector = "electronics"
	SectorMetal         Sector = "metal"
	SectorAutomotive    Sector = "automotive"
	SectorCement        Sector = "cement"
	SectorSteel         Sector = "steel"
	SectorGlass         Sector = "glass"
	SectorPaper         Sector = "paper"
	SectorPlastic       Sector = "plastic"
	SectorFurniture     Sector = "furniture"
	SectorMachinery     Sector = "machinery"
)

// SectorInfo describes one sector's emission profile.
type SectorInfo struct {
	Sector Sector `json:"sector"`
	Label  string `json:"label"`

	// EmissionFactor is the annual emission intensity in kg CO2e/m2/yr,
	// based on IPCC 2006 Guidelines, IEA energy statistics and DEFRA
	// conversion factors.
	EmissionFactor float64 `json:"emission_factor_kg_co2e_m2_yr"`

	// MinSizeM2 and MaxSizeM2 bound the floor-area estimate used when
	// the map data carries no building size.
	MinSizeM2 int `json:"-"`
	MaxSizeM2 int `json:"-"`
}

// sectorTable holds the emission profile per sector.
var sectorTable = map[Sector]SectorInfo{
	SectorFactory:       {SectorFactory, "General manufacturing", 85, 3000, 15000},
	SectorManufacturing: {SectorManufacturing, "Manufacturing", 92, 5000, 20000},
	SectorChemical:      {SectorChemical, "Chemical industry", 165, 8000, 30000},
	SectorTextile:       {SectorTextile, "Textile", 78, 2000, 10000},
	SectorFood:          {SectorFood, "Food processing", 64, 3000, 12000},
	SectorElectronics:   {SectorElectronics, "Electronics", 58, 2000, 8000},
	SectorMetal:         {SectorMetal, "Metal processing", 195, 5000, 25000},
	SectorAutomotive:    {SectorAutomotive, "Automotive assembly", 89, 10000, 40000},
	SectorCement:        {SectorCement, "Cement production", 420, 4000, 25000},
	SectorSteel:         {SectorSteel, "Steel production", 590, 4000, 25000},
	SectorGlass:         {SectorGlass, "Glass production", 285, 4000, 25000},
	SectorPaper:         {SectorPaper, "Paper and board", 145, 4000, 25000},
	SectorPlastic:       {SectorPlastic, "Plastics", 120, 4000, 25000},
	SectorFurniture:     {SectorFurniture, "Furniture", 48, 3000, 15000},
	SectorMachinery:     {SectorMachinery, "Machinery", 95, 3000, 15000},
}

// sectorOrder keeps catalog output stable.
var sectorOrder = []Sector{
	SectorFactory, SectorManufacturing, SectorChemical, SectorTextile,
	SectorFood, SectorElectronics, SectorMetal, SectorAutomotive,
	SectorCement, SectorSteel, SectorGlass, SectorPaper,
	SectorPlastic, SectorFurniture, SectorMachinery,
}

// Sectors returns all known sectors in stable order.
func Sectors() []SectorInfo {
	infos := make([]SectorInfo, 0, len(sectorOrder))
	for _, s := range sectorOrder {
		infos = append(infos, sectorTable[s])
	}
	return infos
}

// SectorFor returns the emission profile for a sector, falling back to the
// general factory profile for unknown values.
func SectorFor(s Sector) SectorInfo {
	if info, ok := sectorTable[s]; ok {
		return info
	}
	return sectorTable[SectorFactory]
}

// sectorFromTags derives the sector from OSM tags. Values of the industrial
// and manufacturing keys name the activity when present.
func sectorFromTags(tags map[string]string) Sector {
	sector := SectorFactory
	for _, key := range []string{"industrial", "manufacturing"} {
		if v, ok := tags[key]; ok && v != "" && v != "yes" {
			sector = Sector(v)
		}
	}
	return sector
}
