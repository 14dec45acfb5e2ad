package factory

import "strings"

// provinces lists the 81 Turkish provinces surveyed for factory emissions.
var provinces = []string{
	"Adana", "Adiyaman", "Afyonkarahisar", "Agri", "Aksaray",
	"Amasya", "Ankara", "Antalya", "Ardahan", "Artvin",
	"Aydin", "Balikesir", "Bartin", "Batman", "Bayburt",
	"Bilecik", "Bingol", "Bitlis", "Bolu", "Burdur",
	"Bursa", "Canakkale", "Cankiri", "Corum", "Denizli",
	"Diyarbakir", "Duzce", "Edirne", "Elazig", "Erzincan",
	"Erzurum", "Eskisehir", "Gaziantep", "Giresun", "Gumushane",
	"Hakkari", "Hatay", "Igdir", "Isparta", "Istanbul",
	"Izmir", "Kahramanmaras", "Karabuk", "Karaman", "Kars",
	"Kastamonu", "Kayseri", "Kilis", "Kirikkale", "Kirklareli",
	"Kirsehir", "Kocaeli", "Konya", "Kutahya", "Malatya",
	"Manisa", "Mardin", "Mersin", "Mugla", "Mus",
	"Nevsehir", "Nigde", "Ordu", "Osmaniye", "Rize",
	"Sakarya", "Samsun", "Sanliurfa", "Siirt", "Sinop",
	"Sivas", "Sirnak", "Tekirdag", "Tokat", "Trabzon",
	"Tunceli", "Usak", "Van", "Yalova", "Yozgat", "Zonguldak",
}

// Provinces returns the surveyed provinces in alphabetical order.
func Provinces() []string {
	out := make([]string, len(provinces))
	copy(out, provinces)
	return out
}

// CanonicalProvince resolves a case-insensitive province name to its
// canonical form. The second return is false for unknown provinces.
func CanonicalProvince(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, p := range provinces {
		if strings.EqualFold(p, name) {
			return p, true
		}
	}
	return "", false
}

// provinceQuery builds the geocoding query for a province.
func provinceQuery(province string) string {
	return province + ", Turkey"
}
