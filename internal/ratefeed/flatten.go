package ratefeed

import (
	"strings"
	"unicode"

	"ratecompare/internal/domain"
	"ratecompare/internal/normalize"
)

// StorePayload is one store's slice of the historical-data response:
// store identity plus nested unit types, each with its price history.
type StorePayload struct {
	StoreID   int        `json:"storeID"`
	StoreName string     `json:"storeName"`
	Address   string     `json:"address"`
	City      string     `json:"city"`
	State     string     `json:"state"`
	Zip       string     `json:"zipcode"`
	UnitTypes []UnitType `json:"unitType"`
}

// UnitType is one rentable configuration with its rate history.
type UnitType struct {
	Type    string       `json:"type"`
	Size    string       `json:"size"`
	Feature string       `json:"feature"`
	Prices  []PricePoint `json:"price"`
}

// PricePoint is one day's observed rates for a unit type.
type PricePoint struct {
	Date    string   `json:"date"`
	Regular *float64 `json:"regular"`
	Online  *float64 `json:"online"`
	Promo   string   `json:"promo"`
}

// Flatten expands nested store payloads into one normalized record per
// (unit type, price point). distances maps vendor store id to miles
// from the subject store; absent entries flatten with zero distance.
func Flatten(payloads []StorePayload, distances map[int]float64) []domain.RateRecord {
	var rows []map[string]any
	for _, store := range payloads {
		for _, unit := range store.UnitTypes {
			flags := featureFlags(unit.Feature)
			for _, p := range unit.Prices {
				row := map[string]any{
					"store_id":            store.StoreID,
					"store_name":          store.StoreName,
					"address":             store.Address,
					"city":                store.City,
					"state":               store.State,
					"zip":                 store.Zip,
					"distance":            distances[store.StoreID],
					"unit_type":           unit.Type,
					"size":                unit.Size,
					"features":            unit.Feature,
					"climate_controlled":  flags.climate,
					"humidity_controlled": flags.humidity,
					"drive_up":            flags.driveUp,
					"elevator":            flags.elevator,
					"outdoor_access":      flags.outdoor,
					"date":                p.Date,
					"promo":               p.Promo,
				}
				if p.Regular != nil {
					row["walk_in_price"] = *p.Regular
				}
				if p.Online != nil {
					row["online_price"] = *p.Online
				}
				rows = append(rows, row)
			}
		}
	}
	return normalize.Records(rows, domain.SourceAPI)
}

type flagSet struct {
	climate  bool
	humidity bool
	driveUp  bool
	elevator bool
	outdoor  bool
}

// featureFlags derives the binary amenity flags from the vendor's
// free-text feature description. "Non-Climate" must not read as
// climate controlled, and "cc" only counts as a standalone token so
// that words like "access" never match.
func featureFlags(feature string) flagSet {
	low := strings.ToLower(feature)
	return flagSet{
		climate: (strings.Contains(low, "climate") && !strings.Contains(low, "non-climate")) ||
			hasToken(low, "cc"),
		humidity: strings.Contains(low, "humidity"),
		driveUp:  strings.Contains(low, "drive"),
		elevator: strings.Contains(low, "elevator"),
		outdoor:  strings.Contains(low, "outdoor"),
	}
}

// hasToken reports whether word appears in s as a whole token.
func hasToken(s, word string) bool {
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if tok == word {
			return true
		}
	}
	return false
}
