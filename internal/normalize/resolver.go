package normalize

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Field is a canonical record field resolved from heterogeneous raw
// rows. Every field carries a priority-ordered alias list; the first
// present, non-nil source value wins.
type Field string

const (
	FieldStoreID   Field = "store_id"
	FieldStoreName Field = "store_name"
	FieldAddress   Field = "address"
	FieldCity      Field = "city"
	FieldState     Field = "state"
	FieldZip       Field = "zip"
	FieldDistance  Field = "distance"
	FieldUnitType  Field = "unit_type"
	FieldSize      Field = "size"
	FieldFeatures  Field = "features"
	FieldClimate   Field = "climate_controlled"
	FieldHumidity  Field = "humidity_controlled"
	FieldDriveUp   Field = "drive_up"
	FieldElevator  Field = "elevator"
	FieldOutdoor   Field = "outdoor_access"
	FieldWalkIn    Field = "walk_in_price"
	FieldOnline    Field = "online_price"
	FieldDate      Field = "date"
	FieldPromo     Field = "promo"
)

// fieldAliases maps each canonical field to its source name variants.
// Alias keys are pre-squashed (lowercase, alphanumeric only), so
// "Walk_In Price", "walkinprice" and "WALK-IN PRICE" all collapse to
// one entry. Order is priority: the first alias present in the row wins.
var fieldAliases = map[Field][]string{
	FieldStoreID:   {"storeid", "id"},
	FieldStoreName: {"storename", "competitorstorename", "name"},
	FieldAddress:   {"address", "streetaddress", "street"},
	FieldCity:      {"city"},
	FieldState:     {"state"},
	FieldZip:       {"zip", "zipcode", "postalcode"},
	FieldDistance:  {"distance", "distancemiles"},
	FieldUnitType:  {"unittype", "spacetype", "type"},
	FieldSize:      {"size", "unitsize"},
	FieldFeatures:  {"features", "feature", "unitfeature", "amenities"},
	FieldClimate:   {"climatecontrolled", "cc", "climate"},
	FieldHumidity:  {"humiditycontrolled", "humidity"},
	FieldDriveUp:   {"driveup", "drive"},
	FieldElevator:  {"elevator"},
	FieldOutdoor:   {"outdooraccess", "outdoor"},
	FieldWalkIn:    {"walkinprice", "regularrate", "regularprice", "regular", "rate"},
	FieldOnline:    {"onlineprice", "onlinerate", "online"},
	FieldDate:      {"date", "datecollected", "dateprice", "pricecapturedate"},
	FieldPromo:     {"promo", "promotion"},
}

// squashKey folds a source field name to its canonical lookup form:
// lowercase with everything but letters and digits removed.
func squashKey(k string) string {
	var b strings.Builder
	b.Grow(len(k))
	for _, r := range k {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// rowIndex is a raw row re-keyed by squashed field name.
type rowIndex map[string]any

func indexRow(row map[string]any) rowIndex {
	idx := make(rowIndex, len(row))
	for k, v := range row {
		sk := squashKey(k)
		if _, exists := idx[sk]; !exists {
			idx[sk] = v
		}
	}
	return idx
}

// resolve returns the first present, non-nil value for the field.
func (idx rowIndex) resolve(f Field) (any, bool) {
	for _, alias := range fieldAliases[f] {
		if v, ok := idx[alias]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (idx rowIndex) str(f Field) string {
	v, ok := idx.resolve(f)
	if !ok {
		return ""
	}
	return stringValue(v)
}

func (idx rowIndex) price(f Field) *float64 {
	v, ok := idx.resolve(f)
	if !ok {
		return nil
	}
	return numericValue(v)
}

func (idx rowIndex) flag(f Field) bool {
	v, ok := idx.resolve(f)
	if !ok {
		return false
	}
	return boolValue(v)
}

func (idx rowIndex) date(f Field) (time.Time, bool) {
	v, ok := idx.resolve(f)
	if !ok {
		return time.Time{}, false
	}
	return dateValue(v)
}

// stringValue renders a raw value as a trimmed string. Integral floats
// (the usual JSON shape for numeric identifiers) render without a
// decimal point so numeric and string store ids compare equal.
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return stringValue(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// numericValue parses a raw value as a price. Non-numeric input
// normalizes to nil (absent), never to zero.
func numericValue(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case float32:
		f := float64(t)
		return &f
	case int:
		f := float64(t)
		return &f
	case int64:
		f := float64(t)
		return &f
	case string:
		s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "$"))
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// boolValue parses the flag shapes seen across sources: real booleans,
// 0/1 numerics, and Yes/No or true/false tokens.
func boolValue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "yes", "y", "true", "1":
			return true
		}
		return false
	default:
		return false
	}
}

// dateValue parses observation dates: time.Time passes through, strings
// accept ISO date and RFC 3339 forms.
func dateValue(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "01/02/2006"} {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}
