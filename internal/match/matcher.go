// Package match scores candidate facility records from the CRM
// against a store's name and street address. Scoring combines fuzzy
// name and address similarity; the caller picks from the ranked
// candidates, the matcher never auto-selects.
package match

import (
	"regexp"
	"sort"
	"strings"

	"ratecompare/internal/domain"
)

// Weighting of the combined score. Addresses discriminate better than
// brand names, which repeat across a chain's facilities.
const (
	NameWeight    = 0.4
	AddressWeight = 0.6
)

// DefaultTopN is the number of ranked candidates shown for review.
const DefaultTopN = 5

// Candidate is one scored facility record.
type Candidate struct {
	Facility domain.FacilityRecord

	ParsedName    string
	ParsedAddress string

	NameScore    float64
	AddressScore float64
	Score        float64
}

var (
	punctRe  = regexp.MustCompile(`[.,]`)
	avenueRe = regexp.MustCompile(`\bavenue\b`)
	streetRe = regexp.MustCompile(`\bstreet\b`)
	digitRe  = regexp.MustCompile(`\d`)
)

// NormalizeAddress folds a street address for comparison: lowercase,
// punctuation stripped, long-form suffixes shortened.
func NormalizeAddress(addr string) string {
	s := strings.ToLower(strings.TrimSpace(addr))
	s = punctRe.ReplaceAllString(s, "")
	s = avenueRe.ReplaceAllString(s, "ave")
	s = streetRe.ReplaceAllString(s, "st")
	return s
}

// ParseListingName splits a CRM listing name of the form
// "Brand - Street Address" into its parts. The second return is false
// when the name does not carry a dash-separated address.
func ParseListingName(name string) (brand, street string, ok bool) {
	brand, street, found := strings.Cut(name, " - ")
	if !found {
		return "", "", false
	}
	return strings.TrimSpace(brand), strings.TrimSpace(street), true
}

// addressLike reports whether a parsed name remainder looks like a
// street address rather than a location nickname.
func addressLike(s string) bool {
	if digitRe.MatchString(s) {
		return true
	}
	low := strings.ToLower(s)
	for _, suffix := range []string{"st", "ave", "rd", "blvd", "dr", "way", "lane", "court"} {
		if strings.Contains(low, suffix) {
			return true
		}
	}
	return false
}

// Rank scores every facility against the store's name and address and
// returns the topN best candidates, highest score first. Facilities
// without a resolvable street address are skipped.
func Rank(storeName, storeAddress string, facilities []domain.FacilityRecord, topN int) []Candidate {
	if topN <= 0 {
		topN = DefaultTopN
	}

	name := strings.ToLower(strings.TrimSpace(storeName))
	addr := NormalizeAddress(storeAddress)

	var out []Candidate
	for _, f := range facilities {
		street := strings.TrimSpace(f.ShippingStreet)
		brand := f.Name
		if b, s, ok := ParseListingName(f.Name); ok {
			brand = b
			if street == "" && addressLike(s) {
				street = s
			}
		}
		if street == "" {
			continue
		}

		// Name similarity against both the full listing and the brand;
		// the better of the two counts.
		full := Ratio(name, strings.ToLower(strings.TrimSpace(f.Name)))
		short := Ratio(name, strings.ToLower(strings.TrimSpace(brand)))
		nameScore := full
		if short > nameScore {
			nameScore = short
		}

		addrScore := Ratio(addr, NormalizeAddress(street))

		out = append(out, Candidate{
			Facility:      f,
			ParsedName:    brand,
			ParsedAddress: street,
			NameScore:     nameScore,
			AddressScore:  addrScore,
			Score:         nameScore*NameWeight + addrScore*AddressWeight,
		})
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Score > out[b].Score
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}
