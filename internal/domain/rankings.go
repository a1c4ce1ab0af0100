package domain

// RankingCategory is one of the fixed qualitative scoring categories.
type RankingCategory string

const (
	RankLocation       RankingCategory = "Location"
	RankAge            RankingCategory = "Age"
	RankAccessibility  RankingCategory = "Accessibility"
	RankVehiclesPerDay RankingCategory = "Vehicles-Per-Day"
	RankVisibility     RankingCategory = "Visibility & Signage"
	RankBrand          RankingCategory = "Brand"
	RankQuality        RankingCategory = "Quality"
	RankSize           RankingCategory = "Size"
)

// RankingCategories lists all categories in canonical order.
var RankingCategories = [8]RankingCategory{
	RankLocation,
	RankAge,
	RankAccessibility,
	RankVehiclesPerDay,
	RankVisibility,
	RankBrand,
	RankQuality,
	RankSize,
}

// DefaultRankingScore is used for any category without an explicit score.
const DefaultRankingScore = 5

// StoreRankings holds 1-10 scores per category for one store.
type StoreRankings map[RankingCategory]int

// Score returns the score for a category, or DefaultRankingScore when
// the category is unset or out of the 1-10 range.
func (r StoreRankings) Score(c RankingCategory) int {
	if v, ok := r[c]; ok && v >= 1 && v <= 10 {
		return v
	}
	return DefaultRankingScore
}

// AdjustmentFactors are the global percentage inputs applied uniformly
// before per-competitor ranking deltas. Values are percentages
// (2.5 means 2.5%).
type AdjustmentFactors struct {
	CaptiveMarketPct  float64
	LossToLeasePct    float64
	ClimateControlPct float64
}

// Base returns the summed factors as a fraction.
func (f AdjustmentFactors) Base() float64 {
	return (f.CaptiveMarketPct + f.LossToLeasePct + f.ClimateControlPct) / 100
}
