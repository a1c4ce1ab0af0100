// Package adjust computes per-store pricing adjustment fractions from
// competitive rankings and market-wide factors. The adjustment scales
// a competitor's asking price to approximate what the subject store
// could charge for the same unit.
package adjust

import "ratecompare/internal/domain"

// PointWeight converts one ranking point of difference into an
// adjustment fraction. Each point is worth about one percent.
const PointWeight = 0.01

// Calculator resolves adjustment fractions against a fixed subject
// store and ranking set. The zero value adjusts nothing.
type Calculator struct {
	subjectID string
	rankings  map[string]domain.StoreRankings
	factors   domain.AdjustmentFactors
}

// NewCalculator builds a calculator for the given subject store.
// rankings maps store id to that store's category scores; stores
// absent from the map fall back to the base adjustment.
func NewCalculator(subjectID string, rankings map[string]domain.StoreRankings, factors domain.AdjustmentFactors) *Calculator {
	return &Calculator{
		subjectID: subjectID,
		rankings:  rankings,
		factors:   factors,
	}
}

// For returns the signed adjustment fraction for a store. The subject
// store is never self-adjusted. When either side's rankings are
// missing, the market-wide base applies unmodified; otherwise the base
// is shifted by the mean ranking-point gap across all categories.
func (c *Calculator) For(storeID string) float64 {
	if storeID == c.subjectID {
		return 0
	}

	base := c.factors.Base()

	subject, ok := c.rankings[c.subjectID]
	if !ok {
		return base
	}
	competitor, ok := c.rankings[storeID]
	if !ok {
		return base
	}

	var gap float64
	for _, cat := range domain.RankingCategories {
		gap += float64(subject.Score(cat) - competitor.Score(cat))
	}
	gap /= float64(len(domain.RankingCategories))

	return base + gap*PointWeight
}
