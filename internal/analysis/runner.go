// Package analysis coordinates the full comparison pipeline: it loads
// observations, normalizes and dedupes them, flags outliers, resolves
// per-store adjustments and aggregates the trailing windows.
package analysis

import (
	"context"
	"fmt"
	"time"

	"ratecompare/internal/adjust"
	"ratecompare/internal/aggregate"
	"ratecompare/internal/dedup"
	"ratecompare/internal/domain"
	"ratecompare/internal/normalize"
	"ratecompare/internal/outlier"
	"ratecompare/internal/storage"
)

// Runner executes the comparison pipeline against the storage layer.
type Runner struct {
	catalog      storage.StoreCatalog
	observations storage.RateObservationStore

	subjectStoreID string
	selectedSizes  []string
	rankings       map[string]domain.StoreRankings
	factors        domain.AdjustmentFactors
	anchor         time.Time
	exclusions     map[domain.RecordKey]struct{}
}

// Options for creating a Runner.
type Options struct {
	// Required stores
	Catalog      storage.StoreCatalog
	Observations storage.RateObservationStore

	// Analysis parameters
	SubjectStoreID string
	SelectedSizes  []string
	Rankings       map[string]domain.StoreRankings
	Factors        domain.AdjustmentFactors

	// Anchor ends the trailing windows. Zero anchors on the most
	// recent observation.
	Anchor time.Time

	// Exclusions removes confirmed outliers by identity key before
	// aggregation.
	Exclusions map[domain.RecordKey]struct{}
}

// Result is the output of one pipeline run.
type Result struct {
	Stores   []*domain.StoreInfo
	Records  []domain.RateRecord
	Outliers []domain.OutlierCandidate
	Groups   []domain.GroupedComparison
}

// New creates a new Runner.
func New(opts Options) *Runner {
	return &Runner{
		catalog:        opts.Catalog,
		observations:   opts.Observations,
		subjectStoreID: opts.SubjectStoreID,
		selectedSizes:  opts.SelectedSizes,
		rankings:       opts.Rankings,
		factors:        opts.Factors,
		anchor:         opts.Anchor,
		exclusions:     opts.Exclusions,
	}
}

// Run executes the pipeline. Outlier candidates in the result are
// advisory: only keys listed in Options.Exclusions are removed from
// the aggregated set.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	stores, err := r.catalog.ListStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}

	storesByID := make(map[string]*domain.StoreInfo, len(stores))
	for _, s := range stores {
		storesByID[s.StoreID] = s
	}

	perStore := make([][]domain.RateRecord, 0, len(stores))
	for _, s := range stores {
		obs, err := r.observations.GetByStore(ctx, s.StoreID)
		if err != nil {
			return nil, fmt.Errorf("load observations for store %s: %w", s.StoreID, err)
		}
		perStore = append(perStore, normalize.FromObservations(obs, storesByID))
	}

	records := dedup.Merge(nil, perStore...)
	outliers := outlier.Detect(records)
	kept := outlier.ApplyExclusions(records, r.exclusions)

	calc := adjust.NewCalculator(r.subjectStoreID, r.effectiveRankings(stores), r.factors)

	groups := aggregate.Run(kept, aggregate.Params{
		SelectedSizes:  r.selectedSizes,
		SubjectStoreID: r.subjectStoreID,
		AdjustmentFor:  calc.For,
		Anchor:         r.anchor,
	})

	return &Result{
		Stores:   stores,
		Records:  kept,
		Outliers: outliers,
		Groups:   groups,
	}, nil
}

// effectiveRankings fills Age and Size scores from catalog metadata for
// stores whose rankings leave those categories unset. Explicit scores
// always win.
func (r *Runner) effectiveRankings(stores []*domain.StoreInfo) map[string]domain.StoreRankings {
	year := r.anchor.Year()
	if r.anchor.IsZero() {
		year = time.Now().UTC().Year()
	}

	result := make(map[string]domain.StoreRankings, len(stores))
	for _, s := range stores {
		ranks := make(domain.StoreRankings)
		for cat, v := range r.rankings[s.StoreID] {
			ranks[cat] = v
		}
		if _, ok := ranks[domain.RankAge]; !ok && s.YearBuilt != nil {
			ranks[domain.RankAge] = adjust.AgeRanking(*s.YearBuilt, year)
		}
		if _, ok := ranks[domain.RankSize]; !ok && s.SquareFootage != nil {
			ranks[domain.RankSize] = adjust.SizeRanking(*s.SquareFootage)
		}
		result[s.StoreID] = ranks
	}
	return result
}
