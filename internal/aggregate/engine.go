// Package aggregate builds the grouped comparison table: per-store
// trailing-window price averages for every selected unit size and
// feature class, with competitive adjustments applied.
package aggregate

import (
	"sort"
	"time"

	"ratecompare/internal/domain"
	"ratecompare/internal/normalize"
)

// Params configures one aggregation pass.
type Params struct {
	// SelectedSizes whitelists unit sizes. Matching is against the
	// normalized form, so "10 X 10" selects "10x10" records. Empty
	// means no records pass.
	SelectedSizes []string

	// SubjectStoreID pins the subject store to the top of every group.
	SubjectStoreID string

	// AdjustmentFor resolves the signed adjustment fraction for a
	// store. Nil means no adjustment (all zero).
	AdjustmentFor func(storeID string) float64

	// Anchor ends the trailing windows. The zero value anchors on the
	// most recent observation date in the filtered set.
	Anchor time.Time
}

type groupKey struct {
	size    string
	feature domain.FeatureCode
}

// Run produces the comparison groups for the given record set, sorted
// by ascending unit area then feature code.
func Run(records []domain.RateRecord, p Params) []domain.GroupedComparison {
	selected := make(map[string]struct{}, len(p.SelectedSizes))
	for _, s := range p.SelectedSizes {
		selected[normalize.NormalizeSize(s)] = struct{}{}
	}

	var filtered []domain.RateRecord
	for _, rec := range records {
		if _, ok := selected[normalize.NormalizeSize(rec.Size)]; ok {
			filtered = append(filtered, rec)
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	anchor := p.Anchor
	if anchor.IsZero() {
		for _, rec := range filtered {
			if rec.Date.After(anchor) {
				anchor = rec.Date
			}
		}
	}
	starts := windowStarts(anchor)

	adjFor := p.AdjustmentFor
	if adjFor == nil {
		adjFor = func(string) float64 { return 0 }
	}

	groups := make(map[groupKey][]domain.RateRecord)
	for _, rec := range filtered {
		key := groupKey{size: rec.Size, feature: rec.FeatureCodeOf()}
		groups[key] = append(groups[key], rec)
	}

	out := make([]domain.GroupedComparison, 0, len(groups))
	for key, recs := range groups {
		out = append(out, buildGroup(key, recs, starts, anchor, p.SubjectStoreID, adjFor, len(filtered)))
	}

	sort.SliceStable(out, func(a, b int) bool {
		aa, ab := normalize.SizeArea(out[a].Size), normalize.SizeArea(out[b].Size)
		if aa != ab {
			return aa < ab
		}
		return out[a].Feature < out[b].Feature
	})
	return out
}

func buildGroup(key groupKey, recs []domain.RateRecord, starts [domain.WindowCount]time.Time, anchor time.Time, subjectID string, adjFor func(string) float64, grandTotal int) domain.GroupedComparison {
	byStore := make(map[string][]domain.RateRecord)
	var storeIDs []string
	for _, rec := range recs {
		if _, seen := byStore[rec.StoreID]; !seen {
			storeIDs = append(storeIDs, rec.StoreID)
		}
		byStore[rec.StoreID] = append(byStore[rec.StoreID], rec)
	}

	stores := make([]domain.StoreComparison, 0, len(storeIDs))
	for _, id := range storeIDs {
		stores = append(stores, buildStore(id, byStore[id], starts, anchor, subjectID, adjFor))
	}

	sort.SliceStable(stores, func(a, b int) bool {
		if (stores[a].StoreID == subjectID) != (stores[b].StoreID == subjectID) {
			return stores[a].StoreID == subjectID
		}
		if stores[a].Distance != stores[b].Distance {
			return stores[a].Distance < stores[b].Distance
		}
		return stores[a].StoreID < stores[b].StoreID
	})

	group := domain.GroupedComparison{
		Size:        key.size,
		Feature:     key.feature,
		Stores:      stores,
		Records:     len(recs),
		MarketShare: float64(len(recs)) / float64(grandTotal) * 100,
	}

	for w := 0; w < domain.WindowCount; w++ {
		inWindow := filterWindow(recs, starts[w], anchor)
		group.Group[w].InStore = mean(walkInPrices(inWindow))
		group.Group[w].Asking = askingMean(inWindow)

		var adjusted []float64
		for _, st := range stores {
			if v := st.Windows[w].AdjustedAsking; v != nil {
				adjusted = append(adjusted, *v)
			}
		}
		group.Group[w].AdjustedAsking = mean(adjusted)
	}

	for m, inMonth := range byMonth(recs) {
		group.GroupMonths[m].InStore = mean(walkInPrices(inMonth))
		group.GroupMonths[m].Asking = askingMean(inMonth)
	}

	return group
}

func buildStore(id string, recs []domain.RateRecord, starts [domain.WindowCount]time.Time, anchor time.Time, subjectID string, adjFor func(string) float64) domain.StoreComparison {
	st := domain.StoreComparison{
		StoreID:   id,
		StoreName: recs[0].StoreName,
		Distance:  recs[0].Distance,
		Records:   len(recs),
	}
	if id != subjectID {
		st.Adjustment = adjFor(id)
	}

	for w := 0; w < domain.WindowCount; w++ {
		inWindow := filterWindow(recs, starts[w], anchor)
		st.Windows[w].InStore = mean(walkInPrices(inWindow))
		st.Windows[w].Asking = askingMean(inWindow)
		if asking := st.Windows[w].Asking; asking != nil {
			v := *asking * (1 + st.Adjustment)
			st.Windows[w].AdjustedAsking = &v
		}
	}

	for m, inMonth := range byMonth(recs) {
		st.Months[m].InStore = mean(walkInPrices(inMonth))
		st.Months[m].Asking = askingMean(inMonth)
		if asking := st.Months[m].Asking; asking != nil {
			v := *asking * (1 + st.Adjustment)
			st.Months[m].AdjustedAsking = &v
		}
	}
	return st
}

// byMonth buckets records by calendar month, pooling years together.
func byMonth(recs []domain.RateRecord) [12][]domain.RateRecord {
	var out [12][]domain.RateRecord
	for _, rec := range recs {
		m := int(rec.Date.Month()) - 1
		out[m] = append(out[m], rec)
	}
	return out
}

// windowStarts computes each trailing window's inclusive start date:
// the first of the anchor's month, rolled back n-1 months.
func windowStarts(anchor time.Time) [domain.WindowCount]time.Time {
	var starts [domain.WindowCount]time.Time
	for w, months := range domain.WindowMonths {
		starts[w] = time.Date(anchor.Year(), anchor.Month()-time.Month(months-1), 1, 0, 0, 0, 0, time.UTC)
	}
	return starts
}

func filterWindow(recs []domain.RateRecord, start, end time.Time) []domain.RateRecord {
	var out []domain.RateRecord
	for _, rec := range recs {
		if rec.Date.Before(start) || rec.Date.After(end) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func walkInPrices(recs []domain.RateRecord) []float64 {
	var out []float64
	for _, rec := range recs {
		if rec.WalkInPrice != nil && *rec.WalkInPrice > 0 {
			out = append(out, *rec.WalkInPrice)
		}
	}
	return out
}

func onlinePrices(recs []domain.RateRecord) []float64 {
	var out []float64
	for _, rec := range recs {
		if rec.OnlinePrice != nil && *rec.OnlinePrice > 0 {
			out = append(out, *rec.OnlinePrice)
		}
	}
	return out
}

// askingMean prefers online prices, falling back to walk-in when no
// online price exists in the window.
func askingMean(recs []domain.RateRecord) *float64 {
	if online := onlinePrices(recs); len(online) > 0 {
		return mean(online)
	}
	return mean(walkInPrices(recs))
}

func mean(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	m := sum / float64(len(vals))
	return &m
}
