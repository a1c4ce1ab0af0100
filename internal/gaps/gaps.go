// Package gaps reports database coverage of the analysis date range
// per store and estimates the vendor cost of filling the holes. Vendor
// billing is per store per calendar year of history, not per day.
package gaps

import (
	"sort"
	"time"

	"ratecompare/internal/domain"
)

// CostPerStoreYear is the vendor charge for one calendar year of
// historical rates for one store, in dollars.
const CostPerStoreYear = 12.50

// DateRange is an inclusive run of consecutive missing days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Days returns the length of the range in days.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// StoreCoverage summarizes one store's database coverage.
type StoreCoverage struct {
	StoreID     string
	TotalDays   int
	CoveredDays int
	Missing     []DateRange
}

// Complete reports whether the store needs no vendor fetch.
func (c StoreCoverage) Complete() bool {
	return len(c.Missing) == 0
}

// MissingDays returns the total count of missing days.
func (c StoreCoverage) MissingDays() int {
	return c.TotalDays - c.CoveredDays
}

// CoveragePct returns covered days as a percentage of the range.
func (c StoreCoverage) CoveragePct() float64 {
	if c.TotalDays == 0 {
		return 0
	}
	return float64(c.CoveredDays) / float64(c.TotalDays) * 100
}

// Report is the coverage analysis over all stores in the working set.
type Report struct {
	From time.Time
	To   time.Time

	Stores []StoreCoverage

	// YearsNeeded are the calendar years any missing day falls in,
	// ascending.
	YearsNeeded []int

	// EstimatedCost is the vendor charge to fill every gap:
	// years x stores-with-gaps x CostPerStoreYear.
	EstimatedCost float64
}

// StoresWithGaps returns the ids of stores needing a vendor fetch.
func (r Report) StoresWithGaps() []string {
	var out []string
	for _, c := range r.Stores {
		if !c.Complete() {
			out = append(out, c.StoreID)
		}
	}
	return out
}

// Analyze computes per-store coverage of [from, to] given the set of
// dates each store has data for. Both bounds are inclusive and
// truncated to UTC midnight. Stores come back in storeIDs order.
func Analyze(storeIDs []string, datesByStore map[string]map[time.Time]struct{}, from, to time.Time) Report {
	from, to = domain.Day(from), domain.Day(to)
	total := int(to.Sub(from).Hours()/24) + 1
	if total < 0 {
		total = 0
	}

	report := Report{From: from, To: to}
	years := make(map[int]struct{})

	for _, id := range storeIDs {
		have := datesByStore[id]
		cov := StoreCoverage{StoreID: id, TotalDays: total}

		var runStart, runEnd time.Time
		inRun := false
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			if _, ok := have[d]; ok {
				cov.CoveredDays++
				if inRun {
					cov.Missing = append(cov.Missing, DateRange{Start: runStart, End: runEnd})
					inRun = false
				}
				continue
			}
			years[d.Year()] = struct{}{}
			if inRun {
				runEnd = d
			} else {
				runStart, runEnd = d, d
				inRun = true
			}
		}
		if inRun {
			cov.Missing = append(cov.Missing, DateRange{Start: runStart, End: runEnd})
		}

		report.Stores = append(report.Stores, cov)
	}

	for y := range years {
		report.YearsNeeded = append(report.YearsNeeded, y)
	}
	sort.Ints(report.YearsNeeded)

	report.EstimatedCost = float64(len(report.YearsNeeded)) *
		float64(len(report.StoresWithGaps())) * CostPerStoreYear
	return report
}
