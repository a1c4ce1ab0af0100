package domain

// Trailing window indexes into per-window average arrays.
const (
	WindowT12 = iota
	WindowT6
	WindowT3
	WindowT1
	WindowCount
)

// WindowMonths maps window index to its lookback length in calendar months.
var WindowMonths = [WindowCount]int{12, 6, 3, 1}

// WindowLabels maps window index to its display label.
var WindowLabels = [WindowCount]string{"T-12", "T-6", "T-3", "T-1"}

// MonthLabels maps calendar month index (0 = January) to its display
// label in the per-month breakdown columns.
var MonthLabels = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// WindowAverages holds the three averages for one trailing window.
// Nil means no usable price existed in the window ("N/A" on display,
// never zero).
type WindowAverages struct {
	InStore        *float64 // mean of walk-in prices
	Asking         *float64 // mean of online prices, walk-in fallback
	AdjustedAsking *float64 // asking x (1 + adjustment fraction)
}

// StoreComparison is one store's row within a comparison group.
type StoreComparison struct {
	StoreID    string
	StoreName  string
	Distance   float64
	Adjustment float64 // signed fraction, 0 for the subject store
	Windows    [WindowCount]WindowAverages

	// Months breaks the store's averages down by calendar month
	// (index 0 = January), pooling every year in the record set.
	Months [12]WindowAverages

	Records int
}

// GroupedComparison is one (size, feature code) row-group of the final
// comparison table. The subject store sorts first in Stores; remaining
// stores sort by ascending distance.
type GroupedComparison struct {
	Size    string
	Feature FeatureCode

	Stores []StoreComparison

	// Group-level averages: InStore and Asking are computed over all
	// records in the group regardless of store; AdjustedAsking is the
	// mean of the per-store adjusted values, subject included.
	Group [WindowCount]WindowAverages

	// GroupMonths holds per-calendar-month group averages.
	// AdjustedAsking stays nil here: adjustments vary by store, so an
	// aggregate adjusted figure would be meaningless.
	GroupMonths [12]WindowAverages

	Records     int
	MarketShare float64 // percent of the grand total record count
}
