// Package session holds the analysis working set as an immutable
// state value. Every mutation is a pure transition producing a new
// State; callers holding the old value keep a consistent snapshot.
// Persistence happens only at the session boundary via Snapshot and
// Restore.
package session

import (
	"time"

	"ratecompare/internal/dedup"
	"ratecompare/internal/domain"
	"ratecompare/internal/outlier"
)

// State is one immutable revision of the analysis session. The zero
// value is an empty session.
type State struct {
	SubjectStoreID string
	SelectedSizes  []string

	Records []domain.RateRecord

	Rankings map[string]domain.StoreRankings
	Factors  domain.AdjustmentFactors

	// Revision increments on every transition, UpdatedAt records when.
	Revision  int
	UpdatedAt time.Time
}

// New starts a session for a subject store.
func New(subjectStoreID string, now time.Time) State {
	return State{
		SubjectStoreID: subjectStoreID,
		UpdatedAt:      now,
	}
}

// clone copies s with fresh backing arrays so transitions never alias
// the previous revision.
func (s State) clone(now time.Time) State {
	next := s
	next.Records = append([]domain.RateRecord(nil), s.Records...)
	next.SelectedSizes = append([]string(nil), s.SelectedSizes...)
	next.Rankings = make(map[string]domain.StoreRankings, len(s.Rankings))
	for id, r := range s.Rankings {
		cp := make(domain.StoreRankings, len(r))
		for k, v := range r {
			cp[k] = v
		}
		next.Rankings[id] = cp
	}
	next.Revision = s.Revision + 1
	next.UpdatedAt = now
	return next
}

// WithMerged unions new source batches into the working set. Batches
// are processed in the given order, earlier sources winning duplicate
// keys; existing records always win.
func (s State) WithMerged(now time.Time, sources ...[]domain.RateRecord) State {
	next := s.clone(now)
	next.Records = dedup.Merge(next.Records, sources...)
	return next
}

// WithExclusions removes records by identity key, the apply step of a
// confirmed outlier review.
func (s State) WithExclusions(now time.Time, excluded map[domain.RecordKey]struct{}) State {
	next := s.clone(now)
	next.Records = outlier.ApplyExclusions(next.Records, excluded)
	return next
}

// WithUploadedRecords replaces the whole working set, the semantics of
// a CSV re-upload.
func (s State) WithUploadedRecords(now time.Time, records []domain.RateRecord) State {
	next := s.clone(now)
	next.Records = append([]domain.RateRecord(nil), records...)
	return next
}

// WithPriceMultiplier scales both prices of every record belonging to
// storeID. Absent prices stay absent.
func (s State) WithPriceMultiplier(now time.Time, storeID string, factor float64) State {
	next := s.clone(now)
	for i := range next.Records {
		if next.Records[i].StoreID != storeID {
			continue
		}
		if p := next.Records[i].WalkInPrice; p != nil {
			v := *p * factor
			next.Records[i].WalkInPrice = &v
		}
		if p := next.Records[i].OnlinePrice; p != nil {
			v := *p * factor
			next.Records[i].OnlinePrice = &v
		}
	}
	return next
}

// WithStoreName renames a store across the working set. Identity keys
// are untouched, the name is display data.
func (s State) WithStoreName(now time.Time, storeID, name string) State {
	next := s.clone(now)
	for i := range next.Records {
		if next.Records[i].StoreID == storeID {
			next.Records[i].StoreName = name
		}
	}
	return next
}

// WithSelectedSizes replaces the aggregation size whitelist.
func (s State) WithSelectedSizes(now time.Time, sizes []string) State {
	next := s.clone(now)
	next.SelectedSizes = append([]string(nil), sizes...)
	return next
}

// WithRankings replaces one store's ranking scores.
func (s State) WithRankings(now time.Time, storeID string, rankings domain.StoreRankings) State {
	next := s.clone(now)
	cp := make(domain.StoreRankings, len(rankings))
	for k, v := range rankings {
		cp[k] = v
	}
	next.Rankings[storeID] = cp
	return next
}

// WithFactors replaces the global adjustment factors.
func (s State) WithFactors(now time.Time, factors domain.AdjustmentFactors) State {
	next := s.clone(now)
	next.Factors = factors
	return next
}
