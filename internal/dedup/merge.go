// Package dedup merges rate record sets from multiple sources into a
// duplicate-free working set. Record identity is the full RecordKey,
// so the same unit observed with different feature flags survives as
// two records.
package dedup

import "ratecompare/internal/domain"

// Merge unions source batches into existing, keeping the first record
// seen per identity key. Existing records always win; among new
// batches, earlier sources win ties, so callers pass higher-priority
// sources first (prior vendor fetches, then fresh vendor fetches,
// then database rows).
//
// The input slices are never mutated. The result is a fresh slice.
func Merge(existing []domain.RateRecord, sources ...[]domain.RateRecord) []domain.RateRecord {
	seen := make(map[domain.RecordKey]struct{}, len(existing))

	out := make([]domain.RateRecord, 0, len(existing))
	for _, rec := range existing {
		key := rec.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}

	for _, batch := range sources {
		for _, rec := range batch {
			key := rec.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, rec)
		}
	}

	return out
}
