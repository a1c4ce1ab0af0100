// Package outlier flags rate records whose price sits far from the
// rest of its peer group. Detection proposes, it never removes:
// exclusion is a separate, explicit step driven by the caller.
package outlier

import (
	"fmt"
	"math"
	"sort"

	"ratecompare/internal/domain"
	"ratecompare/internal/normalize"
)

// Threshold is the deviation count above which a price is proposed as
// an outlier. Strictly greater than: a point sitting exactly at the
// threshold is kept.
const Threshold = 2.5

// MinGroupSize is the minimum number of usable price points a peer
// group needs before its statistics are considered stable.
const MinGroupSize = 5

type groupKey struct {
	size    string
	climate bool
}

// Detect partitions records into peer groups by normalized size and
// climate flag, then flags every record whose price deviates from the
// group mean by more than Threshold population standard deviations.
// Candidates come back sorted by descending deviation.
func Detect(records []domain.RateRecord) []domain.OutlierCandidate {
	groups := make(map[groupKey][]int)
	for i, rec := range records {
		key := groupKey{
			size:    normalize.NormalizeSize(rec.Size),
			climate: rec.ClimateControlled,
		}
		groups[key] = append(groups[key], i)
	}

	var candidates []domain.OutlierCandidate
	for key, idxs := range groups {
		var prices []float64
		var usable []int
		for _, i := range idxs {
			if p, ok := records[i].PricePoint(); ok {
				prices = append(prices, p)
				usable = append(usable, i)
			}
		}
		if len(prices) < MinGroupSize {
			continue
		}

		mean, stddev := stats(prices)
		if stddev == 0 {
			continue
		}

		for j, i := range usable {
			dev := math.Abs(prices[j]-mean) / stddev
			if dev <= Threshold {
				continue
			}
			candidates = append(candidates, domain.OutlierCandidate{
				Record:       records[i],
				Reason:       reason(prices[j], dev, mean),
				Deviation:    dev,
				GroupSize:    key.size,
				GroupClimate: key.climate,
				Decision:     domain.OutlierPending,
			})
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Deviation > candidates[b].Deviation
	})
	return candidates
}

// ApplyExclusions returns a new record set without the records whose
// identity keys appear in excluded.
func ApplyExclusions(records []domain.RateRecord, excluded map[domain.RecordKey]struct{}) []domain.RateRecord {
	if len(excluded) == 0 {
		out := make([]domain.RateRecord, len(records))
		copy(out, records)
		return out
	}

	out := make([]domain.RateRecord, 0, len(records))
	for _, rec := range records {
		if _, drop := excluded[rec.Key()]; drop {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// stats computes the population mean and standard deviation.
func stats(prices []float64) (mean, stddev float64) {
	for _, p := range prices {
		mean += p
	}
	mean /= float64(len(prices))

	var sumSq float64
	for _, p := range prices {
		d := p - mean
		sumSq += d * d
	}
	return mean, math.Sqrt(sumSq / float64(len(prices)))
}

func reason(price, dev, mean float64) string {
	direction := "above"
	if price < mean {
		direction = "below"
	}
	return fmt.Sprintf("price $%.2f is %.1f standard deviations %s the group mean of $%.2f",
		price, dev, direction, mean)
}
