package domain

// OutlierDecision is the tri-state user verdict on a flagged record.
type OutlierDecision int

const (
	OutlierPending OutlierDecision = iota
	OutlierKeep
	OutlierExclude
)

// OutlierCandidate is one record flagged by the outlier detector.
// Candidates are ephemeral: rebuilt on every detection pass and
// discarded once decisions are applied.
type OutlierCandidate struct {
	Record    RateRecord
	Reason    string
	Deviation float64 // magnitude in standard deviations

	// Group key the candidate was detected in.
	GroupSize    string
	GroupClimate bool

	Decision OutlierDecision
}
