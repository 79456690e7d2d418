package scoring

import (
	"math"
	"time"
)

// Improvement is the first/last bookkeeping and delta produced when an attempt is
// reconciled against the one it replaces.
type Improvement struct {
	FirstDuration time.Duration
	LastDuration  time.Duration
	Rate          float64
}

// Reconcile computes the improvement of a new submission over the stored attempt.
// existing is nil on first submission.
//
// Time improvement is the percentage reduction against the previous completion
// time; engagement improvement only rewards increases. Each contributes half.
func Reconcile(existing *Attempt, newDuration time.Duration, newEngagement float64) Improvement {
	if existing == nil {
		return Improvement{FirstDuration: newDuration, LastDuration: newDuration}
	}

	first := existing.Duration
	if existing.FirstAttemptDuration != nil {
		first = *existing.FirstAttemptDuration
	}

	var timeImprovement float64
	if old := existing.Duration.Seconds(); old > 0 {
		timeImprovement = 100 * (old - newDuration.Seconds()) / old
	}
	engagementImprovement := math.Max(0, newEngagement-existing.EngagementScore)

	return Improvement{
		FirstDuration: first,
		LastDuration:  newDuration,
		Rate:          0.5*timeImprovement + 0.5*engagementImprovement,
	}
}
