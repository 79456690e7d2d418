package scoring

import (
	"math"
	"time"
)

// Performance score weights.
const (
	completionPoints   = 30.0
	engagementWeight   = 0.3
	efficiencyWeight   = 0.2
	improvementWeight  = 0.2
	improvementScale   = 20.0
	improvementCeiling = 100.0
	scoreFloor         = 0.0
	scoreCeiling       = 100.0
)

// PerformanceScore blends one attempt's telemetry into a 0-100 score:
//
//	30·completed + 0.3·engagement + 0.2·efficiency + 0.2·min(100, 20·improvement)
//
// clamped to [0, 100]. A 5 point improvement already saturates the improvement term.
func PerformanceScore(a Attempt) float64 {
	score := engagementWeight*a.EngagementScore +
		efficiencyWeight*a.TimeEfficiency +
		improvementWeight*math.Min(improvementCeiling, improvementScale*a.ImprovementRate)
	if a.Completed {
		score += completionPoints
	}
	return clamp(score, scoreFloor, scoreCeiling)
}

// EstimateTimeEfficiency derives a 0-100 efficiency from how long an activity took
// when the client did not measure it. Three to seven minutes is the optimal range;
// anything under a minute counts as rushed.
func EstimateTimeEfficiency(d time.Duration) float64 {
	m := d.Minutes()
	var eff float64
	switch {
	case m < 1:
		eff = 50
	case m <= 3:
		eff = 70 + (m-1)*10
	case m <= 7:
		eff = 100
	case m <= 10:
		eff = 100 - (m-7)*5
	case m <= 15:
		eff = 85 - (m-10)*3
	default:
		eff = math.Max(40, 70-(m-15)*2)
	}
	return clamp(eff, scoreFloor, scoreCeiling)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
