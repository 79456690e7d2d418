package scoring

import (
	"sort"
	"time"
)

// ElectiveSummary folds one user's attempts within one elective. It is derived
// data and never stored on its own.
type ElectiveSummary struct {
	Elective                 Elective `json:"elective"`
	ActivitiesCompleted      int      `json:"activities_completed"`
	AverageEngagement        float64  `json:"average_engagement_score"`
	AverageTimeEfficiency    float64  `json:"average_time_efficiency"`
	AveragePerformance       float64  `json:"average_performance_score"`
	AverageImprovementRate   float64  `json:"average_improvement_rate"`
	AverageCompletionMinutes float64  `json:"average_completion_time_minutes"`
	TotalInteractions        int      `json:"total_interactions"`
	ImprovementTrend         float64  `json:"improvement_trend"`
	CompletionRate           float64  `json:"completion_rate"`
}

// HasData reports whether at least one completed attempt fed the summary.
func (s ElectiveSummary) HasData() bool { return s.ActivitiesCompleted > 0 }

// Summarize aggregates the attempts of one (user, elective). Only completed
// attempts count toward the averages. An empty input yields a zero summary.
//
// CompletionRate is 100·completed/ActivitiesPerElective and is not capped; more
// completed activities than the elective offers is a data problem for the caller.
func Summarize(attempts []Attempt) ElectiveSummary {
	var s ElectiveSummary
	if len(attempts) > 0 {
		s.Elective = attempts[0].Elective
	}

	completed := CompletedOnly(attempts)
	if len(completed) == 0 {
		return s
	}

	var engagement, efficiency, performance, improvement float64
	var duration time.Duration
	for _, a := range completed {
		engagement += a.EngagementScore
		efficiency += a.TimeEfficiency
		performance += PerformanceScore(a)
		improvement += a.ImprovementRate
		duration += a.Duration
		s.TotalInteractions += a.TotalInteractions
	}

	n := float64(len(completed))
	s.ActivitiesCompleted = len(completed)
	s.AverageEngagement = engagement / n
	s.AverageTimeEfficiency = efficiency / n
	s.AveragePerformance = performance / n
	s.AverageImprovementRate = improvement / n
	s.AverageCompletionMinutes = duration.Minutes() / n
	s.CompletionRate = 100 * n / ActivitiesPerElective
	s.ImprovementTrend = improvementTrend(completed)
	return s
}

// SummarizeByElective groups attempts per elective of set and summarizes each.
// Every member of set gets an entry, zero-valued when it has no attempts.
func SummarizeByElective(set []Elective, attempts []Attempt) map[Elective]ElectiveSummary {
	grouped := make(map[Elective][]Attempt, len(set))
	for _, a := range attempts {
		grouped[a.Elective] = append(grouped[a.Elective], a)
	}
	out := make(map[Elective]ElectiveSummary, len(set))
	for _, e := range set {
		s := Summarize(grouped[e])
		s.Elective = e
		out[e] = s
	}
	return out
}

// ActivityScores projects the average performance of each summary.
func ActivityScores(summaries map[Elective]ElectiveSummary) map[Elective]float64 {
	out := make(map[Elective]float64, len(summaries))
	for e, s := range summaries {
		out[e] = s.AveragePerformance
	}
	return out
}

// CompletedOnly filters attempts down to the completed ones, preserving order.
func CompletedOnly(attempts []Attempt) []Attempt {
	out := make([]Attempt, 0, len(attempts))
	for _, a := range attempts {
		if a.Completed {
			out = append(out, a)
		}
	}
	return out
}

// byCompletion returns a copy of attempts ordered by completion time, oldest first.
func byCompletion(attempts []Attempt) []Attempt {
	ordered := make([]Attempt, len(attempts))
	copy(ordered, attempts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CompletedAt.Before(ordered[j].CompletedAt)
	})
	return ordered
}

func improvementTrend(completed []Attempt) float64 {
	if len(completed) < 2 {
		return 0
	}
	ordered := byCompletion(completed)
	return PerformanceScore(ordered[len(ordered)-1]) - PerformanceScore(ordered[0])
}
