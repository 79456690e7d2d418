package scoring

import (
	"fmt"
	"math"
	"time"
)

// OverallSummary aggregates every completed attempt of a user.
type OverallSummary struct {
	ActivitiesCompleted      int     `json:"total_activities_completed"`
	AverageCompletionMinutes float64 `json:"average_completion_time_minutes"`
	AverageEngagement        float64 `json:"average_engagement_score"`
	AverageTimeEfficiency    float64 `json:"average_time_efficiency"`
	AverageInteractions      float64 `json:"average_interactions"`
	PerformanceScore         float64 `json:"overall_performance_score"`
	CompletionRate           float64 `json:"completion_rate"`
}

// TrendSummary compares a user's first and last completed attempts.
type TrendSummary struct {
	FirstActivityAt        time.Time `json:"first_activity_date"`
	LastActivityAt         time.Time `json:"last_activity_date"`
	SpanDays               int       `json:"time_span_days"`
	ActivitiesPerDay       float64   `json:"activities_per_day"`
	PerformanceImprovement float64   `json:"performance_improvement"`
	EngagementTrend        float64   `json:"engagement_trend"`
}

// PeerAverages are population-wide means over completed attempts.
type PeerAverages struct {
	Engagement     float64
	TimeEfficiency float64
}

// PeerComparison positions a user against the population.
type PeerComparison struct {
	EngagementVsPeer      float64 `json:"engagement_vs_peer"`
	TimeEfficiencyVsPeer  float64 `json:"time_efficiency_vs_peer"`
	PeerAverageEngagement float64 `json:"peer_average_engagement"`
	PeerAverageEfficiency float64 `json:"peer_average_time_efficiency"`
	PerformancePercentile float64 `json:"performance_percentile"`
}

// Population is the materialized comparison data handed to Analyze. A nil
// *Population skips the peer comparison.
type Population struct {
	Averages PeerAverages
	Scores   []float64
}

// Analysis is the full activity report for one user.
type Analysis struct {
	Overall    OverallSummary               `json:"overall"`
	ByElective map[Elective]ElectiveSummary `json:"by_elective"`
	Trends     *TrendSummary                `json:"trends,omitempty"`
	Comparison *PeerComparison              `json:"comparison,omitempty"`
	Insights   []string                     `json:"insights"`
}

// Analyze builds the activity report of one user over set. Incomplete attempts
// are ignored. ok is false when the user has no completed attempt.
func Analyze(set []Elective, attempts []Attempt, pop *Population) (a Analysis, ok bool) {
	completed := CompletedOnly(attempts)
	if len(completed) == 0 {
		return Analysis{ByElective: map[Elective]ElectiveSummary{}, Insights: []string{}}, false
	}

	a.Overall = overall(set, completed)
	a.ByElective = SummarizeByElective(set, completed)
	a.Trends = trends(completed)

	if pop != nil {
		a.Comparison = &PeerComparison{
			EngagementVsPeer:      a.Overall.AverageEngagement - pop.Averages.Engagement,
			TimeEfficiencyVsPeer:  a.Overall.AverageTimeEfficiency - pop.Averages.TimeEfficiency,
			PeerAverageEngagement: pop.Averages.Engagement,
			PeerAverageEfficiency: pop.Averages.TimeEfficiency,
			PerformancePercentile: Percentile(pop.Scores, a.Overall.PerformanceScore),
		}
	}

	a.Insights = insights(set, a)
	return a, true
}

// OverallPerformance is the mean performance score of the completed attempts,
// or 0 when there are none. It is the per-user value of the peer population.
func OverallPerformance(attempts []Attempt) float64 {
	completed := CompletedOnly(attempts)
	if len(completed) == 0 {
		return 0
	}
	var total float64
	for _, a := range completed {
		total += PerformanceScore(a)
	}
	return total / float64(len(completed))
}

func overall(set []Elective, completed []Attempt) OverallSummary {
	n := float64(len(completed))
	var duration time.Duration
	var engagement, efficiency, interactions float64
	for _, a := range completed {
		duration += a.Duration
		engagement += a.EngagementScore
		efficiency += a.TimeEfficiency
		interactions += float64(a.TotalInteractions)
	}

	var rate float64
	if expected := ActivitiesPerElective * len(set); expected > 0 {
		rate = 100 * n / float64(expected)
	}

	return OverallSummary{
		ActivitiesCompleted:      len(completed),
		AverageCompletionMinutes: duration.Minutes() / n,
		AverageEngagement:        engagement / n,
		AverageTimeEfficiency:    efficiency / n,
		AverageInteractions:      interactions / n,
		PerformanceScore:         OverallPerformance(completed),
		CompletionRate:           rate,
	}
}

func trends(completed []Attempt) *TrendSummary {
	if len(completed) < 2 {
		return nil
	}
	ordered := byCompletion(completed)
	first, last := ordered[0], ordered[len(ordered)-1]

	days := int(last.CompletedAt.Sub(first.CompletedAt).Hours() / 24)
	if days < 1 {
		days = 1
	}

	return &TrendSummary{
		FirstActivityAt:        first.CompletedAt,
		LastActivityAt:         last.CompletedAt,
		SpanDays:               days,
		ActivitiesPerDay:       float64(len(completed)) / float64(days),
		PerformanceImprovement: PerformanceScore(last) - PerformanceScore(first),
		EngagementTrend:        last.EngagementScore - first.EngagementScore,
	}
}

func insights(set []Elective, a Analysis) []string {
	out := make([]string, 0, 4)

	switch eng := a.Overall.AverageEngagement; {
	case eng > 80:
		out = append(out, "Excellent engagement! You're highly interactive with activities.")
	case eng < 50:
		out = append(out, "Consider spending more time exploring activities to improve engagement.")
	}

	switch eff := a.Overall.AverageTimeEfficiency; {
	case eff > 80:
		out = append(out, "Great time management! You complete activities efficiently.")
	case eff < 50:
		out = append(out, "You might be rushing through activities. Take time to explore thoroughly.")
	}

	best, bestScore := Elective(""), math.Inf(-1)
	for _, e := range set {
		if s := a.ByElective[e].AveragePerformance; s > bestScore {
			best, bestScore = e, s
		}
	}
	if best != "" && bestScore > 70 {
		out = append(out, fmt.Sprintf("You show strong performance in %s activities.", best))
	}

	if a.Trends != nil && a.Trends.PerformanceImprovement > 10 {
		out = append(out, "Great improvement! Your performance is getting better over time.")
	}
	return out
}
