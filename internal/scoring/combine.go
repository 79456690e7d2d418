package scoring

import "sort"

// Blend weights and confidence constants.
const (
	SurveyWeight       = 0.6
	ActivityWeight     = 0.4
	baselineConfidence = 50.0
	confidencePerPoint = 2.0
)

// RankedElective is one elective with its blended score.
type RankedElective struct {
	Elective Elective `json:"elective"`
	Score    float64  `json:"score"`
}

// Recommendation is the blended outcome for one user.
type Recommendation struct {
	SurveyScores   map[Elective]float64
	ActivityScores map[Elective]float64
	FinalScores    map[Elective]float64
	Ranking        []RankedElective
	Recommended    Elective
	Confidence     float64
}

// Combine blends normalized survey scores with activity scores over set:
//
//	final[e] = 0.6·survey[e] + 0.4·activity[e]
//
// Electives missing from either input count as 0. The highest final score wins;
// on an exact tie the elective declared first in set wins. Confidence is
// 50 + 2·(top − runner-up), clamped to [0, 100], with a runner-up of 0 when set
// has a single member.
func Combine(set []Elective, survey, activity map[Elective]float64) Recommendation {
	rec := Recommendation{
		SurveyScores:   make(map[Elective]float64, len(set)),
		ActivityScores: make(map[Elective]float64, len(set)),
		FinalScores:    make(map[Elective]float64, len(set)),
		Ranking:        make([]RankedElective, 0, len(set)),
	}

	for _, e := range set {
		s, a := survey[e], activity[e]
		final := SurveyWeight*s + ActivityWeight*a
		rec.SurveyScores[e] = s
		rec.ActivityScores[e] = a
		rec.FinalScores[e] = final
		rec.Ranking = append(rec.Ranking, RankedElective{Elective: e, Score: final})
	}

	// Stable sort keeps declaration order among equal scores.
	sort.SliceStable(rec.Ranking, func(i, j int) bool {
		return rec.Ranking[i].Score > rec.Ranking[j].Score
	})

	var top, second float64
	if len(rec.Ranking) > 0 {
		rec.Recommended = rec.Ranking[0].Elective
		top = rec.Ranking[0].Score
	}
	if len(rec.Ranking) > 1 {
		second = rec.Ranking[1].Score
	}
	rec.Confidence = clamp(baselineConfidence+confidencePerPoint*(top-second), scoreFloor, scoreCeiling)
	return rec
}
