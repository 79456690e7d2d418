package scoring

// NormalizeSurvey rescales raw survey affinities so the strongest elective reads
// 100 and the others keep their proportion to it. When no affinity is positive
// every elective normalizes to 0. Negative raw values normalize to 0.
func NormalizeSurvey(raw map[Elective]float64) map[Elective]float64 {
	out := make(map[Elective]float64, len(raw))

	var top float64
	for _, v := range raw {
		if v > top {
			top = v
		}
	}

	for e, v := range raw {
		if top <= 0 {
			out[e] = 0
			continue
		}
		out[e] = clamp(100*v/top, scoreFloor, scoreCeiling)
	}
	return out
}
