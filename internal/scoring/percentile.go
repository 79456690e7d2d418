package scoring

// neutralPercentile is reported when there is no population to compare against.
const neutralPercentile = 50.0

// Percentile places score within population as the share of population scores
// strictly below it. Ties are not counted as beaten, so a user level with every
// peer sits at 0. An empty population yields 50.
func Percentile(population []float64, score float64) float64 {
	if len(population) == 0 {
		return neutralPercentile
	}
	below := 0
	for _, s := range population {
		if s < score {
			below++
		}
	}
	return 100 * float64(below) / float64(len(population))
}
