package leaderboard

import "math"

// DefaultConfidence is the z value for a ~95% confidence interval
const DefaultConfidence = 1.96

// WilsonScore returns the lower bound of the Wilson score interval for
// correct successes out of total trials, as a percentage (0-100).
// Small samples are pulled down so a lucky short run does not outrank
// consistent high-volume practice.
func WilsonScore(correct, total int) float64 {
	return WilsonScoreZ(correct, total, DefaultConfidence)
}

// WilsonScoreZ is WilsonScore with an explicit z value
func WilsonScoreZ(correct, total int, z float64) float64 {
	if total <= 0 {
		return 0
	}
	if correct < 0 {
		correct = 0
	}
	if correct > total {
		correct = total
	}

	n := float64(total)
	p := float64(correct) / n
	z2 := z * z

	numerator := p + z2/(2*n) - z*math.Sqrt((p*(1-p)+z2/(4*n))/n)
	denominator := 1 + z2/n

	score := numerator / denominator * 100
	if score < 0 {
		// Rounding noise when correct == 0
		return 0
	}
	return score
}
