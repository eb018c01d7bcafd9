package algo

import "math"

// Stats holds single-pass descriptive statistics. Variance is the population
// variance (divide by n).
type Stats struct {
	Count    int
	Mean     float64
	Variance float64
	StdDev   float64
	Min      float64
	Max      float64
	Range    float64
}

// Describe computes descriptive statistics for values. Empty input returns
// the zero value.
func Describe(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	n := len(values)
	total := 0.0
	for _, v := range values {
		total += v
	}
	mean := total / float64(n)

	varianceSum := 0.0
	minVal, maxVal := values[0], values[0]
	for _, v := range values {
		varianceSum += (v - mean) * (v - mean)
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	variance := varianceSum / float64(n)

	return Stats{
		Count:    n,
		Mean:     mean,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
		Min:      minVal,
		Max:      maxVal,
		Range:    maxVal - minVal,
	}
}
