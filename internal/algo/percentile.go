package algo

// Percentile estimates the p-th percentile of values for p in [0, 100].
// p=0 returns the minimum and p=100 the maximum; any other p uses linear
// interpolation at the fractional rank (p/100)*(n-1). Empty input returns 0;
// callers that care must check len(values) first.
func Percentile(values []float64, p float64) float64 {
	return Percentiles(values, p)[p]
}

// Percentiles computes several percentiles of values over a single sorted
// copy. Requested percentiles outside [0, 100] are omitted from the result.
// Empty input yields 0 for every requested percentile.
func Percentiles(values []float64, ps ...float64) map[float64]float64 {
	result := make(map[float64]float64, len(ps))
	if len(values) == 0 {
		for _, p := range ps {
			result[p] = 0
		}
		return result
	}

	sorted := SortFloats(values)
	n := len(sorted)

	for _, p := range ps {
		switch {
		case p < 0 || p > 100:
			continue
		case p == 0:
			result[p] = sorted[0]
		case p == 100:
			result[p] = sorted[n-1]
		default:
			position := (p / 100.0) * float64(n-1)
			lower := int(position)
			upper := lower + 1
			if upper > n-1 {
				upper = n - 1
			}
			weight := position - float64(lower)
			result[p] = sorted[lower]*(1-weight) + sorted[upper]*weight
		}
	}

	return result
}

// IQRStats holds the quartiles and bounds of one interquartile-range
// analysis. The bounds can be reapplied to a larger population than the one
// they were computed from.
type IQRStats struct {
	Q1           float64
	Q3           float64
	IQR          float64
	LowerBound   float64
	UpperBound   float64
	OutlierCount int
}

// Outside reports whether v falls outside the stats' bounds.
func (s IQRStats) Outside(v float64) bool {
	return v < s.LowerBound || v > s.UpperBound
}

// DetectOutliersIQR flags values outside [Q1-multiplier*IQR,
// Q3+multiplier*IQR] and returns their indexes along with the bounds used.
// Fewer than 4 values cannot support a quartile estimate and yield no
// outliers and zero stats.
func DetectOutliersIQR(values []float64, multiplier float64) ([]int, IQRStats) {
	if len(values) < 4 {
		return nil, IQRStats{}
	}

	quartiles := Percentiles(values, 25, 75)
	q1, q3 := quartiles[25], quartiles[75]
	iqr := q3 - q1

	stats := IQRStats{
		Q1:         q1,
		Q3:         q3,
		IQR:        iqr,
		LowerBound: q1 - multiplier*iqr,
		UpperBound: q3 + multiplier*iqr,
	}

	var outliers []int
	for i, v := range values {
		if stats.Outside(v) {
			outliers = append(outliers, i)
		}
	}
	stats.OutlierCount = len(outliers)

	return outliers, stats
}
