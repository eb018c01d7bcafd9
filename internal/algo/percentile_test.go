package algo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentile(t *testing.T) {
	oneToTen := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{name: "median of 1..10", values: oneToTen, p: 50, want: 5.5},
		{name: "first quartile of 1..10", values: oneToTen, p: 25, want: 3.25},
		{name: "third quartile of 1..10", values: oneToTen, p: 75, want: 7.75},
		{name: "p=0 is the minimum", values: []float64{9, 3, 7}, p: 0, want: 3},
		{name: "p=100 is the maximum", values: []float64{9, 3, 7}, p: 100, want: 9},
		{name: "single value", values: []float64{42}, p: 50, want: 42},
		{name: "empty input sentinel", values: nil, p: 50, want: 0},
		{name: "unsorted input", values: []float64{10, 1, 9, 2, 8, 3, 7, 4, 6, 5}, p: 50, want: 5.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percentile(tt.values, tt.p), 1e-9)
		})
	}
}

func TestPercentileWithNaNValues(t *testing.T) {
	// NaN values sort after every number, so the rank positions stay
	// well defined and the call returns instead of spinning.
	got := Percentile([]float64{1, math.NaN(), 2}, 50)
	assert.InDelta(t, 2.0, got, 1e-9)

	got = Percentile([]float64{4, 1, math.NaN(), 3, 2}, 0)
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestPercentilesSkipsOutOfRange(t *testing.T) {
	got := Percentiles([]float64{1, 2, 3}, -1, 50, 101)

	assert.NotContains(t, got, -1.0)
	assert.NotContains(t, got, 101.0)
	assert.InDelta(t, 2.0, got[50], 1e-9)
}

func TestDetectOutliersIQR(t *testing.T) {
	t.Run("fewer than four values yields nothing", func(t *testing.T) {
		outliers, stats := DetectOutliersIQR([]float64{1, 2, 3}, 1.5)
		assert.Nil(t, outliers)
		assert.Equal(t, IQRStats{}, stats)
	})

	t.Run("flags the extreme value", func(t *testing.T) {
		values := []float64{10, 12, 11, 13, 12, 11, 400}

		outliers, stats := DetectOutliersIQR(values, 1.5)

		require.Equal(t, []int{6}, outliers)
		assert.Equal(t, 1, stats.OutlierCount)
		assert.True(t, stats.Outside(400))
		assert.False(t, stats.Outside(12))
	})

	t.Run("every flagged index is outside the bounds and no other", func(t *testing.T) {
		values := []float64{1, 2, 2, 3, 3, 3, 4, 4, 5, 60, -50}

		outliers, stats := DetectOutliersIQR(values, 1.5)

		flagged := make(map[int]bool, len(outliers))
		for _, i := range outliers {
			flagged[i] = true
		}
		for i, v := range values {
			if flagged[i] {
				assert.True(t, stats.Outside(v), "index %d value %v", i, v)
			} else {
				assert.False(t, stats.Outside(v), "index %d value %v", i, v)
			}
		}
	})

	t.Run("bounds reusable against a larger population", func(t *testing.T) {
		sample := []float64{100, 110, 120, 130, 140}

		_, stats := DetectOutliersIQR(sample, 2.0)

		assert.True(t, stats.Outside(1000))
		assert.False(t, stats.Outside(125))
	})
}
