package feature

import (
	"strings"

	"github.com/urbanmotion/tripflow/internal/algo"
	"github.com/urbanmotion/tripflow/internal/model"
)

// Absolute pattern thresholds, independent of the percentile-based tags.
const (
	trafficSpeedKmh    = 5.0
	localDistanceKm    = 0.5
	journeyDurationSec = 1800.0
)

// detectPatterns tags each record with zero or more semantic labels based on
// the 10th/90th percentiles of speed, distance, and duration across the
// whole enriched set, plus the absolute thresholds. Untagged records get
// "Normal". Duration-outlier-flagged records remain in the set and
// contribute to the percentile thresholds.
func (p *Pipeline) detectPatterns(trips []*model.Trip) {
	speeds := make([]float64, len(trips))
	distances := make([]float64, len(trips))
	durations := make([]float64, len(trips))
	for i, trip := range trips {
		speeds[i] = trip.Float(model.FieldTripSpeedKmh)
		distances[i] = trip.Float(model.FieldTripDistanceKm)
		durations[i] = trip.Float(model.FieldTripDuration)
	}

	speedP := algo.Percentiles(speeds, 10, 90)
	distanceP := algo.Percentiles(distances, 10, 90)
	durationP := algo.Percentiles(durations, 10, 90)

	for i, trip := range trips {
		var patterns []string

		if speeds[i] < speedP[10] {
			patterns = append(patterns, "Slow")
		} else if speeds[i] > speedP[90] {
			patterns = append(patterns, "Fast")
		}

		if distances[i] < distanceP[10] {
			patterns = append(patterns, "Short")
		} else if distances[i] > distanceP[90] {
			patterns = append(patterns, "Long")
		}

		if durations[i] < durationP[10] {
			patterns = append(patterns, "Quick")
		} else if durations[i] > durationP[90] {
			patterns = append(patterns, "Extended")
		}

		if speeds[i] < trafficSpeedKmh {
			patterns = append(patterns, "Traffic")
		}
		if distances[i] < localDistanceKm {
			patterns = append(patterns, "Local")
		}
		if durations[i] > journeyDurationSec {
			patterns = append(patterns, "Journey")
		}

		if len(patterns) == 0 {
			trip.Set(model.FieldTripPatterns, "Normal")
		} else {
			trip.Set(model.FieldTripPatterns, strings.Join(patterns, ";"))
		}
		p.stats.FeaturesCreated++
	}
}
