// Package feature implements the per-record derivation pass that enriches
// cleaned trip records with distance, speed, temporal, efficiency, zone, and
// pattern features.
package feature

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/urbanmotion/tripflow/internal/algo"
	"github.com/urbanmotion/tripflow/internal/model"
)

// Stats is the counter bundle for one feature-engineering run, owned by the
// pipeline instance and read-only after Run returns.
type Stats struct {
	RecordsProcessed     int
	FeaturesCreated      int
	DistanceCalculations int
	TimeFeatures         int
	EfficiencyMetrics    int
}

// Counter is one named statistic for report rendering.
type Counter struct {
	Name  string
	Value int
}

// Counters enumerates every statistic in report order.
func (s Stats) Counters() []Counter {
	return []Counter{
		{"Records Processed", s.RecordsProcessed},
		{"Features Created", s.FeaturesCreated},
		{"Distance Calculations", s.DistanceCalculations},
		{"Time Features", s.TimeFeatures},
		{"Efficiency Metrics", s.EfficiencyMetrics},
	}
}

// Pipeline derives features for a record set. Stage order matters: later
// stages read fields written by earlier ones. The pipeline never removes a
// record; its output count equals its input count.
type Pipeline struct {
	stats Stats
}

// New creates a feature-engineering pipeline.
func New() *Pipeline {
	return &Pipeline{}
}

// Stats returns the counters accumulated by the last Run.
func (p *Pipeline) Stats() Stats { return p.stats }

// Run enriches every record in the dataset in place and returns the record
// set. A field that fails to parse yields the documented default for the
// affected feature; no record is ever dropped here.
func (p *Pipeline) Run(dataset *model.Dataset) []*model.Trip {
	slog.Info("Starting feature engineering", "records", len(dataset.Trips))
	p.stats = Stats{RecordsProcessed: len(dataset.Trips)}

	p.deriveDistances(dataset.Trips)
	p.deriveSpeeds(dataset.Trips)
	p.deriveTemporalFeatures(dataset.Trips)
	p.deriveEfficiencyMetrics(dataset.Trips)
	p.classifyZones(dataset.Trips)
	p.detectPatterns(dataset.Trips)

	for _, col := range derivedColumns() {
		dataset.AddColumn(col)
	}

	slog.Info("Feature engineering finished",
		"records", p.stats.RecordsProcessed,
		"features", p.stats.FeaturesCreated)
	return dataset.Trips
}

// deriveDistances writes the great-circle distance between pickup and
// dropoff. Unparsable coordinates yield distance 0, as does a coordinate
// that parses to a non-finite value: ParseFloat accepts the literals "NaN"
// and "Inf", and a NaN distance would poison every later stage that ranks
// by this field.
func (p *Pipeline) deriveDistances(trips []*model.Trip) {
	for _, trip := range trips {
		pickupLat, err1 := strconv.ParseFloat(trip.Get(model.FieldPickupLatitude), 64)
		pickupLon, err2 := strconv.ParseFloat(trip.Get(model.FieldPickupLongitude), 64)
		dropoffLat, err3 := strconv.ParseFloat(trip.Get(model.FieldDropoffLatitude), 64)
		dropoffLon, err4 := strconv.ParseFloat(trip.Get(model.FieldDropoffLongitude), 64)

		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			trip.Set(model.FieldTripDistanceKm, "0.000")
			continue
		}

		distance := algo.HaversineKm(pickupLat, pickupLon, dropoffLat, dropoffLon)
		if math.IsNaN(distance) || math.IsInf(distance, 0) {
			trip.Set(model.FieldTripDistanceKm, "0.000")
			continue
		}
		trip.Set(model.FieldTripDistanceKm, fmt.Sprintf("%.3f", distance))
		p.stats.DistanceCalculations++
		p.stats.FeaturesCreated++
	}
	slog.Info("Calculated trip distances", "count", p.stats.DistanceCalculations)
}

// deriveSpeeds writes the average speed in km/h. A zero duration yields
// speed 0.
func (p *Pipeline) deriveSpeeds(trips []*model.Trip) {
	for _, trip := range trips {
		distance := trip.Float(model.FieldTripDistanceKm)
		duration := trip.Float(model.FieldTripDuration)

		if duration > 0 {
			speed := distance / (duration / 3600.0)
			trip.Set(model.FieldTripSpeedKmh, fmt.Sprintf("%.2f", speed))
		} else {
			trip.Set(model.FieldTripSpeedKmh, "0.00")
		}
		p.stats.FeaturesCreated++
	}
}

// deriveEfficiencyMetrics writes distance-per-minute, estimated idle time,
// efficiency score, and trip complexity.
func (p *Pipeline) deriveEfficiencyMetrics(trips []*model.Trip) {
	for _, trip := range trips {
		distance := trip.Float(model.FieldTripDistanceKm)
		duration := trip.Float(model.FieldTripDuration)
		speed := trip.Float(model.FieldTripSpeedKmh)

		if minutes := duration / 60.0; minutes > 0 {
			trip.Set(model.FieldDistancePerMinute, fmt.Sprintf("%.4f", distance/minutes))
		} else {
			trip.Set(model.FieldDistancePerMinute, "0.0000")
		}

		if speed > 0 {
			theoretical := (distance / speed) * 3600
			idle := duration - theoretical
			if idle < 0 {
				idle = 0
			}
			trip.Set(model.FieldEstimatedIdleTime, fmt.Sprintf("%.0f", idle))
		} else {
			trip.Set(model.FieldEstimatedIdleTime, fmt.Sprintf("%.0f", duration))
		}

		if speed > 0 {
			efficiency := speed / maxReasonableSpeedKmh * 100
			if efficiency > 100 {
				efficiency = 100
			}
			trip.Set(model.FieldEfficiencyScore, fmt.Sprintf("%.1f", efficiency))
		} else {
			trip.Set(model.FieldEfficiencyScore, "0.0")
		}

		if distance > 0 && duration > 0 {
			expected := (distance / referenceSpeedKmh) * 3600
			trip.Set(model.FieldTripComplexity, fmt.Sprintf("%.2f", duration/expected))
		} else {
			trip.Set(model.FieldTripComplexity, "1.00")
		}

		p.stats.EfficiencyMetrics += 4
		p.stats.FeaturesCreated += 4
	}
}

const (
	// maxReasonableSpeedKmh anchors the 0-100 efficiency score.
	maxReasonableSpeedKmh = 40.0
	// referenceSpeedKmh is the average city speed used for expected duration.
	referenceSpeedKmh = 20.0
)

// derivedColumns lists every feature column in the order the stages create
// them.
func derivedColumns() []string {
	return []string{
		model.FieldTripDistanceKm,
		model.FieldTripSpeedKmh,
		model.FieldPickupHour,
		model.FieldTimeOfDay,
		model.FieldDayOfWeek,
		model.FieldIsWeekend,
		model.FieldPickupMonth,
		model.FieldIsRushHour,
		model.FieldDistancePerMinute,
		model.FieldEstimatedIdleTime,
		model.FieldEfficiencyScore,
		model.FieldTripComplexity,
		model.FieldPickupBorough,
		model.FieldDropoffBorough,
		model.FieldTripType,
		model.FieldTripPatterns,
	}
}
