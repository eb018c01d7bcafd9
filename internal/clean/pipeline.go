// Package clean implements the multi-stage cleaning pipeline that removes
// structurally invalid trip records and annotates statistical outliers.
package clean

import (
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/urbanmotion/tripflow/internal/algo"
	"github.com/urbanmotion/tripflow/internal/config"
	"github.com/urbanmotion/tripflow/internal/model"
)

// Stats is the counter bundle for one cleaning run. It is owned by the
// pipeline instance that produced it and is read-only after Run returns.
type Stats struct {
	TotalRecords       int
	ValidRecords       int
	InvalidRecords     int
	DuplicatesRemoved  int
	MissingValuesFixed int
	OutliersDetected   int
	CoordinateErrors   int
	DatetimeErrors     int
	DurationErrors     int
}

// Counter is one named statistic for report rendering.
type Counter struct {
	Name  string
	Value int
}

// Counters enumerates every statistic in report order.
func (s Stats) Counters() []Counter {
	return []Counter{
		{"Total Records", s.TotalRecords},
		{"Valid Records", s.ValidRecords},
		{"Invalid Records", s.InvalidRecords},
		{"Duplicates Removed", s.DuplicatesRemoved},
		{"Missing Values Fixed", s.MissingValuesFixed},
		{"Outliers Detected", s.OutliersDetected},
		{"Coordinate Errors", s.CoordinateErrors},
		{"Datetime Errors", s.DatetimeErrors},
		{"Duration Errors", s.DurationErrors},
	}
}

// Pipeline runs the cleaning stages in a fixed order over one record set.
// It is single-threaded; a Pipeline must not be shared across runs.
type Pipeline struct {
	cfg          config.Cleaning
	rng          *rand.Rand
	stats        Stats
	outlierStats algo.IQRStats
	sampled      bool
}

// New creates a cleaning pipeline. The random source for large-dataset
// outlier sampling is seeded from the config so repeated runs over identical
// input flag the same outlier set.
func New(cfg config.Cleaning) *Pipeline {
	return &Pipeline{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.SampleSeed)),
	}
}

// Stats returns the counters accumulated by the last Run.
func (p *Pipeline) Stats() Stats { return p.stats }

// OutlierStats returns the IQR bounds used by the outlier stage, and whether
// they were estimated from a random sample.
func (p *Pipeline) OutlierStats() (algo.IQRStats, bool) { return p.outlierStats, p.sampled }

// Run applies every cleaning stage in order and returns the surviving
// records. The survivor count is always less than or equal to the input
// count. Structurally rejected records get their validity flag set before
// they are dropped; outlier-flagged records are kept.
func (p *Pipeline) Run(dataset *model.Dataset) []*model.Trip {
	slog.Info("Starting cleaning pipeline", "records", len(dataset.Trips))
	p.stats = Stats{TotalRecords: len(dataset.Trips)}

	survivors := p.removeDuplicates(dataset.Trips)
	survivors = p.fixMissingValues(survivors)
	survivors = p.validateCoordinates(survivors)
	survivors = p.validateDatetimes(survivors)
	survivors = p.validateTripBounds(survivors)
	survivors = p.annotateOutliers(survivors)

	dataset.AddColumn(model.FieldCalculatedDuration)
	dataset.AddColumn(model.FieldOutlierFlag)

	p.stats.ValidRecords = len(survivors)
	p.stats.InvalidRecords = p.stats.TotalRecords - p.stats.ValidRecords

	slog.Info("Cleaning pipeline finished",
		"valid", p.stats.ValidRecords,
		"invalid", p.stats.InvalidRecords)
	return survivors
}

// removeDuplicates keeps the first occurrence of each composite key and
// discards later ones.
func (p *Pipeline) removeDuplicates(trips []*model.Trip) []*model.Trip {
	seen := make(map[string]struct{}, len(trips))
	unique := make([]*model.Trip, 0, len(trips))

	for _, trip := range trips {
		key := strings.Join([]string{
			trip.Get(model.FieldPickupDatetime),
			trip.Get(model.FieldDropoffDatetime),
			trip.Get(model.FieldPickupLongitude),
			trip.Get(model.FieldPickupLatitude),
			trip.Get(model.FieldTripDuration),
		}, "|")

		if _, ok := seen[key]; ok {
			p.stats.DuplicatesRemoved++
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, trip)
	}

	slog.Info("Removed duplicates", "count", p.stats.DuplicatesRemoved)
	return unique
}

// fixMissingValues substitutes documented defaults for absent fields. It
// never removes a record.
func (p *Pipeline) fixMissingValues(trips []*model.Trip) []*model.Trip {
	for _, trip := range trips {
		fixed := false

		if !trip.Has(model.FieldPassengerCount) {
			trip.Set(model.FieldPassengerCount, "1")
			fixed = true
		}
		if !trip.Has(model.FieldStoreAndFwdFlag) {
			trip.Set(model.FieldStoreAndFwdFlag, "N")
			fixed = true
		}
		if !trip.Has(model.FieldVendorID) {
			trip.Set(model.FieldVendorID, "1")
			fixed = true
		}

		if fixed {
			p.stats.MissingValuesFixed++
		}
	}

	slog.Info("Fixed missing values", "count", p.stats.MissingValuesFixed)
	return trips
}

// validateCoordinates removes records whose pickup or dropoff coordinates
// are unparsable or outside the configured bounding box.
func (p *Pipeline) validateCoordinates(trips []*model.Trip) []*model.Trip {
	valid := make([]*model.Trip, 0, len(trips))

	for _, trip := range trips {
		pickupLat, err1 := parseCoord(trip, model.FieldPickupLatitude)
		pickupLon, err2 := parseCoord(trip, model.FieldPickupLongitude)
		dropoffLat, err3 := parseCoord(trip, model.FieldDropoffLatitude)
		dropoffLon, err4 := parseCoord(trip, model.FieldDropoffLongitude)

		if err1 != nil || err2 != nil || err3 != nil || err4 != nil ||
			!p.inBounds(pickupLat, pickupLon) || !p.inBounds(dropoffLat, dropoffLon) {
			trip.Validity = model.InvalidCoordinates
			p.stats.CoordinateErrors++
			continue
		}
		valid = append(valid, trip)
	}

	slog.Info("Validated coordinates", "removed", p.stats.CoordinateErrors)
	return valid
}

func parseCoord(trip *model.Trip, field string) (float64, error) {
	return strconv.ParseFloat(trip.Get(field), 64)
}

func (p *Pipeline) inBounds(lat, lon float64) bool {
	b := p.cfg.Bounds
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// validateDatetimes removes records whose timestamps fail to parse or whose
// dropoff is not strictly after pickup. Survivors get the actual elapsed
// seconds recorded as calculated_duration.
func (p *Pipeline) validateDatetimes(trips []*model.Trip) []*model.Trip {
	valid := make([]*model.Trip, 0, len(trips))

	for _, trip := range trips {
		pickup, err1 := time.Parse(model.DatetimeLayout, trip.Get(model.FieldPickupDatetime))
		dropoff, err2 := time.Parse(model.DatetimeLayout, trip.Get(model.FieldDropoffDatetime))

		if err1 != nil || err2 != nil || !dropoff.After(pickup) {
			trip.Validity = model.InvalidDatetime
			p.stats.DatetimeErrors++
			continue
		}

		elapsed := int(dropoff.Sub(pickup).Seconds())
		trip.Set(model.FieldCalculatedDuration, strconv.Itoa(elapsed))
		valid = append(valid, trip)
	}

	slog.Info("Validated datetimes", "removed", p.stats.DatetimeErrors)
	return valid
}

// validateTripBounds removes records with an out-of-range duration or
// passenger count.
func (p *Pipeline) validateTripBounds(trips []*model.Trip) []*model.Trip {
	valid := make([]*model.Trip, 0, len(trips))

	for _, trip := range trips {
		duration, err1 := strconv.Atoi(trip.Get(model.FieldTripDuration))
		passengers, err2 := strconv.Atoi(trip.Get(model.FieldPassengerCount))

		validDuration := err1 == nil &&
			duration >= p.cfg.MinDurationSec && duration <= p.cfg.MaxDurationSec
		validPassengers := err2 == nil &&
			passengers >= 1 && passengers <= p.cfg.MaxPassengers

		if !validDuration || !validPassengers {
			trip.Validity = model.InvalidDurationOrPassengers
			p.stats.DurationErrors++
			continue
		}
		valid = append(valid, trip)
	}

	slog.Info("Validated trip bounds", "removed", p.stats.DurationErrors)
	return valid
}

// annotateOutliers flags records whose trip duration falls outside the IQR
// bounds. Above the large-dataset threshold the bounds are estimated from a
// seeded random sample and applied to the entire survivor set. Flagged
// records are kept.
func (p *Pipeline) annotateOutliers(trips []*model.Trip) []*model.Trip {
	durations := make([]float64, len(trips))
	for i, trip := range trips {
		durations[i] = trip.Float(model.FieldTripDuration)
	}

	outside := make(map[int]struct{})
	if len(durations) > p.cfg.SampleThreshold {
		sampleSize := p.cfg.SampleSize
		if sampleSize > len(durations) {
			sampleSize = len(durations)
		}
		slog.Info("Large dataset, sampling for outlier bounds",
			"records", len(durations), "sample", sampleSize)

		sample := make([]float64, sampleSize)
		for i, idx := range p.rng.Perm(len(durations))[:sampleSize] {
			sample[i] = durations[idx]
		}

		_, p.outlierStats = algo.DetectOutliersIQR(sample, p.cfg.OutlierMultiplier)
		p.sampled = true

		for i, d := range durations {
			if p.outlierStats.Outside(d) {
				outside[i] = struct{}{}
			}
		}
		p.outlierStats.OutlierCount = len(outside)
	} else {
		indexes, stats := algo.DetectOutliersIQR(durations, p.cfg.OutlierMultiplier)
		p.outlierStats = stats
		for _, i := range indexes {
			outside[i] = struct{}{}
		}
	}

	for i, trip := range trips {
		if _, ok := outside[i]; ok {
			trip.Outlier = model.DurationOutlier
			p.stats.OutliersDetected++
		} else {
			trip.Outlier = model.OutlierNormal
		}
		trip.Set(model.FieldOutlierFlag, string(trip.Outlier))
	}

	slog.Info("Annotated outliers", "count", p.stats.OutliersDetected)
	return trips
}

// OutputColumns is the column order of the cleaned dataset file.
func OutputColumns() []string {
	return []string{
		model.FieldID,
		model.FieldVendorID,
		model.FieldPickupDatetime,
		model.FieldDropoffDatetime,
		model.FieldPassengerCount,
		model.FieldPickupLongitude,
		model.FieldPickupLatitude,
		model.FieldDropoffLongitude,
		model.FieldDropoffLatitude,
		model.FieldStoreAndFwdFlag,
		model.FieldTripDuration,
		model.FieldCalculatedDuration,
		model.FieldOutlierFlag,
	}
}
