// Package model defines the trip record types shared by the cleaning and
// feature-engineering pipelines.
package model

import (
	"strconv"
	"strings"
)

// ValidityFlag records why a record was structurally rejected. The flag is
// written onto the record before it is dropped from the working set so
// reports can account for every removal.
type ValidityFlag string

const (
	// ValidityNormal marks a record that passed every structural check.
	ValidityNormal ValidityFlag = "NORMAL"
	// InvalidCoordinates marks a record with unparsable or out-of-box coordinates.
	InvalidCoordinates ValidityFlag = "INVALID_COORDINATES"
	// InvalidDatetime marks a record whose timestamps fail to parse or are not ordered.
	InvalidDatetime ValidityFlag = "INVALID_DATETIME"
	// InvalidDurationOrPassengers marks a record outside the duration or passenger bounds.
	InvalidDurationOrPassengers ValidityFlag = "INVALID_DURATION_OR_PASSENGERS"
)

// OutlierFlag marks statistically anomalous but structurally valid records.
// Unlike ValidityFlag it never removes a record from the working set.
type OutlierFlag string

const (
	// OutlierNormal marks a record within the computed IQR bounds.
	OutlierNormal OutlierFlag = "NORMAL"
	// DurationOutlier marks a record whose trip duration falls outside the IQR bounds.
	DurationOutlier OutlierFlag = "DURATION_OUTLIER"
)

// Trip is a single source row: a mapping from column name to raw string
// value plus the row number it was read from. Pipeline stages only ever add
// fields or flags; existing fields are never removed.
type Trip struct {
	Fields   map[string]string
	Validity ValidityFlag
	Outlier  OutlierFlag
	Row      int
}

// NewTrip creates a trip record for the given source row number.
func NewTrip(row int) *Trip {
	return &Trip{
		Fields:   make(map[string]string),
		Validity: ValidityNormal,
		Outlier:  OutlierNormal,
		Row:      row,
	}
}

// Get returns the raw value for a field, or "" if the field is absent.
func (t *Trip) Get(field string) string {
	return t.Fields[field]
}

// Set stores a raw value for a field, adding the field if it is new.
func (t *Trip) Set(field, value string) {
	t.Fields[field] = value
}

// Has reports whether the field is present with a non-empty value.
func (t *Trip) Has(field string) bool {
	return strings.TrimSpace(t.Fields[field]) != ""
}

// Float parses a field as float64. Unparsable or absent fields return 0,
// matching the pipeline's parse-fallback rule.
func (t *Trip) Float(field string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(t.Fields[field]), 64)
	if err != nil {
		return 0
	}
	return v
}

// Int parses a field as int, returning 0 for unparsable or absent values.
func (t *Trip) Int(field string) int {
	v, err := strconv.Atoi(strings.TrimSpace(t.Fields[field]))
	if err != nil {
		return 0
	}
	return v
}

// Dataset is an in-memory record set together with the column order of its
// source file. Derived columns are appended to Columns in the order they are
// first created.
type Dataset struct {
	Columns []string
	Trips   []*Trip
}

// AddColumn appends a column name if it is not already present.
func (d *Dataset) AddColumn(name string) {
	for _, c := range d.Columns {
		if c == name {
			return
		}
	}
	d.Columns = append(d.Columns, name)
}

// Canonical input column names.
const (
	FieldID               = "id"
	FieldVendorID         = "vendor_id"
	FieldPickupDatetime   = "pickup_datetime"
	FieldDropoffDatetime  = "dropoff_datetime"
	FieldPassengerCount   = "passenger_count"
	FieldPickupLongitude  = "pickup_longitude"
	FieldPickupLatitude   = "pickup_latitude"
	FieldDropoffLongitude = "dropoff_longitude"
	FieldDropoffLatitude  = "dropoff_latitude"
	FieldStoreAndFwdFlag  = "store_and_fwd_flag"
	FieldTripDuration     = "trip_duration"
)

// Columns added by the cleaning pipeline.
const (
	FieldCalculatedDuration = "calculated_duration"
	FieldOutlierFlag        = "outlier_flag"
)

// Columns added by the feature-engineering pipeline.
const (
	FieldTripDistanceKm    = "trip_distance_km"
	FieldTripSpeedKmh      = "trip_speed_kmh"
	FieldPickupHour        = "pickup_hour"
	FieldTimeOfDay         = "time_of_day"
	FieldDayOfWeek         = "day_of_week"
	FieldIsWeekend         = "is_weekend"
	FieldPickupMonth       = "pickup_month"
	FieldIsRushHour        = "is_rush_hour"
	FieldDistancePerMinute = "distance_per_minute"
	FieldEstimatedIdleTime = "estimated_idle_time"
	FieldEfficiencyScore   = "efficiency_score"
	FieldTripComplexity    = "trip_complexity"
	FieldPickupBorough     = "pickup_borough"
	FieldDropoffBorough    = "dropoff_borough"
	FieldTripType          = "trip_type"
	FieldTripPatterns      = "trip_patterns"
)

// DatetimeLayout is the timestamp format used throughout the source data.
const DatetimeLayout = "2006-01-02 15:04:05"
