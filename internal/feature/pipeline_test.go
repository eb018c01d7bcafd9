package feature

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanmotion/tripflow/internal/model"
)

// enrichedTrip builds a cleaned record ready for feature derivation.
func enrichedTrip(row int, overrides map[string]string) *model.Trip {
	trip := model.NewTrip(row)
	trip.Set(model.FieldID, fmt.Sprintf("id%d", row))
	trip.Set(model.FieldVendorID, "1")
	trip.Set(model.FieldPickupDatetime, "2016-03-14 17:24:55") // a Monday
	trip.Set(model.FieldDropoffDatetime, "2016-03-14 17:32:30")
	trip.Set(model.FieldPassengerCount, "1")
	trip.Set(model.FieldPickupLongitude, "-73.98")
	trip.Set(model.FieldPickupLatitude, "40.75")
	trip.Set(model.FieldDropoffLongitude, "-73.92")
	trip.Set(model.FieldDropoffLatitude, "40.76")
	trip.Set(model.FieldStoreAndFwdFlag, "N")
	trip.Set(model.FieldTripDuration, "455")
	trip.Set(model.FieldOutlierFlag, string(model.OutlierNormal))
	for field, value := range overrides {
		trip.Set(field, value)
	}
	return trip
}

func TestRunPreservesRecordCount(t *testing.T) {
	dataset := &model.Dataset{
		Columns: []string{model.FieldID},
		Trips: []*model.Trip{
			enrichedTrip(2, nil),
			enrichedTrip(3, map[string]string{model.FieldPickupLatitude: "bogus"}),
			enrichedTrip(4, nil),
		},
	}

	pipeline := New()
	got := pipeline.Run(dataset)

	assert.Len(t, got, 3, "feature engineering is pure enrichment")
	assert.Equal(t, 3, pipeline.Stats().RecordsProcessed)
	for _, col := range derivedColumns() {
		assert.Contains(t, dataset.Columns, col)
	}
}

func TestZeroDisplacementTrip(t *testing.T) {
	trip := enrichedTrip(2, map[string]string{
		model.FieldDropoffLongitude: "-73.98",
		model.FieldDropoffLatitude:  "40.75",
		model.FieldTripDuration:     "120",
	})
	dataset := &model.Dataset{Trips: []*model.Trip{trip}}

	New().Run(dataset)

	assert.Equal(t, "0.000", trip.Get(model.FieldTripDistanceKm))
	assert.Equal(t, "0.00", trip.Get(model.FieldTripSpeedKmh))
	assert.Equal(t, "0.0", trip.Get(model.FieldEfficiencyScore))
	assert.Equal(t, "0.0000", trip.Get(model.FieldDistancePerMinute))
	assert.Equal(t, "120", trip.Get(model.FieldEstimatedIdleTime), "zero speed means the whole trip is idle")
	assert.Equal(t, "1.00", trip.Get(model.FieldTripComplexity))
}

func TestUnparsableCoordinatesFallBackToDefaults(t *testing.T) {
	trip := enrichedTrip(2, map[string]string{model.FieldPickupLatitude: "not-a-number"})
	dataset := &model.Dataset{Trips: []*model.Trip{trip}}

	New().Run(dataset)

	assert.Equal(t, "0.000", trip.Get(model.FieldTripDistanceKm))
	assert.Equal(t, "Unknown", trip.Get(model.FieldPickupBorough))
	assert.Equal(t, "Unknown", trip.Get(model.FieldDropoffBorough))
	assert.Equal(t, "Unknown", trip.Get(model.FieldTripType))
}

func TestNonFiniteCoordinatesFallBackToDefaults(t *testing.T) {
	// ParseFloat accepts the literals "NaN" and "Inf", so these pass the
	// parse check; the run must still finish and the affected record must
	// get the zero-distance default rather than a NaN that would poison the
	// percentile-based pattern stage.
	tests := []struct {
		name  string
		value string
	}{
		{"NaN latitude", "NaN"},
		{"infinite latitude", "+Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dataset := &model.Dataset{Trips: []*model.Trip{
				enrichedTrip(2, nil),
				enrichedTrip(3, map[string]string{model.FieldPickupLatitude: tt.value}),
				enrichedTrip(4, nil),
			}}

			New().Run(dataset)

			affected := dataset.Trips[1]
			assert.Equal(t, "0.000", affected.Get(model.FieldTripDistanceKm))
			assert.Equal(t, "0.00", affected.Get(model.FieldTripSpeedKmh))
			for _, trip := range dataset.Trips {
				assert.NotEmpty(t, trip.Get(model.FieldTripPatterns))
			}
		})
	}
}

func TestTemporalFeatures(t *testing.T) {
	tests := []struct {
		name       string
		pickup     string
		hour       string
		timeOfDay  string
		dayOfWeek  string
		isWeekend  string
		month      string
		isRushHour string
	}{
		{
			name:   "weekday evening rush",
			pickup: "2016-03-14 17:24:55",
			hour:   "17", timeOfDay: "Evening", dayOfWeek: "Monday",
			isWeekend: "False", month: "3", isRushHour: "True",
		},
		{
			name:   "weekday morning rush",
			pickup: "2016-03-15 08:05:00",
			hour:   "8", timeOfDay: "Morning", dayOfWeek: "Tuesday",
			isWeekend: "False", month: "3", isRushHour: "True",
		},
		{
			name:   "weekend evening is not rush hour",
			pickup: "2016-03-12 18:00:00",
			hour:   "18", timeOfDay: "Evening", dayOfWeek: "Saturday",
			isWeekend: "True", month: "3", isRushHour: "False",
		},
		{
			name:   "early morning is night",
			pickup: "2016-06-01 03:30:00",
			hour:   "3", timeOfDay: "Night", dayOfWeek: "Wednesday",
			isWeekend: "False", month: "6", isRushHour: "False",
		},
		{
			name:   "afternoon",
			pickup: "2016-03-14 13:00:00",
			hour:   "13", timeOfDay: "Afternoon", dayOfWeek: "Monday",
			isWeekend: "False", month: "3", isRushHour: "False",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip := enrichedTrip(2, map[string]string{model.FieldPickupDatetime: tt.pickup})
			New().Run(&model.Dataset{Trips: []*model.Trip{trip}})

			assert.Equal(t, tt.hour, trip.Get(model.FieldPickupHour))
			assert.Equal(t, tt.timeOfDay, trip.Get(model.FieldTimeOfDay))
			assert.Equal(t, tt.dayOfWeek, trip.Get(model.FieldDayOfWeek))
			assert.Equal(t, tt.isWeekend, trip.Get(model.FieldIsWeekend))
			assert.Equal(t, tt.month, trip.Get(model.FieldPickupMonth))
			assert.Equal(t, tt.isRushHour, trip.Get(model.FieldIsRushHour))
		})
	}
}

func TestTemporalFeatureParseFallback(t *testing.T) {
	trip := enrichedTrip(2, map[string]string{model.FieldPickupDatetime: "garbage"})
	New().Run(&model.Dataset{Trips: []*model.Trip{trip}})

	assert.Equal(t, "0", trip.Get(model.FieldPickupHour))
	assert.Equal(t, "Unknown", trip.Get(model.FieldTimeOfDay))
	assert.Equal(t, "Unknown", trip.Get(model.FieldDayOfWeek))
	assert.Equal(t, "False", trip.Get(model.FieldIsWeekend))
	assert.Equal(t, "1", trip.Get(model.FieldPickupMonth))
	assert.Equal(t, "False", trip.Get(model.FieldIsRushHour))
}

func TestClassifyZones(t *testing.T) {
	t.Run("intra-borough", func(t *testing.T) {
		// Both endpoints near the Manhattan center.
		trip := enrichedTrip(2, map[string]string{
			model.FieldPickupLatitude:   "40.7800",
			model.FieldPickupLongitude:  "-73.9700",
			model.FieldDropoffLatitude:  "40.7700",
			model.FieldDropoffLongitude: "-73.9800",
		})
		New().Run(&model.Dataset{Trips: []*model.Trip{trip}})

		assert.Equal(t, "Manhattan", trip.Get(model.FieldPickupBorough))
		assert.Equal(t, "Manhattan", trip.Get(model.FieldDropoffBorough))
		assert.Equal(t, "Intra-borough", trip.Get(model.FieldTripType))
	})

	t.Run("inter-borough", func(t *testing.T) {
		// Manhattan center to Brooklyn center.
		trip := enrichedTrip(2, map[string]string{
			model.FieldPickupLatitude:   "40.7831",
			model.FieldPickupLongitude:  "-73.9712",
			model.FieldDropoffLatitude:  "40.6782",
			model.FieldDropoffLongitude: "-73.9442",
		})
		New().Run(&model.Dataset{Trips: []*model.Trip{trip}})

		assert.Equal(t, "Manhattan", trip.Get(model.FieldPickupBorough))
		assert.Equal(t, "Brooklyn", trip.Get(model.FieldDropoffBorough))
		assert.Equal(t, "Inter-borough", trip.Get(model.FieldTripType))
	})
}

func TestDetectPatterns(t *testing.T) {
	// Ten trips with increasing durations; row 2 is the slowest/shortest
	// extreme and row 11 the longest.
	var trips []*model.Trip
	for i := 0; i < 10; i++ {
		trips = append(trips, enrichedTrip(i+2, map[string]string{
			model.FieldTripDuration: fmt.Sprintf("%d", 300+i*300),
		}))
	}
	dataset := &model.Dataset{Trips: trips}

	New().Run(dataset)

	first := trips[0].Get(model.FieldTripPatterns)
	last := trips[9].Get(model.FieldTripPatterns)
	assert.Contains(t, first, "Quick", "duration below the 10th percentile")
	assert.Contains(t, last, "Extended", "duration above the 90th percentile")
	assert.Contains(t, last, "Journey", "duration above the absolute 1800s threshold")

	// A mid-pack trip gets no duration tag.
	mid := trips[5].Get(model.FieldTripPatterns)
	assert.NotContains(t, mid, "Quick")
	assert.NotContains(t, mid, "Extended")
	require.NotEmpty(t, mid)
}

func TestDetectPatternsNormal(t *testing.T) {
	// Identical metrics everywhere: no percentile tag can fire, and the
	// absolute thresholds are not crossed.
	var trips []*model.Trip
	for i := 0; i < 5; i++ {
		trips = append(trips, enrichedTrip(i+2, nil))
	}

	New().Run(&model.Dataset{Trips: trips})

	for _, trip := range trips {
		assert.Equal(t, "Normal", trip.Get(model.FieldTripPatterns))
	}
}
