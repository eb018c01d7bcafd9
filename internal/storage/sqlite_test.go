package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanmotion/tripflow/internal/model"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "trips.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func loadableTrip(row int, overrides map[string]string) *model.Trip {
	trip := model.NewTrip(row)
	trip.Set(model.FieldID, fmt.Sprintf("id%d", row))
	trip.Set(model.FieldVendorID, "2")
	trip.Set(model.FieldPickupDatetime, "2016-03-14 17:24:55")
	trip.Set(model.FieldDropoffDatetime, "2016-03-14 17:32:30")
	trip.Set(model.FieldPassengerCount, "1")
	trip.Set(model.FieldPickupLongitude, "-73.98")
	trip.Set(model.FieldPickupLatitude, "40.75")
	trip.Set(model.FieldDropoffLongitude, "-73.92")
	trip.Set(model.FieldDropoffLatitude, "40.76")
	trip.Set(model.FieldStoreAndFwdFlag, "N")
	trip.Set(model.FieldTripDuration, "455")
	trip.Set(model.FieldOutlierFlag, string(model.OutlierNormal))
	trip.Set(model.FieldTripDistanceKm, "5.175")
	trip.Set(model.FieldTripSpeedKmh, "40.94")
	trip.Set(model.FieldEstimatedIdleTime, "0")
	trip.Set(model.FieldEfficiencyScore, "100.0")
	trip.Set(model.FieldTimeOfDay, "Evening")
	trip.Set(model.FieldDayOfWeek, "Monday")
	trip.Set(model.FieldIsWeekend, "False")
	trip.Set(model.FieldTripPatterns, "Normal")
	for field, value := range overrides {
		trip.Set(field, value)
	}
	return trip
}

func TestInsertTrips(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	trips := []*model.Trip{
		loadableTrip(2, nil),
		loadableTrip(3, map[string]string{
			model.FieldOutlierFlag:  string(model.DurationOutlier),
			model.FieldTripPatterns: "Extended;Journey",
		}),
		loadableTrip(4, map[string]string{model.FieldPickupDatetime: "2016-03-14 09:10:00"}),
	}

	stats, err := s.InsertTrips(ctx, trips, 2, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.RecordsLoaded)
	assert.Equal(t, 0, stats.RecordsFailed)
	assert.Equal(t, 2, stats.TotalBatches)

	total, err := s.CountTrips(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	valid, err := s.CountValidTrips(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, valid, "the outlier-flagged trip is not counted as valid")
}

func TestInsertTripsIgnoresDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	_, err := s.InsertTrips(ctx, []*model.Trip{loadableTrip(2, nil)}, 10, nil)
	require.NoError(t, err)
	_, err = s.InsertTrips(ctx, []*model.Trip{loadableTrip(2, nil)}, 10, nil)
	require.NoError(t, err)

	total, err := s.CountTrips(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestInsertTripsSkipsUnloadableRecords(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	noID := loadableTrip(2, map[string]string{model.FieldID: ""})
	badDatetime := loadableTrip(3, map[string]string{model.FieldPickupDatetime: "garbage"})
	good := loadableTrip(4, nil)

	stats, err := s.InsertTrips(ctx, []*model.Trip{noID, badDatetime, good}, 10, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.RecordsLoaded)
	assert.Equal(t, 2, stats.RecordsFailed)
}

func TestInsertTripsReportsBatchProgress(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	var trips []*model.Trip
	for row := 2; row <= 6; row++ {
		trips = append(trips, loadableTrip(row, nil))
	}

	var calls []int
	_, err := s.InsertTrips(ctx, trips, 2, func(done, total int) {
		assert.Equal(t, 3, total)
		calls = append(calls, done)
	})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, calls)
}

func TestUpdateTripStatistics(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	trips := []*model.Trip{
		loadableTrip(2, nil), // 17:00 hour
		loadableTrip(3, map[string]string{model.FieldPickupDatetime: "2016-03-14 17:50:00"}),
		loadableTrip(4, map[string]string{model.FieldPickupDatetime: "2016-03-15 09:00:00"}),
		loadableTrip(5, map[string]string{ // outlier, excluded from statistics
			model.FieldOutlierFlag: string(model.DurationOutlier),
		}),
	}
	_, err := s.InsertTrips(ctx, trips, 10, nil)
	require.NoError(t, err)

	periods, err := s.UpdateTripStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, periods)

	var totalTrips int
	var avgDuration float64
	err = s.db.QueryRowContext(ctx, `
		SELECT total_trips, avg_duration FROM trip_statistics
		WHERE date_period = '2016-03-14' AND hour_period = 17`).
		Scan(&totalTrips, &avgDuration)
	require.NoError(t, err)
	assert.Equal(t, 2, totalTrips)
	assert.InDelta(t, 455.0, avgDuration, 1e-9)
}

func TestWriteReport(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	stats, err := s.InsertTrips(ctx, []*model.Trip{loadableTrip(2, nil)}, 10, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "loading_report.txt")
	require.NoError(t, s.WriteReport(ctx, path, "enriched.csv", stats, 1))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Records loaded: 1")
	assert.Contains(t, string(content), "Total trips in database: 1")
	assert.Contains(t, string(content), "Loading success rate: 100.00%")
}
