package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/urbanmotion/tripflow/internal/algo"
	"github.com/urbanmotion/tripflow/internal/model"
)

// LoadStats is the counter bundle for one loading run.
type LoadStats struct {
	RecordsLoaded int
	RecordsFailed int
	BatchSize     int
	TotalBatches  int
}

// tripRow is one enriched record converted to its typed column values.
type tripRow struct {
	pickupDatetime   time.Time
	dropoffDatetime  time.Time
	tripID           string
	storeAndFwdFlag  string
	timeOfDay        string
	dayOfWeek        string
	anomalyFlags     string
	vendorID         int
	passengerCount   int
	tripDuration     int
	idleTime         int
	qualityScore     int
	pickupLongitude  float64
	pickupLatitude   float64
	dropoffLongitude float64
	dropoffLatitude  float64
	tripDistance     float64
	tripSpeed        float64
	tripEfficiency   float64
	isWeekend        bool
	isValid          bool
}

// prepareRow converts an enriched record for insertion. It fails when the
// trip id is missing or a timestamp does not parse; every other field falls
// back to its zero value.
func prepareRow(trip *model.Trip) (tripRow, error) {
	id := trip.Get(model.FieldID)
	if id == "" {
		return tripRow{}, fmt.Errorf("record at row %d has no trip id", trip.Row)
	}

	pickup, err := time.Parse(model.DatetimeLayout, trip.Get(model.FieldPickupDatetime))
	if err != nil {
		return tripRow{}, fmt.Errorf("record %s has invalid pickup datetime: %w", id, err)
	}
	dropoff, err := time.Parse(model.DatetimeLayout, trip.Get(model.FieldDropoffDatetime))
	if err != nil {
		return tripRow{}, fmt.Errorf("record %s has invalid dropoff datetime: %w", id, err)
	}

	isValid := trip.Get(model.FieldOutlierFlag) == string(model.OutlierNormal)
	quality := 100
	if !isValid {
		quality = 80
	}

	return tripRow{
		tripID:           id,
		vendorID:         trip.Int(model.FieldVendorID),
		pickupDatetime:   pickup,
		dropoffDatetime:  dropoff,
		passengerCount:   trip.Int(model.FieldPassengerCount),
		pickupLongitude:  trip.Float(model.FieldPickupLongitude),
		pickupLatitude:   trip.Float(model.FieldPickupLatitude),
		dropoffLongitude: trip.Float(model.FieldDropoffLongitude),
		dropoffLatitude:  trip.Float(model.FieldDropoffLatitude),
		storeAndFwdFlag:  trip.Get(model.FieldStoreAndFwdFlag),
		tripDuration:     trip.Int(model.FieldTripDuration),
		tripDistance:     trip.Float(model.FieldTripDistanceKm),
		tripSpeed:        trip.Float(model.FieldTripSpeedKmh),
		idleTime:         int(trip.Float(model.FieldEstimatedIdleTime)),
		tripEfficiency:   trip.Float(model.FieldEfficiencyScore),
		timeOfDay:        trip.Get(model.FieldTimeOfDay),
		dayOfWeek:        trip.Get(model.FieldDayOfWeek),
		isWeekend:        trip.Get(model.FieldIsWeekend) == "True",
		isValid:          isValid,
		qualityScore:     quality,
		anomalyFlags:     trip.Get(model.FieldTripPatterns),
	}, nil
}

const insertTripQuery = `
INSERT OR IGNORE INTO trips (
	trip_id, vendor_id, pickup_datetime, dropoff_datetime,
	passenger_count, pickup_longitude, pickup_latitude,
	dropoff_longitude, dropoff_latitude, store_and_fwd_flag,
	trip_duration, trip_distance, trip_speed, idle_time,
	trip_efficiency, time_of_day, day_of_week, is_weekend,
	is_valid, quality_score, anomaly_flags
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// InsertTrips inserts enriched records in batches, each batch in its own
// transaction. Records that cannot be prepared are counted and skipped.
// onBatch, if non-nil, is called after each committed batch for progress
// reporting.
func (s *Storage) InsertTrips(ctx context.Context, trips []*model.Trip, batchSize int, onBatch func(done, total int)) (LoadStats, error) {
	if batchSize <= 0 {
		return LoadStats{}, fmt.Errorf("batchSize must be positive, got %d", batchSize)
	}

	totalBatches := (len(trips) + batchSize - 1) / batchSize
	stats := LoadStats{BatchSize: batchSize, TotalBatches: totalBatches}

	for batch := 0; batch < totalBatches; batch++ {
		start := batch * batchSize
		end := start + batchSize
		if end > len(trips) {
			end = len(trips)
		}

		loaded, failed, err := s.insertBatch(ctx, trips[start:end])
		if err != nil {
			return stats, fmt.Errorf("failed to insert batch %d/%d: %w", batch+1, totalBatches, err)
		}
		stats.RecordsLoaded += loaded
		stats.RecordsFailed += failed

		if onBatch != nil {
			onBatch(batch+1, totalBatches)
		}
	}

	slog.Info("Loaded trips", "loaded", stats.RecordsLoaded, "failed", stats.RecordsFailed)
	return stats, nil
}

func (s *Storage) insertBatch(ctx context.Context, trips []*model.Trip) (loaded, failed int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertTripQuery)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, trip := range trips {
		row, prepErr := prepareRow(trip)
		if prepErr != nil {
			slog.Warn("Skipping unloadable record", "error", prepErr)
			failed++
			continue
		}

		if _, execErr := stmt.ExecContext(ctx,
			row.tripID, row.vendorID, row.pickupDatetime, row.dropoffDatetime,
			row.passengerCount, row.pickupLongitude, row.pickupLatitude,
			row.dropoffLongitude, row.dropoffLatitude, row.storeAndFwdFlag,
			row.tripDuration, row.tripDistance, row.tripSpeed, row.idleTime,
			row.tripEfficiency, row.timeOfDay, row.dayOfWeek, row.isWeekend,
			row.isValid, row.qualityScore, row.anomalyFlags,
		); execErr != nil {
			return 0, 0, fmt.Errorf("failed to insert trip %s: %w", row.tripID, execErr)
		}
		loaded++
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit batch: %w", err)
	}
	return loaded, failed, nil
}

// statRow is one trip's contribution to the per-date/hour aggregation.
type statRow struct {
	date       string
	hour       int
	duration   float64
	distance   float64
	speed      float64
	passengers int
}

// UpdateTripStatistics rebuilds the trip_statistics table: one row per
// (pickup date, pickup hour) over valid trips, in first-seen order of the
// underlying trips ordered by period.
func (s *Storage) UpdateTripStatistics(ctx context.Context) (int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pickup_datetime, trip_duration, trip_distance, trip_speed, passenger_count
		FROM trips WHERE is_valid = 1 ORDER BY pickup_datetime`)
	if err != nil {
		return 0, fmt.Errorf("failed to query trips for statistics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []statRow
	for rows.Next() {
		var pickup time.Time
		var r statRow
		if err := rows.Scan(&pickup, &r.duration, &r.distance, &r.speed, &r.passengers); err != nil {
			return 0, fmt.Errorf("failed to scan trip row: %w", err)
		}
		r.date = pickup.Format("2006-01-02")
		r.hour = pickup.Hour()
		stats = append(stats, r)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to read trip rows: %w", err)
	}

	groups := algo.GroupBy(stats, func(r statRow) string {
		return r.date + "|" + strconv.Itoa(r.hour)
	})

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin statistics transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM trip_statistics"); err != nil {
		return 0, fmt.Errorf("failed to clear trip statistics: %w", err)
	}

	for _, group := range groups {
		durations := make([]float64, len(group.Items))
		distances := make([]float64, len(group.Items))
		speeds := make([]float64, len(group.Items))
		passengers := 0
		for i, r := range group.Items {
			durations[i] = r.duration
			distances[i] = r.distance
			speeds[i] = r.speed
			passengers += r.passengers
		}

		first := group.Items[0]
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO trip_statistics (
				date_period, hour_period, total_trips,
				avg_duration, avg_distance, avg_speed, total_passengers
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			first.date, first.hour, len(group.Items),
			algo.Describe(durations).Mean,
			algo.Describe(distances).Mean,
			algo.Describe(speeds).Mean,
			passengers,
		); err != nil {
			return 0, fmt.Errorf("failed to insert statistics for %s hour %d: %w", first.date, first.hour, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit trip statistics: %w", err)
	}

	slog.Info("Updated trip statistics", "periods", len(groups))
	return len(groups), nil
}
