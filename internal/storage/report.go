package storage

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// WriteReport renders the loading report: loading counters plus the state of
// the store after the run.
func (s *Storage) WriteReport(ctx context.Context, path, csvPath string, stats LoadStats, statPeriods int) error {
	totalTrips, err := s.CountTrips(ctx)
	if err != nil {
		return err
	}
	validTrips, err := s.CountValidTrips(ctx)
	if err != nil {
		return err
	}

	var b strings.Builder

	b.WriteString("DATABASE LOADING REPORT\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	fmt.Fprintf(&b, "CSV file: %s\n", csvPath)
	fmt.Fprintf(&b, "Database: %s\n", s.dbPath)
	fmt.Fprintf(&b, "Loading date: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	b.WriteString("LOADING STATISTICS:\n")
	b.WriteString(strings.Repeat("-", 30) + "\n")
	fmt.Fprintf(&b, "Records loaded: %d\n", stats.RecordsLoaded)
	fmt.Fprintf(&b, "Records failed: %d\n", stats.RecordsFailed)
	fmt.Fprintf(&b, "Batch size: %d\n", stats.BatchSize)
	fmt.Fprintf(&b, "Total batches: %d\n", stats.TotalBatches)

	b.WriteString("\nDATABASE STATISTICS:\n")
	b.WriteString(strings.Repeat("-", 30) + "\n")
	fmt.Fprintf(&b, "Total trips in database: %d\n", totalTrips)
	fmt.Fprintf(&b, "Valid trips: %d\n", validTrips)
	fmt.Fprintf(&b, "Statistical periods: %d\n", statPeriods)

	if attempted := stats.RecordsLoaded + stats.RecordsFailed; attempted > 0 {
		rate := float64(stats.RecordsLoaded) / float64(attempted) * 100
		fmt.Fprintf(&b, "Loading success rate: %.2f%%\n", rate)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write loading report %s: %w", path, err)
	}
	return nil
}
