package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/urbanmotion/tripflow/internal/cli"
	"github.com/urbanmotion/tripflow/internal/config"
	"github.com/urbanmotion/tripflow/internal/csvio"
	"github.com/urbanmotion/tripflow/internal/storage"
)

func loadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load enriched trips into SQLite",
		Long: `Insert enriched trip records into a local SQLite database in
batched transactions, then rebuild the per-date, per-hour statistics table.

Records already present (same trip id) are skipped.`,
		RunE: runLoad,
	}

	// Flags
	cmd.Flags().StringP("input", "i", "data/enriched_trips.csv", "Enriched trip CSV file")
	cmd.Flags().String("db", "data/trips.db", "SQLite database file")
	cmd.Flags().String("report", "reports/loading_report.txt", "Loading report file")

	// Bind to viper
	_ = viper.BindPFlag("load.input", cmd.Flags().Lookup("input"))
	_ = viper.BindPFlag("load.db", cmd.Flags().Lookup("db"))
	_ = viper.BindPFlag("load.report", cmd.Flags().Lookup("report"))

	return cmd
}

func runLoad(cmd *cobra.Command, _ []string) error {
	input := viper.GetString("load.input")
	dbPath := viper.GetString("load.db")
	report := viper.GetString("load.report")

	slog.Info(cli.FormatTitle("Loading trips into database..."))

	stats, periods, err := loadStage(cmd.Context(), input, dbPath, report)
	if err != nil {
		slog.Error(cli.FormatError("Loading failed"))
		return err
	}

	summary := fmt.Sprintf("Records loaded: %d\nRecords failed: %d\nStatistical periods: %d",
		stats.RecordsLoaded, stats.RecordsFailed, periods)
	slog.Info(cli.RenderBox("Loading Complete", summary))
	slog.Info(cli.FormatSuccess(fmt.Sprintf("Database written to %s", dbPath)))
	return nil
}

// loadStage inserts the enriched records at input into the database at
// dbPath, rebuilds the statistics table, and writes the loading report.
func loadStage(ctx context.Context, input, dbPath, report string) (storage.LoadStats, int, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return storage.LoadStats{}, 0, err
	}

	dataset, err := csvio.ReadDataset(input)
	if err != nil {
		return storage.LoadStats{}, 0, err
	}

	store, err := storage.New(dbPath)
	if err != nil {
		return storage.LoadStats{}, 0, err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("Failed to close database", "error", closeErr)
		}
	}()

	batchSize := cfg.Loading.BatchSize
	totalBatches := (len(dataset.Trips) + batchSize - 1) / batchSize
	bar := cli.NewProgressBar(totalBatches, "Loading batches...", os.Stderr)

	stats, err := store.InsertTrips(ctx, dataset.Trips, batchSize, func(_, _ int) {
		if addErr := bar.Add(1); addErr != nil {
			slog.Warn("Failed to advance progress bar", "error", addErr)
		}
	})
	if err != nil {
		return stats, 0, err
	}

	periods, err := store.UpdateTripStatistics(ctx)
	if err != nil {
		return stats, 0, err
	}

	if err := ensureParentDir(report); err != nil {
		return stats, periods, err
	}
	if err := store.WriteReport(ctx, report, input, stats, periods); err != nil {
		return stats, periods, err
	}

	return stats, periods, nil
}
