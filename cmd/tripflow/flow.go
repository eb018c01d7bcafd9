package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/urbanmotion/tripflow/internal/cli"
)

func flowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flow",
		Short: "Run the full pipeline end to end",
		Long: `Clean raw trip records, engineer features from the cleaned set,
and load the enriched result into SQLite, in one run.

Intermediate files and reports are written under the output directory.`,
		RunE: runFlowPipeline,
	}

	// Flags
	cmd.Flags().StringP("input", "i", "", "Raw trip CSV file (required)")
	cmd.Flags().StringP("output-dir", "o", "data", "Directory for intermediate and final outputs")
	cmd.Flags().String("report-dir", "reports", "Directory for stage reports")
	_ = cmd.MarkFlagRequired("input")

	// Bind to viper
	_ = viper.BindPFlag("flow.input", cmd.Flags().Lookup("input"))
	_ = viper.BindPFlag("flow.output_dir", cmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("flow.report_dir", cmd.Flags().Lookup("report-dir"))

	return cmd
}

func runFlowPipeline(cmd *cobra.Command, _ []string) error {
	input := viper.GetString("flow.input")
	outputDir := viper.GetString("flow.output_dir")
	reportDir := viper.GetString("flow.report_dir")

	cleaned := filepath.Join(outputDir, "cleaned_trips.csv")
	enriched := filepath.Join(outputDir, "enriched_trips.csv")
	dbPath := filepath.Join(outputDir, "trips.db")

	slog.Info(cli.FormatTitle("Running the full trip pipeline..."))

	cleanStats, err := cleanStage(input, cleaned, filepath.Join(reportDir, "cleaning_report.txt"))
	if err != nil {
		slog.Error(cli.FormatError("Cleaning stage failed"))
		return err
	}

	featureStats, err := featureStage(cleaned, enriched, filepath.Join(reportDir, "feature_report.txt"))
	if err != nil {
		slog.Error(cli.FormatError("Feature stage failed"))
		return err
	}

	loadStats, periods, err := loadStage(cmd.Context(), enriched, dbPath, filepath.Join(reportDir, "loading_report.txt"))
	if err != nil {
		slog.Error(cli.FormatError("Loading stage failed"))
		return err
	}

	summary := fmt.Sprintf(
		"Records read: %d\nRecords cleaned: %d\nFeatures created: %d\nRecords loaded: %d\nStatistical periods: %d",
		cleanStats.TotalRecords, cleanStats.ValidRecords,
		featureStats.FeaturesCreated, loadStats.RecordsLoaded, periods)
	slog.Info(cli.RenderBox("Pipeline Complete", summary))
	slog.Info(cli.FormatSuccess(fmt.Sprintf("Database written to %s", dbPath)))

	return nil
}
