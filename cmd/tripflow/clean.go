package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/urbanmotion/tripflow/internal/clean"
	"github.com/urbanmotion/tripflow/internal/cli"
	"github.com/urbanmotion/tripflow/internal/config"
	"github.com/urbanmotion/tripflow/internal/csvio"
)

func cleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean raw trip records",
		Long: `Remove duplicates, fill missing values, validate coordinates,
timestamps, durations and passenger counts, and annotate duration outliers.

Structurally invalid records are dropped; outliers are flagged but kept.`,
		RunE: runClean,
	}

	// Flags
	cmd.Flags().StringP("input", "i", "", "Raw trip CSV file (required)")
	cmd.Flags().StringP("output", "o", "data/cleaned_trips.csv", "Cleaned CSV output file")
	cmd.Flags().String("report", "reports/cleaning_report.txt", "Cleaning report file")
	cmd.Flags().Int64("seed", 1, "Random seed for outlier-bound sampling on large datasets")
	_ = cmd.MarkFlagRequired("input")

	// Bind to viper
	_ = viper.BindPFlag("clean.input", cmd.Flags().Lookup("input"))
	_ = viper.BindPFlag("clean.output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("clean.report", cmd.Flags().Lookup("report"))
	_ = viper.BindPFlag("cleaning.sample_seed", cmd.Flags().Lookup("seed"))

	return cmd
}

func runClean(_ *cobra.Command, _ []string) error {
	input := viper.GetString("clean.input")
	output := viper.GetString("clean.output")
	report := viper.GetString("clean.report")

	slog.Info(cli.FormatTitle("Cleaning trip records..."))

	stats, err := cleanStage(input, output, report)
	if err != nil {
		slog.Error(cli.FormatError("Cleaning failed"))
		return err
	}

	slog.Info(cli.RenderBox("Cleaning Complete", renderCleanSummary(stats)))
	slog.Info(cli.FormatSuccess(fmt.Sprintf("Cleaned data written to %s", output)))
	return nil
}

// cleanStage runs the cleaning pipeline from input to output, writing the
// report alongside, and returns the run's counters.
func cleanStage(input, output, report string) (clean.Stats, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return clean.Stats{}, err
	}

	dataset, err := csvio.ReadDataset(input)
	if err != nil {
		return clean.Stats{}, err
	}

	pipeline := clean.New(cfg.Cleaning)
	survivors := pipeline.Run(dataset)

	if err := ensureParentDir(output); err != nil {
		return clean.Stats{}, err
	}
	if err := csvio.WriteDataset(output, clean.OutputColumns(), survivors); err != nil {
		return clean.Stats{}, err
	}

	if err := ensureParentDir(report); err != nil {
		return clean.Stats{}, err
	}
	if err := clean.WriteReport(report, input, output, pipeline.Stats(), cfg.Cleaning); err != nil {
		return clean.Stats{}, err
	}

	return pipeline.Stats(), nil
}

func renderCleanSummary(stats clean.Stats) string {
	var b strings.Builder
	for i, c := range stats.Counters() {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %d", c.Name, c.Value)
	}
	if stats.TotalRecords > 0 {
		quality := float64(stats.ValidRecords) / float64(stats.TotalRecords) * 100
		fmt.Fprintf(&b, "\nData quality: %.2f%%", quality)
	}
	return b.String()
}
