package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/urbanmotion/tripflow/internal/cli"
	"github.com/urbanmotion/tripflow/internal/csvio"
	"github.com/urbanmotion/tripflow/internal/feature"
)

func featuresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "features",
		Short: "Engineer analytical features from cleaned trips",
		Long: `Derive distance, speed, temporal, efficiency, borough and pattern
features for every cleaned record. Records are never dropped here; fields
that fail to parse yield documented defaults.`,
		RunE: runFeatures,
	}

	// Flags
	cmd.Flags().StringP("input", "i", "data/cleaned_trips.csv", "Cleaned trip CSV file")
	cmd.Flags().StringP("output", "o", "data/enriched_trips.csv", "Enriched CSV output file")
	cmd.Flags().String("report", "reports/feature_report.txt", "Feature report file")

	// Bind to viper
	_ = viper.BindPFlag("features.input", cmd.Flags().Lookup("input"))
	_ = viper.BindPFlag("features.output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("features.report", cmd.Flags().Lookup("report"))

	return cmd
}

func runFeatures(_ *cobra.Command, _ []string) error {
	input := viper.GetString("features.input")
	output := viper.GetString("features.output")
	report := viper.GetString("features.report")

	slog.Info(cli.FormatTitle("Engineering trip features..."))

	stats, err := featureStage(input, output, report)
	if err != nil {
		slog.Error(cli.FormatError("Feature engineering failed"))
		return err
	}

	slog.Info(cli.RenderBox("Feature Engineering Complete", renderFeatureSummary(stats)))
	slog.Info(cli.FormatSuccess(fmt.Sprintf("Enriched data written to %s", output)))
	return nil
}

// featureStage runs the feature pipeline from input to output, writing the
// report alongside, and returns the run's counters.
func featureStage(input, output, report string) (feature.Stats, error) {
	dataset, err := csvio.ReadDataset(input)
	if err != nil {
		return feature.Stats{}, err
	}

	pipeline := feature.New()
	trips := pipeline.Run(dataset)

	if err := ensureParentDir(output); err != nil {
		return feature.Stats{}, err
	}
	if err := csvio.WriteDataset(output, dataset.Columns, trips); err != nil {
		return feature.Stats{}, err
	}

	if err := ensureParentDir(report); err != nil {
		return feature.Stats{}, err
	}
	if err := feature.WriteReport(report, input, output, pipeline.Stats(), trips); err != nil {
		return feature.Stats{}, err
	}

	return pipeline.Stats(), nil
}

func renderFeatureSummary(stats feature.Stats) string {
	var b strings.Builder
	for i, c := range stats.Counters() {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %d", c.Name, c.Value)
	}
	return b.String()
}
