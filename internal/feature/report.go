package feature

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urbanmotion/tripflow/internal/algo"
	"github.com/urbanmotion/tripflow/internal/model"
)

// featureDescriptions documents every derived field for the report, in the
// order the stages create them.
var featureDescriptions = []struct {
	field       string
	description string
}{
	{model.FieldTripDistanceKm, "Great circle distance between pickup and dropoff"},
	{model.FieldTripSpeedKmh, "Average speed calculated from distance and duration"},
	{model.FieldTimeOfDay, "Morning, Afternoon, Evening, or Night"},
	{model.FieldIsRushHour, "Whether the trip occurred during rush hours"},
	{model.FieldDistancePerMinute, "Distance covered per minute of travel"},
	{model.FieldEstimatedIdleTime, "Estimated time spent not moving (traffic, stops)"},
	{model.FieldEfficiencyScore, "Trip efficiency score (0-100, higher is better)"},
	{model.FieldTripComplexity, "Ratio of actual to expected duration"},
	{model.FieldPickupBorough, "Estimated borough for the pickup location"},
	{model.FieldTripType, "Intra-borough or inter-borough classification"},
	{model.FieldTripPatterns, "Speed, distance, and duration pattern classification"},
}

// WriteReport renders the feature-engineering report: counters, feature
// descriptions, and one sample enriched record.
func WriteReport(path, inputPath, outputPath string, stats Stats, trips []*model.Trip) error {
	var b strings.Builder

	b.WriteString("FEATURE ENGINEERING REPORT\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	fmt.Fprintf(&b, "Input file: %s\n", inputPath)
	fmt.Fprintf(&b, "Output file: %s\n", outputPath)
	fmt.Fprintf(&b, "Processing date: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	b.WriteString("FEATURE STATISTICS:\n")
	b.WriteString(strings.Repeat("-", 30) + "\n")
	for _, c := range stats.Counters() {
		fmt.Fprintf(&b, "%s: %d\n", c.Name, c.Value)
	}

	b.WriteString("\nFEATURE DESCRIPTIONS:\n")
	b.WriteString(strings.Repeat("-", 30) + "\n")
	for _, fd := range featureDescriptions {
		fmt.Fprintf(&b, "%s: %s\n", fd.field, fd.description)
	}

	if longest := algo.TopK(trips, 5, func(t *model.Trip) float64 {
		return t.Float(model.FieldTripDistanceKm)
	}); len(longest) > 0 {
		b.WriteString("\nLONGEST TRIPS:\n")
		b.WriteString(strings.Repeat("-", 30) + "\n")
		for _, trip := range longest {
			fmt.Fprintf(&b, "  %s: %s km in %s s\n",
				trip.Get(model.FieldID),
				trip.Get(model.FieldTripDistanceKm),
				trip.Get(model.FieldTripDuration))
		}
	}

	if len(trips) > 0 {
		b.WriteString("\nSAMPLE ENRICHED RECORD:\n")
		b.WriteString(strings.Repeat("-", 30) + "\n")
		sample := trips[0]
		for _, col := range derivedColumns() {
			fmt.Fprintf(&b, "  %s: %s\n", col, sample.Get(col))
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write feature report %s: %w", path, err)
	}
	return nil
}
