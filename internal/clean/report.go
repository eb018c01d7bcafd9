package clean

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urbanmotion/tripflow/internal/config"
)

// WriteReport renders the human-readable cleaning report: every counter, the
// geographic bounds used, and the resulting data-quality percentage.
func WriteReport(path, inputPath, outputPath string, stats Stats, cfg config.Cleaning) error {
	var b strings.Builder

	b.WriteString("TRIP DATA CLEANING REPORT\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	fmt.Fprintf(&b, "Input file: %s\n", inputPath)
	fmt.Fprintf(&b, "Output file: %s\n", outputPath)
	fmt.Fprintf(&b, "Cleaning date: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	b.WriteString("CLEANING STATISTICS:\n")
	b.WriteString(strings.Repeat("-", 30) + "\n")
	for _, c := range stats.Counters() {
		fmt.Fprintf(&b, "%s: %d\n", c.Name, c.Value)
	}

	if stats.TotalRecords > 0 {
		quality := float64(stats.ValidRecords) / float64(stats.TotalRecords) * 100
		fmt.Fprintf(&b, "\nData Quality: %.2f%% valid records\n", quality)
	}

	b.WriteString("\nCLEANING ASSUMPTIONS:\n")
	b.WriteString(strings.Repeat("-", 30) + "\n")
	b.WriteString("- Missing passenger_count defaulted to 1\n")
	b.WriteString("- Missing store_and_fwd_flag defaulted to 'N'\n")
	b.WriteString("- Missing vendor_id defaulted to 1\n")
	fmt.Fprintf(&b, "- Trip duration must be between %d and %d seconds\n",
		cfg.MinDurationSec, cfg.MaxDurationSec)
	b.WriteString("- Coordinates must be within the configured bounding box\n")
	fmt.Fprintf(&b, "- Outliers detected using IQR method (%.1f multiplier)\n",
		cfg.OutlierMultiplier)

	b.WriteString("\nCOORDINATE BOUNDS USED:\n")
	b.WriteString(strings.Repeat("-", 30) + "\n")
	fmt.Fprintf(&b, "min_lat: %v\n", cfg.Bounds.MinLat)
	fmt.Fprintf(&b, "max_lat: %v\n", cfg.Bounds.MaxLat)
	fmt.Fprintf(&b, "min_lon: %v\n", cfg.Bounds.MinLon)
	fmt.Fprintf(&b, "max_lon: %v\n", cfg.Bounds.MaxLon)

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write cleaning report %s: %w", path, err)
	}
	return nil
}
