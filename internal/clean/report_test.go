package clean

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaning_report.txt")
	stats := Stats{
		TotalRecords:      12,
		ValidRecords:      7,
		InvalidRecords:    5,
		DuplicatesRemoved: 2,
		CoordinateErrors:  1,
		DatetimeErrors:    1,
		DurationErrors:    1,
	}

	require.NoError(t, WriteReport(path, "raw.csv", "cleaned.csv", stats, testConfig()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	report := string(content)

	assert.Contains(t, report, "Total Records: 12")
	assert.Contains(t, report, "Duplicates Removed: 2")
	assert.Contains(t, report, "Data Quality: 58.33% valid records")
	assert.Contains(t, report, "min_lat: 40.4774")
	assert.Contains(t, report, "IQR method (2.0 multiplier)")
}
