package csvio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanmotion/tripflow/internal/model"
)

func TestReadDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trips.csv")
	content := "id,vendor_id,passenger_count\n" +
		"id1, 2 ,1\n" +
		"id2,1\n" + // wrong column count, skipped
		"id3,1,4\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	dataset, err := ReadDataset(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"id", "vendor_id", "passenger_count"}, dataset.Columns)
	require.Len(t, dataset.Trips, 2)
	assert.Equal(t, 2, dataset.Trips[0].Row)
	assert.Equal(t, "2", dataset.Trips[0].Get("vendor_id"), "values are trimmed")
	assert.Equal(t, 4, dataset.Trips[1].Row, "skipped rows still advance the row number")
	assert.Equal(t, "id3", dataset.Trips[1].Get("id"))
}

func TestReadDatasetMissingFile(t *testing.T) {
	_, err := ReadDataset(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestWriteDatasetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	trip := model.NewTrip(2)
	trip.Set("id", "id1")
	trip.Set("vendor_id", "2")

	columns := []string{"id", "vendor_id", "outlier_flag"}
	require.NoError(t, WriteDataset(path, columns, []*model.Trip{trip}))

	dataset, err := ReadDataset(path)
	require.NoError(t, err)
	assert.Equal(t, columns, dataset.Columns)
	require.Len(t, dataset.Trips, 1)
	assert.Equal(t, "id1", dataset.Trips[0].Get("id"))
	assert.Equal(t, "", dataset.Trips[0].Get("outlier_flag"), "absent fields are written blank")
}
