// Package csvio reads and writes the delimited trip files consumed and
// produced by the pipelines.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urbanmotion/tripflow/internal/model"
)

// ReadDataset reads a header-plus-rows delimited file into a dataset. Rows
// whose column count does not match the header are skipped. Values and
// header names are whitespace-trimmed. Row numbers start at 2, the header
// being row 1. A missing or unreadable file is a fatal error for the caller;
// no partial result is returned.
func ReadDataset(path string) (*model.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			slog.Warn("Failed to close input file", "path", path, "error", closeErr)
		}
	}()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // column-count mismatches are handled per row

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header from %s: %w", path, err)
	}
	columns := make([]string, len(header))
	for i, col := range header {
		columns[i] = strings.TrimSpace(col)
	}

	dataset := &model.Dataset{Columns: columns}

	rowNum := 1
	skipped := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			rowNum++
			skipped++
			continue
		}
		rowNum++

		if len(row) != len(columns) {
			skipped++
			continue
		}

		trip := model.NewTrip(rowNum)
		for i, value := range row {
			trip.Set(columns[i], strings.TrimSpace(value))
		}
		dataset.Trips = append(dataset.Trips, trip)

		if rowNum%50000 == 0 {
			slog.Debug("Reading input rows", "rows", rowNum)
		}
	}

	if skipped > 0 {
		slog.Warn("Skipped malformed rows", "count", skipped, "path", path)
	}

	return dataset, nil
}
