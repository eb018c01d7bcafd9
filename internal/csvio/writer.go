package csvio

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"

	"github.com/urbanmotion/tripflow/internal/model"
)

// WriteDataset writes trips to path as a delimited file with the given
// column order. Fields a record does not carry are written blank.
func WriteDataset(path string, columns []string, trips []*model.Trip) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	writer := csv.NewWriter(file)

	if err := writer.Write(columns); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}

	row := make([]string, len(columns))
	for _, trip := range trips {
		for i, col := range columns {
			row[i] = trip.Get(col)
		}
		if err := writer.Write(row); err != nil {
			_ = file.Close()
			return fmt.Errorf("failed to write row %d to %s: %w", trip.Row, path, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to flush output file %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output file %s: %w", path, err)
	}

	slog.Info("Wrote dataset", "path", path, "rows", len(trips), "columns", len(columns))
	return nil
}
