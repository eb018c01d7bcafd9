package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// ensureParentDir creates the directory an output file will be written into.
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
