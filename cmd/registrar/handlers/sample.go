package handlers

import (
	"fmt"
	"os"

	"github.com/owlback/registrar/internal/input"
)

// writeSample writes the template workbook (for testing injection).
var writeSample = input.WriteSample

// Sample writes a template registration workbook to path. An existing file
// is never overwritten.
func Sample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists; choose a different path or remove it first", path)
	}

	if err := writeSample(path); err != nil {
		return fmt.Errorf("failed to write template workbook: %w", err)
	}

	fmt.Fprintf(stdout, "Template workbook written to %s\n", path)
	fmt.Fprintln(stdout, "Replace the example rows with real data, then run 'registrar register'.")
	return nil
}
