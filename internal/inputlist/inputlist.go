// Package inputlist reads ordered document paths from a manifest file. The
// first column carries the paths; the first row is a header and is skipped.
package inputlist

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docpipeline/constants"
	"github.com/joseph-ayodele/docpipeline/internal/common"
)

// ReadManifest dispatches on the manifest's extension (.csv or .xlsx).
func ReadManifest(path string) ([]string, error) {
	switch constants.NormalizeExt(filepath.Ext(path)) {
	case "csv":
		return ReadCSV(path)
	case "xlsx":
		return ReadXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported manifest format %q: %w", filepath.Ext(path), common.ErrMalformedInput)
	}
}

// ReadCSV returns the first-column values of a CSV manifest, in order.
func ReadCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // column count beyond the first is irrelevant
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv manifest: %w: %v", common.ErrMalformedInput, err)
	}
	return firstColumn(rows), nil
}

// ReadXLSX returns the first-column values of the first sheet, in order.
func ReadXLSX(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx manifest has no sheets: %w", common.ErrMalformedInput)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx manifest: %w", err)
	}
	return firstColumn(rows), nil
}

func firstColumn(rows [][]string) []string {
	paths := make([]string, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) == 0 {
			continue
		}
		p := strings.TrimSpace(row[0])
		if p == "" {
			continue
		}
		paths = append(paths, p)
	}
	return paths
}
