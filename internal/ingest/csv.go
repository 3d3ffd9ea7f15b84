package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/segmint/segmint/internal/model"
)

// ReadFile loads a raw transaction table, dispatching on extension:
// .xlsx/.xlsm go through the spreadsheet reader, everything else is
// treated as delimited text.
func ReadFile(path string) ([]model.RawRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(path)
	default:
		f, err := os.Open(path) // #nosec G304 -- user-supplied input path
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				slog.Warn("failed to close input file", "path", path, "error", cerr)
			}
		}()
		return ReadCSV(f)
	}
}

// ReadCSV reads a delimited table with a header row. Short or ragged
// rows are tolerated; missing cells surface as empty strings and fall
// to the preprocessor.
func ReadCSV(r io.Reader) ([]model.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []model.RawRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line+1, err)
		}
		line++
		records = append(records, rowToRecord(row, index, line))
	}

	slog.Debug("csv loaded", "rows", len(records))
	return records, nil
}
