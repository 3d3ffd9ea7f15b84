package ingest

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/segmint/segmint/internal/common"
	"github.com/segmint/segmint/internal/model"
)

// ReadXLSX reads the first sheet of a workbook, treating the first row
// as the header.
func ReadXLSX(path string) ([]model.RawRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("failed to close workbook", "path", path, "error", cerr)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, common.NewDataQualityError("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, common.NewDataQualityError("sheet %q is empty", sheets[0])
	}

	index, err := columnIndex(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]model.RawRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		records = append(records, rowToRecord(row, index, i+2))
	}

	slog.Debug("workbook loaded", "sheet", sheets[0], "rows", len(records))
	return records, nil
}
