package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/bibbank/fraudwatch/internal/domain/model"
)

// ReadXLSX parses the first worksheet of an Office Open XML workbook with
// the same header and cell rules as ReadCSV. Cells are read unformatted, so
// a number shown as "1,000.00" arrives as 1000. Blank rows are skipped.
func ReadXLSX(r io.Reader) ([]model.RawTransaction, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("ingest: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &model.ValidationError{Err: model.ErrMissingColumns, Missing: RequiredColumns}
	}

	records, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("ingest: read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, &model.ValidationError{Err: model.ErrMissingColumns, Missing: RequiredColumns}
	}

	index, err := indexHeader(records[0])
	if err != nil {
		return nil, err
	}

	rows := make([]model.RawTransaction, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		rows = append(rows, parseRecord(index, record))
	}
	return rows, nil
}
