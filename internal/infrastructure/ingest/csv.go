package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/bibbank/fraudwatch/internal/domain/model"
)

// PaySim column names.
const (
	ColStep           = "step"
	ColType           = "type"
	ColAmount         = "amount"
	ColNameOrig       = "nameOrig"
	ColOldBalanceOrig = "oldbalanceOrg"
	ColNewBalanceOrig = "newbalanceOrig"
	ColNameDest       = "nameDest"
	ColOldBalanceDest = "oldbalanceDest"
	ColNewBalanceDest = "newbalanceDest"
)

// RequiredColumns must all be present in the header of an upload.
var RequiredColumns = []string{ColStep, ColType, ColAmount, ColOldBalanceOrig, ColNewBalanceOrig}

// ReadCSV parses a PaySim-style CSV with a header row. Columns may appear in
// any order and unknown columns are ignored. A cell that is empty or does not
// parse is treated as absent, so Normalize later fills it with zero. A header
// missing any of RequiredColumns yields a ValidationError.
func ReadCSV(r io.Reader) ([]model.RawTransaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &model.ValidationError{Err: model.ErrMissingColumns, Missing: RequiredColumns}
	}
	if err != nil {
		return nil, fmt.Errorf("ingest: read header: %w", err)
	}

	index, err := indexHeader(header)
	if err != nil {
		return nil, err
	}

	rows := make([]model.RawTransaction, 0)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: read line %d: %w", line, err)
		}

		rows = append(rows, parseRecord(index, record))
	}

	return rows, nil
}

// indexHeader maps column names to positions, keeping the first of any
// duplicates, and checks RequiredColumns.
func indexHeader(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &model.ValidationError{Err: model.ErrMissingColumns, Missing: missing}
	}
	return index, nil
}

func parseRecord(index map[string]int, record []string) model.RawTransaction {
	c := cells{record: record, index: index}
	return model.RawTransaction{
		Step:           c.int(ColStep),
		Type:           c.str(ColType),
		Amount:         c.float(ColAmount),
		NameOrig:       c.str(ColNameOrig),
		OldBalanceOrig: c.float(ColOldBalanceOrig),
		NewBalanceOrig: c.float(ColNewBalanceOrig),
		NameDest:       c.str(ColNameDest),
		OldBalanceDest: c.float(ColOldBalanceDest),
		NewBalanceDest: c.float(ColNewBalanceDest),
	}
}

type cells struct {
	index  map[string]int
	record []string
}

func (c cells) raw(col string) (string, bool) {
	i, ok := c.index[col]
	if !ok || i >= len(c.record) {
		return "", false
	}
	v := strings.TrimSpace(c.record[i])
	return v, v != ""
}

func (c cells) str(col string) *string {
	v, ok := c.raw(col)
	if !ok {
		return nil
	}
	return &v
}

// float treats NaN and ±Inf as absent: ParseFloat accepts "NaN" and "inf",
// but neither is an amount or a balance.
func (c cells) float(col string) *float64 {
	v, ok := c.raw(col)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// int accepts "7" and "7.0"; the latter is common in exported spreadsheets.
// Non-finite or out of range values are absent.
func (c cells) int(col string) *int64 {
	v, ok := c.raw(col)
	if !ok {
		return nil
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return &i
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return nil
	}
	i := int64(f)
	return &i
}
