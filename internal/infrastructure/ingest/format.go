package ingest

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bibbank/fraudwatch/internal/domain/model"
)

// ErrUnsupportedFormat is returned by Read for a file extension with no
// reader.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Reader parses one upload format.
type Reader func(r io.Reader) ([]model.RawTransaction, error)

// readers is keyed by lower-case extension. ".xls" goes to the workbook
// reader, which accepts xlsx content saved under the old extension and
// rejects legacy binary workbooks with an open error.
var readers = map[string]Reader{
	".csv":  ReadCSV,
	".xlsx": ReadXLSX,
	".xls":  ReadXLSX,
}

// Extensions lists the accepted upload extensions.
func Extensions() []string {
	return []string{".csv", ".xlsx", ".xls"}
}

// Supported reports whether filename has an accepted extension.
func Supported(filename string) bool {
	_, ok := readers[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Read parses r with the reader chosen by filename's extension.
func Read(filename string, r io.Reader) ([]model.RawTransaction, error) {
	read, ok := readers[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return nil, fmt.Errorf("ingest: %s: %w", filepath.Base(filename), ErrUnsupportedFormat)
	}
	return read(r)
}
