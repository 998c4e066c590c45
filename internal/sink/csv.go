package sink

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/recordloom-cli/internal/record"
	"github.com/KaramelBytes/recordloom-cli/internal/utils"
)

type csvWriter struct{}

func (csvWriter) CanWrite(path string) bool {
	name := strings.ToLower(path)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvWriter) Write(_ context.Context, path string, t *record.Table, opt Options) error {
	delim := opt.Delimiter
	if delim == 0 {
		delim = ','
		if strings.HasSuffix(strings.ToLower(path), ".tsv") {
			delim = '\t'
		}
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t, delim); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

// WriteCSV writes the header and rows; missing values become empty cells and
// dates use record.DateLayout.
func WriteCSV(w io.Writer, t *record.Table, delim rune) error {
	cw := csv.NewWriter(w)
	if delim != 0 {
		cw.Comma = delim
	}
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range t.Rows {
		if err := cw.Write(row.Strings()); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
