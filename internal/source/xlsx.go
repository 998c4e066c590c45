package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/recordloom-cli/internal/record"
)

type xlsxReader struct{}

func (xlsxReader) CanRead(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".xlsx")
}

// Read loads the selected sheet; the first row is the header.
// If SheetName is empty and SheetIndex <= 0, it defaults to the first sheet.
func (xlsxReader) Read(_ context.Context, path string, opt Options) (*record.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	sheet := ""
	if opt.SheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, opt.SheetName) {
				sheet = s
				break
			}
		}
		if sheet == "" {
			return nil, &UnavailableError{
				Source: filepath.Base(path),
				Err:    fmt.Errorf("sheet '%s' not found; available sheets: %s", opt.SheetName, strings.Join(sheets, ", ")),
			}
		}
	} else {
		idx := opt.SheetIndex
		if idx <= 0 {
			idx = 1
		}
		if idx > len(sheets) {
			return nil, &UnavailableError{
				Source: filepath.Base(path),
				Err:    fmt.Errorf("sheet index %d out of range (%d sheets)", idx, len(sheets)),
			}
		}
		sheet = sheets[idx-1]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	name := filepath.Base(path)
	if len(rows) == 0 {
		return record.NewTable(name, nil), nil
	}
	cols := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		cols[i] = strings.TrimSpace(h)
	}
	t := record.NewTable(name, cols)
	for _, r := range rows[1:] {
		if limitReached(len(t.Rows), opt.MaxRows) {
			break
		}
		row := make(record.Record, len(r))
		for i, cell := range r {
			row[i] = record.FromCell(cell)
		}
		t.Append(row)
	}
	return t, nil
}
