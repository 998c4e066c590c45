// Package sink persists cleaned record tables. Every writer is all-or-nothing:
// a failed write leaves any previous output untouched.
package sink

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/recordloom-cli/internal/record"
)

const (
	DefaultTable = "cleaned"
	DefaultSheet = "Cleaned"
)

// Options controls how a table is written.
type Options struct {
	// Delimiter for CSV output. If 0, chosen from the file extension.
	Delimiter rune
	// Table receives the rows in a SQLite database; it is replaced on each run.
	Table string
	// SheetName names the worksheet of an XLSX workbook.
	SheetName string
}

func (o Options) table() string {
	if o.Table == "" {
		return DefaultTable
	}
	return o.Table
}

func (o Options) sheet() string {
	if o.SheetName == "" {
		return DefaultSheet
	}
	return o.SheetName
}

// Writer persists one kind of sink.
type Writer interface {
	CanWrite(path string) bool
	Write(ctx context.Context, path string, t *record.Table, opt Options) error
}

var registry []Writer

// Register adds a writer implementation to the registry.
func Register(w Writer) {
	registry = append(registry, w)
}

// ErrUnsupported indicates an output format is not supported.
var ErrUnsupported = errors.New("unsupported sink format")

// Write selects a writer by file name and persists the table.
func Write(ctx context.Context, path string, t *record.Table, opt Options) error {
	if t == nil {
		return errors.New("nil table")
	}
	for _, w := range registry {
		if w.CanWrite(path) {
			if err := w.Write(ctx, path, t, opt); err != nil {
				return fmt.Errorf("write %s: %w", filepath.Base(path), err)
			}
			return nil
		}
	}
	return fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
}

// native maps a value to the driver-level representation: float64 for
// numbers, text for strings and dates, nil for missing.
func native(v record.Value) any {
	if f, ok := v.Float(); ok {
		return f
	}
	if s, ok := v.Text(); ok {
		return s
	}
	return nil
}

func init() {
	Register(csvWriter{})
	Register(xlsxWriter{})
	Register(sqliteWriter{})
}
