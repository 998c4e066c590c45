// Package source loads raw tabular extracts (CSV/TSV, XLSX workbooks and
// SQLite databases) into record tables.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/recordloom-cli/internal/record"
)

// DefaultQuery joins visits to patients the same way the staging extract is built.
const DefaultQuery = `SELECT p.patient_id, p.dob, p.gender, v.weight_raw, v.height_cm, v.notes
FROM visits v
LEFT JOIN patients p ON v.patient_id = p.patient_id`

// Options controls how a source is read.
type Options struct {
	// Delimiter for CSV. If 0, chosen from the file extension.
	Delimiter rune
	// MaxRows limits records read; 0 means unlimited.
	MaxRows int
	// SQLite: Table reads one table as-is; otherwise Query runs (DefaultQuery when empty).
	Table string
	Query string
	// XLSX: SheetName wins over the 1-based SheetIndex.
	SheetName  string
	SheetIndex int
}

// Reader loads one kind of source.
type Reader interface {
	CanRead(path string) bool
	Read(ctx context.Context, path string, opt Options) (*record.Table, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// Read selects a reader by file name and loads the table. A missing file or
// table yields an *UnavailableError; nothing is normalized in that case.
func Read(ctx context.Context, path string, opt Options) (*record.Table, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}
	for _, r := range registry {
		if r.CanRead(path) {
			return r.Read(ctx, path, opt)
		}
	}
	return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &UnavailableError{Source: path, Err: err}
	}
	if info.IsDir() {
		return &UnavailableError{Source: path, Err: errors.New("is a directory")}
	}
	return nil
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
	Register(sqliteReader{})
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported source format")

// ErrUnavailable matches any *UnavailableError via errors.Is.
var ErrUnavailable = errors.New("source unavailable")

// UnavailableError reports that the input collaborator could not supply data,
// e.g. a missing file, sheet or table. It aborts the run.
type UnavailableError struct {
	Source string
	Err    error
}

func (e *UnavailableError) Error() string {
	if e == nil {
		return ErrUnavailable.Error()
	}
	return fmt.Sprintf("source unavailable: %s: %v", e.Source, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

func limitReached(n, max int) bool { return max > 0 && n >= max }
