package sink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/KaramelBytes/recordloom-cli/internal/record"
	"github.com/KaramelBytes/recordloom-cli/internal/source"
)

// ErrSourceTable is returned when the output table already exists in the
// database and was not written by a previous clean.
var ErrSourceTable = errors.New("output table would replace a source table")

type sqliteWriter struct{}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func hasTable(ctx context.Context, q queryer, table string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND lower(name) = lower(?)`, table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("lookup table %s: %w", table, err)
	}
	return n > 0, nil
}

// checkTarget refuses an existing table unless it is recorded in the outputs
// table. Names compare case-insensitively, as SQLite does.
func checkTarget(ctx context.Context, q queryer, table string) error {
	if strings.EqualFold(table, source.OutputsTable) {
		return fmt.Errorf("%w: %q is reserved", ErrSourceTable, table)
	}
	exists, err := hasTable(ctx, q, table)
	if err != nil || !exists {
		return err
	}
	tracked, err := hasTable(ctx, q, source.OutputsTable)
	if err != nil {
		return err
	}
	if tracked {
		var n int
		err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+source.QuoteIdent(source.OutputsTable)+" WHERE name = lower(?)", table).Scan(&n)
		if err != nil {
			return fmt.Errorf("lookup outputs: %w", err)
		}
		if n > 0 {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrSourceTable, table)
}

// CheckTable reports ErrSourceTable when writing table into the database at
// path would replace a table clean did not create. A missing file is fine.
func CheckTable(ctx context.Context, path, table string) error {
	if table == "" {
		table = DefaultTable
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	return checkTarget(ctx, db, table)
}

func (sqliteWriter) CanWrite(path string) bool {
	name := strings.ToLower(path)
	for _, ext := range []string{".db", ".sqlite", ".sqlite3"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Write replaces the output table inside one transaction. Columns holding only
// numbers are declared REAL; everything else is TEXT.
func (sqliteWriter) Write(ctx context.Context, path string, t *record.Table, opt Options) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := checkTarget(ctx, tx, opt.table()); err != nil {
		return err
	}
	name := source.QuoteIdent(opt.table())
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return fmt.Errorf("drop %s: %w", opt.table(), err)
	}
	defs := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = source.QuoteIdent(c) + " " + affinity(t, i)
		marks[i] = "?"
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("create %s: %w", opt.table(), err)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", name, strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(t.Columns))
	for r, row := range t.Rows {
		for i := range args {
			args[i] = native(row[i])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", r+1, err)
		}
	}
	outputs := source.QuoteIdent(source.OutputsTable)
	if _, err := tx.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS "+outputs+" (name TEXT PRIMARY KEY)"); err != nil {
		return fmt.Errorf("create %s: %w", source.OutputsTable, err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO "+outputs+" VALUES (lower(?))", opt.table()); err != nil {
		return fmt.Errorf("record output %s: %w", opt.table(), err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func affinity(t *record.Table, col int) string {
	seen := false
	for _, row := range t.Rows {
		switch row[col].Kind() {
		case record.Missing:
		case record.Number:
			seen = true
		default:
			return "TEXT"
		}
	}
	if seen {
		return "REAL"
	}
	return "TEXT"
}
