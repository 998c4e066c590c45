package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/KaramelBytes/recordloom-cli/internal/record"
)

type sqliteReader struct{}

func (sqliteReader) CanRead(path string) bool {
	name := strings.ToLower(path)
	for _, ext := range []string{".db", ".sqlite", ".sqlite3"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func (sqliteReader) Read(ctx context.Context, path string, opt Options) (*record.Table, error) {
	db, err := openReadOnly(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if opt.Table != "" {
		return readTable(ctx, db, path, opt.Table, opt.MaxRows)
	}
	q := opt.Query
	if strings.TrimSpace(q) == "" {
		q = DefaultQuery
	}
	return query(ctx, db, path, filepath.Base(path), q, opt.MaxRows)
}

// Tables lists the user tables of a SQLite database in name order.
func Tables(ctx context.Context, path string) ([]string, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}
	db, err := openReadOnly(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return userTables(ctx, db)
}

// ReadTables loads every user table of a SQLite database, for introspection.
func ReadTables(ctx context.Context, path string, maxRows int) ([]*record.Table, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}
	db, err := openReadOnly(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	names, err := userTables(ctx, db)
	if err != nil {
		return nil, err
	}
	out := make([]*record.Table, 0, len(names))
	for _, n := range names {
		t, err := readTable(ctx, db, path, n, maxRows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func openReadOnly(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, &UnavailableError{Source: path, Err: err}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &UnavailableError{Source: path, Err: err}
	}
	return db, nil
}

// OutputsTable lists the tables written by clean; it is bookkeeping and never
// reported as a user table.
const OutputsTable = "recordloom_outputs"

func userTables(ctx context.Context, db *sql.DB) ([]string, error) {
	const q = `SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' AND name <> ? ORDER BY name`
	rows, err := db.QueryContext(ctx, q, OutputsTable)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func readTable(ctx context.Context, db *sql.DB, path, table string, maxRows int) (*record.Table, error) {
	var name string
	err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name = ?`, table).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &UnavailableError{Source: path, Err: fmt.Errorf("table %q not found", table)}
		}
		return nil, fmt.Errorf("lookup table %s: %w", table, err)
	}
	return query(ctx, db, path, name, "SELECT * FROM "+QuoteIdent(name), maxRows)
}

func query(ctx context.Context, db *sql.DB, path, name, q string, maxRows int) (*record.Table, error) {
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return nil, &UnavailableError{Source: path, Err: err}
		}
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	t := record.NewTable(name, cols)
	for rows.Next() {
		if limitReached(len(t.Rows), maxRows) {
			break
		}
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(t.Rows)+1, err)
		}
		row := make(record.Record, len(cols))
		for i, v := range vals {
			row[i] = record.FromAny(v)
		}
		t.Append(row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return t, nil
}

// QuoteIdent quotes a SQLite identifier.
func QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
