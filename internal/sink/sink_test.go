package sink

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/recordloom-cli/internal/record"
	"github.com/KaramelBytes/recordloom-cli/internal/source"
)

func cleanedTable() *record.Table {
	t := record.NewTable("cleaned", []string{"patient_id", "dob", "gender", "weight_kg"})
	t.Append(record.Record{record.Num(1001), record.DateOf(time.Date(1980, 3, 5, 0, 0, 0, 0, time.UTC)), record.Str("M"), record.Num(70)})
	t.Append(record.Record{record.Num(1002), record.Null(), record.Str("Unknown"), record.Num(72.5)})
	t.Append(record.Record{record.Num(1003), record.DateOf(time.Date(1975, 12, 1, 0, 0, 0, 0, time.UTC)), record.Str("F"), record.Null()})
	return t
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, cleanedTable(), ','))
	want := "patient_id,dob,gender,weight_kg\n" +
		"1001,1980-03-05,M,70\n" +
		"1002,,Unknown,72.5\n" +
		"1003,1975-12-01,F,\n"
	assert.Equal(t, want, buf.String())
}

func TestWrite_CSVFileAtomic(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out", "cleaned.csv")
	require.NoError(t, Write(context.Background(), p, cleanedTable(), Options{}))

	_, err := os.Stat(p + ".tmp")
	assert.True(t, os.IsNotExist(err))

	back, err := source.Read(context.Background(), p, source.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"patient_id", "dob", "gender", "weight_kg"}, back.Columns)
	assert.Equal(t, "1980-03-05", back.Get(0, "dob").String())
	assert.True(t, back.Get(1, "dob").IsMissing())
}

func TestWrite_SQLiteReplacesTable(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "hospital.db")

	first := cleanedTable()
	require.NoError(t, Write(ctx, p, first, Options{}))
	// a second run replaces rather than appends
	require.NoError(t, Write(ctx, p, first, Options{}))

	back, err := source.Read(ctx, p, source.Options{Table: DefaultTable})
	require.NoError(t, err)
	require.Len(t, back.Rows, 3)
	w, ok := back.Get(1, "weight_kg").Float()
	require.True(t, ok)
	assert.Equal(t, 72.5, w)
	assert.Equal(t, "1980-03-05", back.Get(0, "dob").String())
	assert.True(t, back.Get(2, "weight_kg").IsMissing())

	names, err := source.Tables(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, []string{"cleaned"}, names)
}

func TestWrite_SQLiteKeepsSourceTables(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "hospital.db")
	db, err := sql.Open("sqlite", p)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE visits (visit_id INTEGER, weight_raw TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO visits VALUES (1001, '70kg'), (1002, '154 lbs')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	for _, table := range []string{"visits", "VISITS", source.OutputsTable} {
		assert.ErrorIs(t, CheckTable(ctx, p, table), ErrSourceTable, table)
		assert.ErrorIs(t, Write(ctx, p, cleanedTable(), Options{Table: table}), ErrSourceTable, table)
	}
	back, err := source.Read(ctx, p, source.Options{Table: "visits"})
	require.NoError(t, err)
	assert.Equal(t, []string{"visit_id", "weight_raw"}, back.Columns)
	assert.Len(t, back.Rows, 2)

	// tables written by an earlier clean stay replaceable, whatever the case
	require.NoError(t, CheckTable(ctx, p, "Cleaned"))
	require.NoError(t, Write(ctx, p, cleanedTable(), Options{Table: "Cleaned"}))
	require.NoError(t, CheckTable(ctx, p, "cleaned"))
	require.NoError(t, Write(ctx, p, cleanedTable(), Options{}))
	assert.NoError(t, CheckTable(ctx, filepath.Join(t.TempDir(), "new.db"), "visits"))

	names, err := source.Tables(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, []string{"cleaned", "visits"}, names)
}

func TestWrite_XLSX(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "cleaned.xlsx")
	require.NoError(t, Write(ctx, p, cleanedTable(), Options{SheetName: "Visits"}))

	back, err := source.Read(ctx, p, source.Options{SheetName: "Visits"})
	require.NoError(t, err)
	assert.Equal(t, []string{"patient_id", "dob", "gender", "weight_kg"}, back.Columns)
	require.Len(t, back.Rows, 3)
	assert.Equal(t, "M", back.Get(0, "gender").String())
	assert.Equal(t, "1975-12-01", back.Get(2, "dob").String())
	assert.True(t, back.Get(1, "dob").IsMissing())
}

func TestWrite_Unsupported(t *testing.T) {
	err := Write(context.Background(), filepath.Join(t.TempDir(), "out.parquet"), cleanedTable(), Options{})
	assert.True(t, errors.Is(err, ErrUnsupported))

	err = Write(context.Background(), "out.csv", nil, Options{})
	assert.Error(t, err)
}
