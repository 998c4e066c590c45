package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/recordloom-cli/internal/record"
)

func extract() *record.Table {
	t := record.NewTable("raw_extract.csv", []string{"patient_id", "dob", "gender", "height_cm", "notes"})
	rows := [][]string{
		{"1001", "2020-01-15", "Male", "172", "Patient 1 - Follow-up required."},
		{"1002", "1975-12-01", "f", "165", "Patient 2 - Routine checkup."},
		{"1003", "unknown", "Male", "180.5", ""},
		{"1004", "", "", "158", "Patient 4 - Referred | cardiology"},
	}
	for _, r := range rows {
		rec := make(record.Record, len(r))
		for i, c := range r {
			rec[i] = record.FromCell(c)
		}
		t.Append(rec)
	}
	return t
}

func column(t *testing.T, rep *Report, name string) ColumnSummary {
	t.Helper()
	for _, c := range rep.Cols {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("column %s not in report", name)
	return ColumnSummary{}
}

func TestAnalyze(t *testing.T) {
	rep := Analyze(extract(), DefaultOptions())
	require.Len(t, rep.Cols, 5)
	assert.Equal(t, 4, rep.Rows)
	assert.Equal(t, 4, rep.Processed)
	assert.Len(t, rep.Samples, 4)

	id := column(t, rep, "patient_id")
	assert.Equal(t, KindNumeric, id.Kind)
	assert.Equal(t, 1001.0, id.Min)
	assert.Equal(t, 1004.0, id.Max)
	assert.InDelta(t, 1002.5, id.Mean, 1e-9)
	assert.Equal(t, 4, id.Unique)

	h := column(t, rep, "height_cm")
	assert.Equal(t, "cm", h.Unit)
	assert.Equal(t, KindNumeric, h.Kind)
	assert.Equal(t, 180.5, h.Max)

	g := column(t, rep, "gender")
	assert.Equal(t, KindCategorical, g.Kind)
	assert.Equal(t, 3, g.NonNull)
	assert.Equal(t, 1, g.Missing)
	assert.InDelta(t, 25.0, g.MissingPct(), 1e-9)
	require.NotEmpty(t, g.TopValues)
	assert.Equal(t, CategoryCount{Value: "Male", Count: 2}, g.TopValues[0])

	dob := column(t, rep, "dob")
	assert.Equal(t, KindDatetime, dob.Kind)
	assert.True(t, dob.Mixed())
	assert.Equal(t, 1, dob.Text)

	notes := column(t, rep, "notes")
	assert.Equal(t, KindText, notes.Kind)
	assert.Len(t, notes.ExampleTexts, 3)

	require.NotEmpty(t, rep.Warnings)
	assert.Contains(t, rep.Warnings[0], "dob mixes value kinds")
}

func TestAnalyze_NativeKindsAndEmpty(t *testing.T) {
	tbl := record.NewTable("cleaned", []string{"weight_kg", "blank"})
	tbl.Append(record.Record{record.Num(70), record.Null()})
	tbl.Append(record.Record{record.Num(72), record.Null()})
	rep := Analyze(tbl, Options{})

	w := column(t, rep, "weight_kg")
	assert.Equal(t, KindNumeric, w.Kind)
	assert.Equal(t, "kg", w.Unit)
	assert.InDelta(t, 1.41421356, w.Std, 1e-6)

	assert.Equal(t, KindEmpty, column(t, rep, "blank").Kind)
	assert.Empty(t, rep.Warnings)
}

func TestAnalyze_MaxRows(t *testing.T) {
	rep := Analyze(extract(), Options{MaxRows: 2, SampleRows: 1})
	assert.Equal(t, 2, rep.Processed)
	assert.Len(t, rep.Samples, 1)
	assert.Contains(t, rep.Warnings, "processed only 2/4 rows due to MaxRows")
}

func TestAnalyzeAll(t *testing.T) {
	reps := AnalyzeAll([]*record.Table{extract(), record.NewTable("visits", nil)}, DefaultOptions())
	require.Len(t, reps, 2)
	assert.Equal(t, "visits", reps[1].Name)
	assert.Empty(t, reps[1].Cols)
}

func TestMarkdown(t *testing.T) {
	md := Analyze(extract(), DefaultOptions()).Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"Source: raw_extract.csv",
		"Rows: 4",
		"[SCHEMA]",
		"- height_cm [cm]: numeric",
		"- gender: categorical (non-null 3, missing 25.0%, unique 2); top: Male(2), f(1)",
		"[HEAD AND SAMPLE ROWS]",
		"Referred / cardiology",
		"[NOTES]",
	} {
		assert.True(t, strings.Contains(md, want), "missing %q in:\n%s", want, md)
	}
}

func TestSplitUnits(t *testing.T) {
	cases := []struct{ in, name, unit string }{
		{"height_cm", "height", "cm"},
		{"Weight (kg)", "Weight", "kg"},
		{"Height [cm]", "Height", "cm"},
		{"weight_raw", "weight_raw", ""},
		{"gender", "gender", ""},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			n, u := splitUnits(tc.in)
			assert.Equal(t, tc.name, n)
			assert.Equal(t, tc.unit, u)
		})
	}
}
