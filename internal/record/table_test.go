package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	t := NewTable("extract", []string{"patient_id", "gender", "weight_raw"})
	t.Append(Record{Num(1001), Str("m"), Str("70kg")})
	t.Append(Record{Num(1002), Null(), Str("154 lbs")})
	return t
}

func TestTable_ColumnPreservesOrder(t *testing.T) {
	tbl := sampleTable()
	col, err := tbl.Column("GENDER")
	require.NoError(t, err)
	require.Len(t, col, 2)
	assert.True(t, col[0].Equal(Str("m")))
	assert.True(t, col[1].IsMissing())

	_, err = tbl.Column("dob")
	require.Error(t, err)
}

func TestTable_WithColumnDoesNotMutate(t *testing.T) {
	tbl := sampleTable()
	out, err := tbl.WithColumn("gender", []Value{Str("M"), Str("Unknown")})
	require.NoError(t, err)

	assert.Equal(t, "m", tbl.Get(0, "gender").String())
	assert.Equal(t, "M", out.Get(0, "gender").String())

	appended, err := out.WithColumn("weight_kg", []Value{Num(70), Num(154)})
	require.NoError(t, err)
	assert.Equal(t, []string{"patient_id", "gender", "weight_raw", "weight_kg"}, appended.Columns)
	assert.Len(t, out.Columns, 3)

	_, err = tbl.WithColumn("x", []Value{Null()})
	require.Error(t, err)
}

func TestTable_Without(t *testing.T) {
	tbl := sampleTable()
	out := tbl.Without("weight_raw")
	assert.Equal(t, []string{"patient_id", "gender"}, out.Columns)
	assert.Len(t, out.Rows[1], 2)
	assert.Len(t, tbl.Columns, 3)
}

func TestValue_Text(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want string
		ok   bool
	}{
		{name: "missing", in: Null(), want: "", ok: false},
		{name: "string", in: Str("F "), want: "F ", ok: true},
		{name: "integer number", in: Num(70), want: "70", ok: true},
		{name: "decimal number", in: Num(70.5), want: "70.5", ok: true},
		{name: "date", in: DateOf(time.Date(2020, 3, 5, 13, 0, 0, 0, time.UTC)), want: "2020-03-05", ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.in.Text()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromAny(t *testing.T) {
	assert.True(t, FromAny(nil).IsMissing())
	assert.True(t, FromAny("   ").IsMissing())
	assert.Equal(t, Number, FromAny(int64(42)).Kind())
	assert.Equal(t, String, FromAny([]byte("x")).Kind())
	assert.True(t, FromCell("").IsMissing())
}
