package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/recordloom-cli/internal/record"
)

func day(y int, m time.Month, d int) record.Value {
	return record.DateOf(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func TestDateCascade_Examples(t *testing.T) {
	tests := []struct {
		name string
		in   record.Value
		want record.Value
	}{
		{name: "ambiguous slash reads day first", in: record.Str("05/03/2020"), want: day(2020, time.March, 5)},
		{name: "iso", in: record.Str("2020-01-31"), want: day(2020, time.January, 31)},
		{name: "day above twelve", in: record.Str("31/1/2020"), want: day(2020, time.January, 31)},
		{name: "month first fallback", in: record.Str("1/31/2020"), want: day(2020, time.January, 31)},
		{name: "missing stays missing", in: record.Null(), want: record.Null()},
		{name: "garbage becomes missing", in: record.Str("not recorded"), want: record.Null()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vals, _ := ResolveDates("dob", []record.Value{tt.in}, DateCascade(), 5)
			require.Len(t, vals, 1)
			assert.True(t, tt.want.Equal(vals[0]), "got %v want %v", vals[0], tt.want)
		})
	}
}

func TestStrictStages(t *testing.T) {
	iso := strictLayout(layoutISO)
	dayFirst := strictLayout(layoutDayFirstSlash)
	monthFirst := strictLayout(layoutMonthFirstSlash)

	assert.True(t, iso("2020-01-31").Value().Equal(day(2020, time.January, 31)))
	assert.False(t, iso("2020-01-31 junk").IsResolved())
	assert.True(t, dayFirst("05/03/2020").Value().Equal(day(2020, time.March, 5)))
	assert.True(t, dayFirst("5/3/2020").Value().Equal(day(2020, time.March, 5)))
	assert.False(t, dayFirst("1/31/2020").IsResolved())
	assert.True(t, monthFirst("05/03/2020").Value().Equal(day(2020, time.May, 3)))
	assert.True(t, monthFirst("1/31/2020").Value().Equal(day(2020, time.January, 31)))
}

func TestDateCascade_StageOrderDoesNotChangeISO(t *testing.T) {
	raw := []record.Value{record.Str("2020-01-31")}
	forward := DateCascade()
	reversed := make(Cascade, len(forward))
	for i, s := range forward {
		reversed[len(forward)-1-i] = s
	}
	a, _ := forward.Run(raw)
	b, _ := reversed.Run(raw)
	assert.True(t, a[0].Value().Equal(b[0].Value()))
	assert.True(t, a[0].Value().Equal(day(2020, time.January, 31)))
}

func TestDateCascade_ResolvedSlotsNeverChange(t *testing.T) {
	raw := []record.Value{
		record.Str("05/03/2020"),
		record.Str("2020-01-31"),
		record.Str("1/31/2020"),
		record.Str("13/12/1999"),
		record.Null(),
		record.Str("unknown"),
	}
	c := DateCascade()
	final, _ := c.Run(raw)

	state := Start(raw)
	for _, s := range c {
		state, _ = s.Apply(raw, state)
		for i, o := range state {
			if o.IsResolved() {
				assert.True(t, final[i].IsResolved())
				assert.True(t, o.Value().Equal(final[i].Value()), "slot %d changed after %s", i, s.Name)
			}
		}
	}
}

func TestResolveDates_Trace(t *testing.T) {
	raw := []record.Value{record.Str("2020-01-31"), record.Null(), record.Str("unknown"), record.Str("n/a")}
	vals, tr := ResolveDates("dob", raw, DateCascade(), 1)

	require.Len(t, vals, 4)
	assert.Equal(t, "dob", tr.Column)
	assert.Equal(t, 3, tr.Present)
	assert.Equal(t, 2, tr.Unresolved)
	assert.Equal(t, []string{"unknown"}, tr.Samples)
	require.Len(t, tr.Stages, 4)
	assert.Equal(t, StageInferredDayFirst, tr.Stages[0].Stage)
	assert.Equal(t, 3, tr.Stages[0].Attempted)
	last := tr.Stages[len(tr.Stages)-1]
	assert.Equal(t, StageMonthFirstSlash, last.Stage)
	assert.Equal(t, 2, last.Remaining)
}
