package normalize

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/KaramelBytes/recordloom-cli/internal/record"
)

// Stage names, in default priority order.
const (
	StageInferredDayFirst = "inferred_day_first"
	StageISOStrict        = "iso_strict"
	StageDayFirstSlash    = "day_first_slash"
	StageMonthFirstSlash  = "month_first_slash"
)

// Strict layouts accept one- or two-digit day and month fields.
const (
	layoutISO             = "2006-1-2"
	layoutDayFirstSlash   = "2/1/2006"
	layoutMonthFirstSlash = "1/2/2006"
)

// DateCascade is the default date cascade. The inferred stage reads ambiguous
// numeric dates day-first, so "05/03/2020" is 5 March; the strict stages pick
// up whatever the general parser rejected.
func DateCascade() Cascade {
	return Cascade{
		{Name: StageInferredDayFirst, Parse: inferDayFirst},
		{Name: StageISOStrict, Applies: hasRune('-'), Parse: strictLayout(layoutISO)},
		{Name: StageDayFirstSlash, Applies: hasRune('/'), Parse: strictLayout(layoutDayFirstSlash)},
		{Name: StageMonthFirstSlash, Applies: hasRune('/'), Parse: strictLayout(layoutMonthFirstSlash)},
	}
}

func inferDayFirst(raw string) Outcome {
	t, err := dateparse.ParseIn(strings.TrimSpace(raw), time.UTC, dateparse.PreferMonthFirst(false))
	if err != nil {
		return Unresolved
	}
	return Resolved(record.DateOf(t))
}

func strictLayout(layout string) func(string) Outcome {
	return func(raw string) Outcome {
		t, err := time.Parse(layout, strings.TrimSpace(raw))
		if err != nil {
			return Unresolved
		}
		return Resolved(record.DateOf(t))
	}
}

func hasRune(r rune) func(string) bool {
	return func(s string) bool { return strings.ContainsRune(s, r) }
}

// DateTrace is the audit record for one date column.
type DateTrace struct {
	Column     string        `json:"column" yaml:"column"`
	Present    int           `json:"present" yaml:"present"`
	Stages     []StageReport `json:"stages" yaml:"stages"`
	Unresolved int           `json:"unresolved" yaml:"unresolved"`
	Samples    []string      `json:"unresolved_samples,omitempty" yaml:"unresolved_samples,omitempty"`
}

// ResolveDates runs the cascade over a raw column and returns the canonical
// column plus its trace.
func ResolveDates(column string, raw []record.Value, c Cascade, sampleLimit int) ([]record.Value, DateTrace) {
	state, stages := c.Run(raw)
	tr := DateTrace{Column: column, Stages: stages, Unresolved: countUnresolved(state)}
	for _, v := range raw {
		if !v.IsMissing() {
			tr.Present++
		}
	}
	tr.Samples = UnresolvedSamples(raw, state, sampleLimit)
	return Values(state), tr
}
