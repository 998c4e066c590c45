package normalize

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/recordloom-cli/internal/record"
)

// Options selects which fields are recognized and how they are resolved.
type Options struct {
	// DateColumns run the date cascade independently, each with its own trace.
	DateColumns  []string
	GenderColumn string
	// WeightColumn is read; WeightOutput receives the extracted number.
	WeightColumn  string
	WeightOutput  string
	KeepRawWeight bool
	HeightColumn  string
	// Workers bounds how many columns resolve concurrently.
	Workers int
	// UnresolvedSamples caps the raw values kept per date column for review.
	UnresolvedSamples int
	// Dates overrides the date cascade; nil means DateCascade().
	Dates  Cascade
	Logger *slog.Logger
}

// DefaultOptions matches the staging extract produced from the patients and
// visits tables.
func DefaultOptions() Options {
	return Options{
		DateColumns:       []string{"dob", "visit_date"},
		GenderColumn:      "gender",
		WeightColumn:      "weight_raw",
		WeightOutput:      "weight_kg",
		HeightColumn:      "height_cm",
		Workers:           4,
		UnresolvedSamples: 5,
	}
}

type columnJob struct {
	column string
	run    func(raw []record.Value) columnResult
}

type columnResult struct {
	output  string
	values  []record.Value
	dropRaw bool
	apply   func(*Report)
}

// Clean resolves every recognized field of t and returns a new table plus
// diagnostics. Unrecognized fields pass through unchanged and t is never
// modified. Field-level failures degrade to missing values and are counted in
// the report; the returned error is reserved for schema inconsistencies.
func Clean(t *record.Table, opt Options) (*record.Table, *Report, error) {
	logger := opt.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cascade := opt.Dates
	if cascade == nil {
		cascade = DateCascade()
	}

	jobs := plan(t, opt, cascade)
	raws := make([][]record.Value, len(jobs))
	for i, j := range jobs {
		col, err := t.Column(j.column)
		if err != nil {
			return nil, nil, err
		}
		raws[i] = col
	}

	results := make([]columnResult, len(jobs))
	var g errgroup.Group
	if opt.Workers > 0 {
		g.SetLimit(opt.Workers)
	}
	for i := range jobs {
		g.Go(func() error {
			results[i] = jobs[i].run(raws[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	out := t.Clone()
	rep := &Report{Rows: len(t.Rows)}
	var drops []string
	for i, res := range results {
		var err error
		out, err = out.WithColumn(res.output, res.values)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve %s: %w", jobs[i].column, err)
		}
		if res.dropRaw {
			drops = append(drops, jobs[i].column)
		}
		res.apply(rep)
	}
	for _, c := range drops {
		out = out.Without(c)
	}
	rep.Passthrough = passthrough(t, jobs)
	rep.finalize()

	for _, tr := range rep.Dates {
		for _, s := range tr.Stages {
			logger.Info("date stage", "column", tr.Column, "stage", s.Stage, "attempted", s.Attempted, "resolved", s.Resolved, "remaining", s.Remaining)
		}
	}
	for _, w := range rep.Warnings {
		logger.Warn(w)
	}
	return out, rep, nil
}

func plan(t *record.Table, opt Options, cascade Cascade) []columnJob {
	var jobs []columnJob
	seen := map[string]bool{}
	add := func(name string, run func([]record.Value) columnResult) {
		idx := t.Index(name)
		if name == "" || idx < 0 || seen[t.Columns[idx]] {
			return
		}
		seen[t.Columns[idx]] = true
		jobs = append(jobs, columnJob{column: t.Columns[idx], run: run})
	}

	if c := opt.GenderColumn; c != "" {
		add(c, func(raw []record.Value) columnResult {
			vals := make([]record.Value, len(raw))
			counts := map[string]int{}
			for i, v := range raw {
				code := Gender(v)
				counts[code]++
				vals[i] = record.Str(code)
			}
			return columnResult{output: c, values: vals, apply: func(r *Report) {
				r.Gender = &GenderSummary{Column: c, Counts: counts}
			}}
		})
	}

	if c := opt.WeightColumn; c != "" {
		output := opt.WeightOutput
		if output == "" {
			output = c
		}
		add(c, func(raw []record.Value) columnResult {
			vals := make([]record.Value, len(raw))
			sum := &WeightSummary{Column: c, Output: output}
			units := map[string]int{}
			var order []string
			for i, v := range raw {
				w, unit := Weight(v)
				vals[i] = w
				switch {
				case v.IsMissing():
					sum.Missing++
				case w.IsMissing():
					sum.NoDigits++
				default:
					sum.Extracted++
					if _, ok := units[unit]; !ok {
						order = append(order, unit)
					}
					units[unit]++
				}
			}
			for _, u := range order {
				sum.Units = append(sum.Units, UnitCount{Unit: unitLabel(u), Count: units[u]})
			}
			sort.SliceStable(sum.Units, func(i, j int) bool { return sum.Units[i].Count > sum.Units[j].Count })
			sum.UnitAmbiguity = ambiguousUnits(order)
			return columnResult{
				output:  output,
				values:  vals,
				dropRaw: output != c && !opt.KeepRawWeight,
				apply:   func(r *Report) { r.Weight = sum },
			}
		})
	}

	if c := opt.HeightColumn; c != "" {
		add(c, func(raw []record.Value) columnResult {
			vals := make([]record.Value, len(raw))
			sum := &HeightSummary{Column: c}
			for i, v := range raw {
				vals[i] = Height(v)
				switch {
				case v.IsMissing():
				case vals[i].IsMissing():
					sum.Failed++
				default:
					sum.Coerced++
				}
			}
			return columnResult{output: c, values: vals, apply: func(r *Report) { r.Height = sum }}
		})
	}

	for _, c := range opt.DateColumns {
		add(c, func(raw []record.Value) columnResult {
			vals, tr := ResolveDates(c, raw, cascade, opt.UnresolvedSamples)
			return columnResult{output: c, values: vals, apply: func(r *Report) {
				r.Dates = append(r.Dates, tr)
			}}
		})
	}
	return jobs
}

func passthrough(t *record.Table, jobs []columnJob) []string {
	handled := map[string]bool{}
	for _, j := range jobs {
		handled[j.column] = true
	}
	var out []string
	for _, c := range t.Columns {
		if !handled[c] {
			out = append(out, c)
		}
	}
	return out
}

func unitLabel(u string) string {
	if u == "" {
		return "none"
	}
	return u
}

var kilogramUnits = map[string]bool{"": true, "kg": true, "kgs": true, "kilo": true, "kilos": true, "kilograms": true}

func ambiguousUnits(units []string) bool {
	for _, u := range units {
		if !kilogramUnits[u] {
			return true
		}
	}
	return false
}
