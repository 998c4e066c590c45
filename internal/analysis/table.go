// Package analysis profiles the schema of a record table: inferred kind,
// missingness, cardinality and basic statistics per column.
package analysis

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/recordloom-cli/internal/pattern"
	"github.com/KaramelBytes/recordloom-cli/internal/record"
)

// Options controls schema analysis.
type Options struct {
	// MaxRows limits rows processed; 0 means unlimited.
	MaxRows int
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// TopValues caps the categorical values listed per column.
	TopValues int
}

// DefaultOptions returns reasonable defaults for schema analysis.
func DefaultOptions() Options {
	return Options{MaxRows: 100000, SampleRows: 5, TopValues: 8}
}

// Kinds a column may be inferred as.
const (
	KindNumeric     = "numeric"
	KindDatetime    = "datetime"
	KindCategorical = "categorical"
	KindText        = "text"
	KindEmpty       = "empty"
)

// Report is a markdown-friendly schema analysis of one table.
type Report struct {
	Name      string          `json:"name" yaml:"name"`
	Rows      int             `json:"rows" yaml:"rows"`
	Processed int             `json:"processed" yaml:"processed"`
	Cols      []ColumnSummary `json:"columns" yaml:"columns"`
	Samples   [][]string      `json:"samples,omitempty" yaml:"samples,omitempty"`
	Warnings  []string        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name    string `json:"name" yaml:"name"`
	Kind    string `json:"kind" yaml:"kind"`
	Unit    string `json:"unit,omitempty" yaml:"unit,omitempty"`
	NonNull int    `json:"non_null" yaml:"non_null"`
	Missing int    `json:"missing" yaml:"missing"`
	Unique  int    `json:"unique" yaml:"unique"`
	// Per-kind counts of present values.
	Numeric  int `json:"numeric_values" yaml:"numeric_values"`
	Datetime int `json:"datetime_values" yaml:"datetime_values"`
	Text     int `json:"text_values" yaml:"text_values"`
	// Numeric stats
	Min  float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max  float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Mean float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	Std  float64 `json:"std,omitempty" yaml:"std,omitempty"`
	// Categorical top values
	TopValues    []CategoryCount `json:"top_values,omitempty" yaml:"top_values,omitempty"`
	ExampleTexts []string        `json:"examples,omitempty" yaml:"examples,omitempty"`
}

type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// MissingPct is the share of missing cells among processed rows.
func (c ColumnSummary) MissingPct() float64 {
	total := c.NonNull + c.Missing
	if total == 0 {
		return 0
	}
	return float64(c.Missing) * 100.0 / float64(total)
}

// Mixed reports whether present values fall into more than one kind.
func (c ColumnSummary) Mixed() bool {
	kinds := 0
	for _, n := range []int{c.Numeric, c.Datetime, c.Text} {
		if n > 0 {
			kinds++
		}
	}
	return kinds > 1
}

type colAcc struct {
	// numeric stats via Welford
	n      int
	mean   float64
	m2     float64
	min    float64
	max    float64
	numCnt int
	dtCnt  int
	txtCnt int
	miss   int
	seen   map[string]int
	exText []string
}

// Analyze profiles every column of t.
func Analyze(t *record.Table, opt Options) *Report {
	rep := &Report{Name: t.Name, Rows: len(t.Rows)}
	ncol := len(t.Columns)
	if ncol == 0 {
		return rep
	}
	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}
	topN := opt.TopValues
	if topN <= 0 {
		topN = 8
	}

	cols := make([]*colAcc, ncol)
	for i := range cols {
		cols[i] = &colAcc{min: math.Inf(1), max: math.Inf(-1), seen: make(map[string]int)}
	}
	for _, row := range t.Rows {
		if rep.Processed >= maxRows {
			break
		}
		rep.Processed++
		if len(rep.Samples) < sampleRows {
			rep.Samples = append(rep.Samples, row.Strings())
		}
		for j, v := range row {
			cols[j].add(v)
		}
	}

	rep.Cols = make([]ColumnSummary, 0, ncol)
	for j, c := range cols {
		name := t.Columns[j]
		_, unit := splitUnits(name)
		s := ColumnSummary{
			Name: name, Unit: unit,
			NonNull: c.numCnt + c.dtCnt + c.txtCnt, Missing: c.miss, Unique: len(c.seen),
			Numeric: c.numCnt, Datetime: c.dtCnt, Text: c.txtCnt,
		}
		// Decide kind by predominant parsed type
		switch {
		case s.NonNull == 0:
			s.Kind = KindEmpty
		case c.numCnt >= c.dtCnt && c.numCnt >= c.txtCnt:
			s.Kind = KindNumeric
			s.Min, s.Max, s.Mean = c.min, c.max, c.mean
			if c.n > 1 {
				s.Std = math.Sqrt(c.m2 / float64(c.n-1))
			}
		case c.dtCnt >= c.txtCnt:
			s.Kind = KindDatetime
		case len(c.seen) < s.NonNull:
			s.Kind = KindCategorical
			s.TopValues = topValues(c.seen, topN)
		default:
			s.Kind = KindText
			s.ExampleTexts = c.exText
		}
		if s.Mixed() {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s mixes value kinds (numeric %d, datetime %d, text %d)", name, c.numCnt, c.dtCnt, c.txtCnt))
		}
		rep.Cols = append(rep.Cols, s)
	}
	if rep.Processed < rep.Rows {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", rep.Processed, rep.Rows))
	}
	return rep
}

// AnalyzeAll profiles several tables, e.g. every table of a database.
func AnalyzeAll(tables []*record.Table, opt Options) []*Report {
	out := make([]*Report, len(tables))
	for i, t := range tables {
		out[i] = Analyze(t, opt)
	}
	return out
}

func (c *colAcc) add(v record.Value) {
	if v.IsMissing() {
		c.miss++
		return
	}
	text, _ := v.Text()
	if len(c.seen) <= 10000 { // guard memory
		c.seen[text]++
	}
	x, isNum := v.Float()
	if !isNum && v.Kind() == record.String {
		x, isNum = parseNumeric(text)
	}
	if isNum {
		c.numCnt++
		// Welford update
		c.n++
		if x < c.min {
			c.min = x
		}
		if x > c.max {
			c.max = x
		}
		delta := x - c.mean
		c.mean += delta / float64(c.n)
		c.m2 += delta * (x - c.mean)
		return
	}
	if v.Kind() == record.Date || pattern.Baseline(text) {
		c.dtCnt++
		return
	}
	c.txtCnt++
	if len(c.exText) < 3 {
		c.exText = append(c.exText, text)
	}
}

func topValues(seen map[string]int, n int) []CategoryCount {
	tops := make([]CategoryCount, 0, len(seen))
	for k, v := range seen {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > n {
		tops = tops[:n]
	}
	return tops
}

func parseNumeric(s string) (float64, bool) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
	raw = strings.TrimSuffix(raw, "%")
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", r.Name))
	}
	if r.Processed > 0 && r.Processed < r.Rows {
		b.WriteString(fmt.Sprintf("Rows: ~%d (processed %d)\n", r.Rows, r.Processed))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	}
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		name := safeName(c.Name)
		if c.Unit != "" {
			name = fmt.Sprintf("%s [%s]", name, c.Unit)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%, unique %d)", name, c.Kind, c.NonNull, c.MissingPct(), c.Unique))
		switch c.Kind {
		case KindNumeric:
			b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
		case KindCategorical:
			if len(c.TopValues) > 0 {
				b.WriteString("; top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
			}
		case KindText:
			if len(c.ExampleTexts) > 0 {
				b.WriteString("; e.g. ")
				for i, ex := range c.ExampleTexts {
					if i > 0 {
						b.WriteString(" | ")
					}
					b.WriteString(safeVal(ex))
				}
			}
		}
		b.WriteString("\n")
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n| ")
		for i := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Cols {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\u00A0", " "), "|", "/") }

var unitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`),  // e.g., Weight (kg)
	regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), // e.g., Height [cm]
	regexp.MustCompile(`(?i)^(.*?)[_\s-]+(kg|lbs?|g|cm|mm|m|in|mmhg|bpm|%)$`),
}

func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, re := range unitPatterns {
		if m := re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[2])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}
