package pattern

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/recordloom-cli/internal/record"
)

// Profile runs the Baseline parser over a column.
func Profile(column []record.Value) Histogram {
	return ProfileWith(column, Baseline)
}

// ProfileWith buckets the generic shape of every present value that parse
// rejects. Missing values are skipped; the input is never modified. A column
// without failures yields an empty (nil) histogram.
func ProfileWith(column []record.Value, parse ParseFunc) Histogram {
	var out Histogram
	pos := map[string]int{}
	for _, v := range column {
		s, ok := v.Text()
		if !ok {
			continue
		}
		if parse(s) {
			continue
		}
		p := Generic(s)
		if i, seen := pos[p]; seen {
			out[i].Count++
			continue
		}
		pos[p] = len(out)
		out = append(out, Entry{Pattern: p, Count: 1, Example: s})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// ProfileTable profiles a named column of a table.
func ProfileTable(t *record.Table, column string) (*Result, error) {
	col, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	res := &Result{Column: t.Columns[t.Index(column)]}
	for _, v := range col {
		if !v.IsMissing() {
			res.Present++
		}
	}
	res.Patterns = Profile(col)
	return res, nil
}

// Markdown renders the result in the same bracketed-section style as the
// cleaning diagnostics.
func (r *Result) Markdown() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[PATTERNS: %s]\n", r.Column))
	if len(r.Patterns) == 0 {
		b.WriteString(fmt.Sprintf("No parsing failures detected in %s\n", r.Column))
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Analyzing %d failed patterns for '%s' (%d present values):\n", r.Patterns.Failed(), r.Column, r.Present))
	for _, e := range r.Patterns {
		b.WriteString(fmt.Sprintf("- Pattern: %-20s | Count: %d | e.g. %s\n", e.Pattern, e.Count, e.Example))
	}
	return b.String()
}
