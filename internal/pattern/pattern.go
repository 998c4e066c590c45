// Package pattern fingerprints raw strings by character class and profiles
// which value shapes a baseline date parser fails to read.
package pattern

import (
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
)

// Generic maps digits to 'D', letters to 'A', whitespace to '_' and keeps
// every other rune literally: "Jan 01, 2023" becomes "AAA_DD,_DDDD".
func Generic(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			b.WriteByte('D')
		case unicode.IsLetter(r):
			b.WriteByte('A')
		case unicode.IsSpace(r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseFunc reports whether a raw value is understood by a parser.
type ParseFunc func(string) bool

// Baseline is the permissive date rule the profiler measures against: the
// general parser with its default month-first reading of numeric dates.
func Baseline(s string) bool {
	_, err := dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
	return err == nil
}

// Entry is one histogram bucket.
type Entry struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Count   int    `json:"count" yaml:"count"`
	// Example is the first raw value seen with this shape.
	Example string `json:"example" yaml:"example"`
}

// Histogram lists failing shapes by count descending, first-seen order on ties.
type Histogram []Entry

// Failed is the total number of failing values across all buckets.
func (h Histogram) Failed() int {
	n := 0
	for _, e := range h {
		n += e.Count
	}
	return n
}

// Result is the outcome of profiling one column.
type Result struct {
	Column   string    `json:"column" yaml:"column"`
	Present  int       `json:"present" yaml:"present"`
	Patterns Histogram `json:"patterns" yaml:"patterns"`
}
