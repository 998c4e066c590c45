// Package normalize reconciles raw health-record fields into canonical values:
// dates through an ordered cascade of parse stages, gender codes through a
// single categorical rule, and weights through numeric extraction.
package normalize

import (
	"strings"

	"github.com/KaramelBytes/recordloom-cli/internal/record"
)

// Outcome is the parse state of one slot: Unresolved, or Resolved with a
// canonical value. A resolved slot may hold a missing value (missing input).
type Outcome struct {
	resolved bool
	value    record.Value
}

// Unresolved is the initial, non-terminal state.
var Unresolved = Outcome{}

// Resolved wraps a canonical value; it is terminal.
func Resolved(v record.Value) Outcome { return Outcome{resolved: true, value: v} }

func (o Outcome) IsResolved() bool { return o.resolved }

// Value returns the canonical value, or missing while unresolved.
func (o Outcome) Value() record.Value {
	if !o.resolved {
		return record.Null()
	}
	return o.value
}

// Stage is one named interpretation rule of a cascade. Applies narrows which
// raw strings the stage will look at (nil means all); Parse produces the
// outcome for a single raw string.
type Stage struct {
	Name    string
	Applies func(raw string) bool
	Parse   func(raw string) Outcome
}

// StageReport is the audit line emitted after a stage runs.
type StageReport struct {
	Stage     string `json:"stage" yaml:"stage"`
	Attempted int    `json:"attempted" yaml:"attempted"`
	Resolved  int    `json:"resolved" yaml:"resolved"`
	Remaining int    `json:"remaining" yaml:"remaining"`
}

// Start builds the initial parse state: missing input is resolved to missing,
// every present value starts unresolved.
func Start(raw []record.Value) []Outcome {
	out := make([]Outcome, len(raw))
	for i, v := range raw {
		if v.IsMissing() {
			out[i] = Resolved(record.Null())
		}
	}
	return out
}

// Apply runs one stage over the unresolved slots of prior and returns a new
// state. Resolved slots are copied through untouched.
func (s Stage) Apply(raw []record.Value, prior []Outcome) ([]Outcome, StageReport) {
	next := make([]Outcome, len(prior))
	copy(next, prior)
	rep := StageReport{Stage: s.Name}
	for i, o := range prior {
		if o.resolved {
			continue
		}
		text, _ := raw[i].Text()
		if s.Applies != nil && !s.Applies(text) {
			continue
		}
		rep.Attempted++
		if got := s.Parse(text); got.resolved {
			next[i] = got
			rep.Resolved++
		}
	}
	rep.Remaining = countUnresolved(next)
	return next, rep
}

// Cascade is an ordered list of stages; earlier stages win.
type Cascade []Stage

// Run threads the parse state through every stage and returns the final state
// plus one report per stage. raw is never modified.
func (c Cascade) Run(raw []record.Value) ([]Outcome, []StageReport) {
	state := Start(raw)
	trace := make([]StageReport, 0, len(c))
	for _, s := range c {
		var rep StageReport
		state, rep = s.Apply(raw, state)
		trace = append(trace, rep)
	}
	return state, trace
}

// Names lists the stage names in priority order.
func (c Cascade) Names() []string {
	out := make([]string, len(c))
	for i, s := range c {
		out[i] = s.Name
	}
	return out
}

// Values projects a parse state onto an output column; unresolved slots become missing.
func Values(state []Outcome) []record.Value {
	out := make([]record.Value, len(state))
	for i, o := range state {
		out[i] = o.Value()
	}
	return out
}

// UnresolvedSamples returns up to limit raw texts that no stage resolved, in record order.
func UnresolvedSamples(raw []record.Value, state []Outcome, limit int) []string {
	var out []string
	for i, o := range state {
		if o.resolved {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		s, _ := raw[i].Text()
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

func countUnresolved(state []Outcome) int {
	n := 0
	for _, o := range state {
		if !o.resolved {
			n++
		}
	}
	return n
}
