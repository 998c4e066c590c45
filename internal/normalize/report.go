package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Report collects the diagnostics of one Clean call.
type Report struct {
	Rows        int            `json:"rows" yaml:"rows"`
	Dates       []DateTrace    `json:"dates,omitempty" yaml:"dates,omitempty"`
	Gender      *GenderSummary `json:"gender,omitempty" yaml:"gender,omitempty"`
	Weight      *WeightSummary `json:"weight,omitempty" yaml:"weight,omitempty"`
	Height      *HeightSummary `json:"height,omitempty" yaml:"height,omitempty"`
	Passthrough []string       `json:"passthrough,omitempty" yaml:"passthrough,omitempty"`
	Warnings    []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

type GenderSummary struct {
	Column string         `json:"column" yaml:"column"`
	Counts map[string]int `json:"counts" yaml:"counts"`
}

// WeightSummary describes numeric extraction. UnitAmbiguity is set when any
// value carried a unit other than kilograms; those numbers were kept as-is.
type WeightSummary struct {
	Column        string      `json:"column" yaml:"column"`
	Output        string      `json:"output" yaml:"output"`
	Extracted     int         `json:"extracted" yaml:"extracted"`
	NoDigits      int         `json:"no_digits" yaml:"no_digits"`
	Missing       int         `json:"missing" yaml:"missing"`
	Units         []UnitCount `json:"units,omitempty" yaml:"units,omitempty"`
	UnitAmbiguity bool        `json:"unit_ambiguity" yaml:"unit_ambiguity"`
}

type UnitCount struct {
	Unit  string `json:"unit" yaml:"unit"`
	Count int    `json:"count" yaml:"count"`
}

type HeightSummary struct {
	Column  string `json:"column" yaml:"column"`
	Coerced int    `json:"coerced" yaml:"coerced"`
	Failed  int    `json:"failed" yaml:"failed"`
}

// UnresolvedTotal sums unresolved date values across all date columns.
func (r *Report) UnresolvedTotal() int {
	n := 0
	for _, d := range r.Dates {
		n += d.Unresolved
	}
	return n
}

func (r *Report) finalize() {
	r.Warnings = nil
	for _, d := range r.Dates {
		if d.Unresolved > 0 {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %d of %d present values matched no date stage and were set to missing", d.Column, d.Unresolved, d.Present))
		}
	}
	if w := r.Weight; w != nil {
		if w.UnitAmbiguity {
			parts := make([]string, len(w.Units))
			for i, u := range w.Units {
				parts[i] = fmt.Sprintf("%s(%d)", u.Unit, u.Count)
			}
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s mixes units %s; numbers were kept without unit conversion", w.Output, strings.Join(parts, ", ")))
		}
		if w.NoDigits > 0 {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %d values had no number and were set to missing", w.Output, w.NoDigits))
		}
	}
	if h := r.Height; h != nil && h.Failed > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %d non-numeric values were set to missing", h.Column, h.Failed))
	}
}

// Render formats the report as markdown, yaml or json.
func (r *Report) Render(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "markdown", "md":
		return r.Markdown(), nil
	case "yaml", "yml":
		b, err := yaml.Marshal(r)
		if err != nil {
			return "", fmt.Errorf("marshal yaml: %w", err)
		}
		return string(b), nil
	case "json":
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal json: %w", err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unsupported trace format: %s (use markdown|yaml|json)", format)
	}
}

// Markdown renders a compact, human-reviewable audit of the run.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[CLEANING SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	if len(r.Passthrough) > 0 {
		b.WriteString(fmt.Sprintf("Pass-through: %s\n", strings.Join(r.Passthrough, ", ")))
	}
	for _, d := range r.Dates {
		b.WriteString(fmt.Sprintf("\n[DATE CASCADE: %s]\n", d.Column))
		b.WriteString(fmt.Sprintf("Present values: %d\n", d.Present))
		for i, s := range d.Stages {
			b.WriteString(fmt.Sprintf("%d. %s: attempted %d, resolved %d, remaining %d\n", i+1, s.Stage, s.Attempted, s.Resolved, s.Remaining))
		}
		if len(d.Samples) > 0 {
			b.WriteString(fmt.Sprintf("Unresolved e.g.: %s\n", strings.Join(d.Samples, " | ")))
		}
	}
	if g := r.Gender; g != nil {
		b.WriteString(fmt.Sprintf("\n[GENDER: %s]\n", g.Column))
		for _, code := range []string{GenderMale, GenderFemale, GenderOther, GenderUnknown} {
			b.WriteString(fmt.Sprintf("- %s: %d\n", code, g.Counts[code]))
		}
	}
	if w := r.Weight; w != nil {
		b.WriteString(fmt.Sprintf("\n[WEIGHT: %s -> %s]\n", w.Column, w.Output))
		b.WriteString(fmt.Sprintf("Extracted %d, no digits %d, missing %d\n", w.Extracted, w.NoDigits, w.Missing))
		for _, u := range w.Units {
			b.WriteString(fmt.Sprintf("- unit %s: %d\n", u.Unit, u.Count))
		}
		b.WriteString("Note: values are extracted without unit conversion\n")
	}
	if h := r.Height; h != nil {
		b.WriteString(fmt.Sprintf("\n[HEIGHT: %s]\n", h.Column))
		b.WriteString(fmt.Sprintf("Numeric %d, non-numeric %d\n", h.Coerced, h.Failed))
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[WARNINGS]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}
