package record

import (
	"fmt"
	"strings"
)

// Record is one row; values are aligned with the owning Table's Columns.
type Record []Value

// Table is an ordered set of named columns and the records over them.
type Table struct {
	Name    string
	Columns []string
	Rows    []Record
}

// NewTable builds an empty table with the given column order.
func NewTable(name string, columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Name: name, Columns: cols}
}

// Append adds a record, padding or truncating it to the column count.
func (t *Table) Append(r Record) {
	row := make(Record, len(t.Columns))
	copy(row, r)
	t.Rows = append(t.Rows, row)
}

// Index returns the position of a column by case-insensitive name, or -1.
func (t *Table) Index(name string) int {
	want := strings.ToLower(strings.TrimSpace(name))
	for i, c := range t.Columns {
		if strings.ToLower(strings.TrimSpace(c)) == want {
			return i
		}
	}
	return -1
}

// Has reports whether the named column exists.
func (t *Table) Has(name string) bool { return t.Index(name) >= 0 }

// Column projects one field across all records, preserving record order.
func (t *Table) Column(name string) ([]Value, error) {
	idx := t.Index(name)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found", name)
	}
	out := make([]Value, len(t.Rows))
	for i, r := range t.Rows {
		if idx < len(r) {
			out[i] = r[idx]
		}
	}
	return out, nil
}

// Get returns the value of the named field in row i.
func (t *Table) Get(i int, name string) Value {
	idx := t.Index(name)
	if idx < 0 || i < 0 || i >= len(t.Rows) || idx >= len(t.Rows[i]) {
		return Null()
	}
	return t.Rows[i][idx]
}

// Clone returns a deep copy; mutating the clone never touches t.
func (t *Table) Clone() *Table {
	out := NewTable(t.Name, t.Columns)
	out.Rows = make([]Record, len(t.Rows))
	for i, r := range t.Rows {
		row := make(Record, len(r))
		copy(row, r)
		out.Rows[i] = row
	}
	return out
}

// WithColumn returns a copy of t where the named column holds vals. A new
// column is appended at the end of the schema when it does not exist yet.
func (t *Table) WithColumn(name string, vals []Value) (*Table, error) {
	if len(vals) != len(t.Rows) {
		return nil, fmt.Errorf("column %q: got %d values for %d rows", name, len(vals), len(t.Rows))
	}
	out := t.Clone()
	idx := out.Index(name)
	if idx < 0 {
		out.Columns = append(out.Columns, name)
		for i := range out.Rows {
			out.Rows[i] = append(out.Rows[i], vals[i])
		}
		return out, nil
	}
	for i := range out.Rows {
		out.Rows[i][idx] = vals[i]
	}
	return out, nil
}

// Without returns a copy of t with the named column removed. Unknown names are ignored.
func (t *Table) Without(name string) *Table {
	idx := t.Index(name)
	if idx < 0 {
		return t.Clone()
	}
	cols := make([]string, 0, len(t.Columns)-1)
	cols = append(cols, t.Columns[:idx]...)
	cols = append(cols, t.Columns[idx+1:]...)
	out := &Table{Name: t.Name, Columns: cols, Rows: make([]Record, len(t.Rows))}
	for i, r := range t.Rows {
		row := make(Record, 0, len(cols))
		for j, v := range r {
			if j != idx {
				row = append(row, v)
			}
		}
		out.Rows[i] = row
	}
	return out
}

// Strings renders a record for delimited-text sinks.
func (r Record) Strings() []string {
	out := make([]string, len(r))
	for i, v := range r {
		out[i] = v.String()
	}
	return out
}
