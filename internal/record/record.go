package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	Missing Kind = iota
	String
	Number
	Date
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Date:
		return "date"
	default:
		return "missing"
	}
}

// DateLayout is the canonical textual form of a Date value.
const DateLayout = "2006-01-02"

// Value is a single cell: missing, a string, a number, or a calendar date.
// The zero Value is missing.
type Value struct {
	kind Kind
	str  string
	num  float64
	date time.Time
}

// Null returns the missing value.
func Null() Value { return Value{} }

// Str wraps a string.
func Str(s string) Value { return Value{kind: String, str: s} }

// Num wraps a number.
func Num(f float64) Value { return Value{kind: Number, num: f} }

// DateOf wraps the calendar date of t; the time of day and zone are dropped.
func DateOf(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: Date, date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsMissing() bool { return v.kind == Missing }

// Float returns the numeric payload when the value is a Number.
func (v Value) Float() (float64, bool) {
	if v.kind != Number {
		return 0, false
	}
	return v.num, true
}

// Time returns the date payload when the value is a Date.
func (v Value) Time() (time.Time, bool) {
	if v.kind != Date {
		return time.Time{}, false
	}
	return v.date, true
}

// Text returns the textual form of a present value. Numbers use the shortest
// representation that round-trips; dates use DateLayout.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case String:
		return v.str, true
	case Number:
		return strconv.FormatFloat(v.num, 'f', -1, 64), true
	case Date:
		return v.date.Format(DateLayout), true
	default:
		return "", false
	}
}

// String renders the value for sinks; missing renders as the empty string.
func (v Value) String() string {
	s, _ := v.Text()
	return s
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case String:
		return v.str == o.str
	case Number:
		return v.num == o.num
	case Date:
		return v.date.Equal(o.date)
	default:
		return true
	}
}

// FromCell converts a raw delimited-text cell: empty or blank cells are missing.
func FromCell(s string) Value {
	if strings.TrimSpace(s) == "" {
		return Null()
	}
	return Str(s)
}

// FromAny converts a database or spreadsheet value into a Value.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case string:
		return FromCell(t)
	case []byte:
		return FromCell(string(t))
	case int64:
		return Num(float64(t))
	case int:
		return Num(float64(t))
	case float64:
		return Num(t)
	case float32:
		return Num(float64(t))
	case bool:
		if t {
			return Num(1)
		}
		return Num(0)
	case time.Time:
		return DateOf(t)
	default:
		return Str(fmt.Sprint(t))
	}
}
