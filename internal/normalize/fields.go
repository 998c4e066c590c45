package normalize

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/KaramelBytes/recordloom-cli/internal/record"
)

// Gender codes.
const (
	GenderMale    = "M"
	GenderFemale  = "F"
	GenderOther   = "O"
	GenderUnknown = "Unknown"
)

// Gender maps any raw value onto M, F, O or Unknown using the first letter of
// the trimmed, upper-cased text. It never fails.
func Gender(v record.Value) string {
	s, ok := v.Text()
	if !ok {
		return GenderUnknown
	}
	s = strings.ToUpper(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, GenderMale):
		return GenderMale
	case strings.HasPrefix(s, GenderFemale):
		return GenderFemale
	case strings.HasPrefix(s, GenderOther):
		return GenderOther
	default:
		return GenderUnknown
	}
}

var numberRun = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Weight extracts the first integer or decimal run from a raw value and
// returns it unconverted along with the unit text that followed it (lower-cased,
// trimmed; empty when the value carried no unit). No digit run means missing.
func Weight(v record.Value) (record.Value, string) {
	if f, ok := v.Float(); ok {
		return record.Num(f), ""
	}
	s, ok := v.Text()
	if !ok {
		return record.Null(), ""
	}
	loc := numberRun.FindStringIndex(s)
	if loc == nil {
		return record.Null(), ""
	}
	// Out-of-range runs still count as extracted: ParseFloat returns +Inf.
	f, err := strconv.ParseFloat(s[loc[0]:loc[1]], 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return record.Null(), ""
	}
	return record.Num(f), unitSuffix(s[loc[1]:])
}

func unitSuffix(rest string) string {
	rest = strings.TrimSpace(rest)
	end := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsLetter(r) })
	if end >= 0 {
		rest = rest[:end]
	}
	return strings.ToLower(rest)
}

// Height coerces a value to a number; anything non-numeric becomes missing.
func Height(v record.Value) record.Value {
	if f, ok := v.Float(); ok {
		return record.Num(f)
	}
	s, ok := v.Text()
	if !ok {
		return record.Null()
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return record.Null()
	}
	return record.Num(f)
}
