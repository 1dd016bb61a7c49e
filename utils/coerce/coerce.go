// Package coerce converts between the textual values held by settings form
// fields and the typed values stored in configuration documents.
package coerce

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxExactInt bounds integers recovered from float notation ("1e3", "12.7").
const maxExactInt = 1 << 53

// ErrNotANumber is matched by every *Error via errors.Is.
var ErrNotANumber = errors.New("not a number")

// Error reports a form value that cannot become the required type.
type Error struct {
	Field string // human readable label, e.g. "Server port"
	Text  string // the offending input, trimmed
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s must be a number", e.Field)
}

func (e *Error) Is(target error) bool {
	return target == ErrNotANumber
}

// ToInteger parses a base-10 integer. Blank input yields fallback. A fractional
// part is truncated toward zero.
func ToInteger(text string, fallback int, field string) (int, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return fallback, nil
	}

	if v, err := strconv.Atoi(trimmed); err == nil {
		return v, nil
	}

	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback, &Error{Field: field, Text: trimmed}
	}
	f = math.Trunc(f)
	if math.Abs(f) > maxExactInt {
		return fallback, &Error{Field: field, Text: trimmed}
	}
	return int(f), nil
}

// ToFloatRounded parses a float rounded to two decimal places. Anything that
// does not parse yields fallback.
func ToFloatRounded(text string, fallback float64) float64 {
	v, ok := ParseFloat(text)
	if !ok {
		return fallback
	}
	return v
}

// ParseFloat is ToFloatRounded with an explicit ok flag, for callers that need
// to tell blank or malformed input apart from a real value.
func ParseFloat(text string) (float64, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return math.Round(f*100) / 100, true
}

// ToTermList splits a comma separated list, trimming every token and dropping
// empty ones. Order is preserved.
func ToTermList(text string) []string {
	parts := strings.Split(text, ",")
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// JoinTerms is the inverse of ToTermList.
func JoinTerms(terms []string) string {
	return strings.Join(terms, ", ")
}

// FormatInt renders an integer the way form fields display it.
func FormatInt(v int) string {
	return strconv.Itoa(v)
}

// FormatFloat renders a float without trailing zeros ("1.5", "10").
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
