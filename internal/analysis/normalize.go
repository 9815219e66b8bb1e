package analysis

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CellKind classifies a raw metric cell before conversion.
type CellKind int

const (
	KindEmpty CellKind = iota
	KindNumber
	KindPercent
	KindFraction
	KindDollar
	KindText
)

func (k CellKind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNumber:
		return "number"
	case KindPercent:
		return "percent"
	case KindFraction:
		return "fraction"
	case KindDollar:
		return "dollar"
	default:
		return "text"
	}
}

// sentinel marks a value that was not collected.
const sentinel = -1.0

// CellError describes a cell that could not be converted to a number.
type CellError struct {
	Raw  string
	Kind CellKind
	Err  error
}

func (e *CellError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unparseable %s cell %q: %v", e.Kind, e.Raw, e.Err)
	}
	return fmt.Sprintf("unparseable %s cell %q", e.Kind, e.Raw)
}

func (e *CellError) Unwrap() error { return e.Err }

// Classify inspects a raw cell. '%' wins over '/', which wins over '$',
// mirroring the order the plain conversion path checks them.
func Classify(raw string) CellKind {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return KindEmpty
	case strings.Contains(s, "%"):
		return KindPercent
	case strings.Contains(s, "/"):
		return KindFraction
	case strings.Contains(s, "$"):
		return KindDollar
	}
	if _, ok := parseFinite(s); ok {
		return KindNumber
	}
	return KindText
}

// Normalize converts a non-currency cell. Percentages are divided by 100 and
// fractions evaluated. A converted value of exactly -1 is Missing, so "-1"
// and "-1/1" are Missing while "-1%" (= -0.01) is not. Garbage is Missing.
func Normalize(raw string) Value {
	v, _ := NormalizeCell(raw, false)
	return v
}

// NormalizeDollar converts a currency cell by stripping '$' and thousands
// commas. There is no sentinel check: "-1" is the literal value -1.
func NormalizeDollar(raw string) Value {
	v, _ := NormalizeCell(raw, true)
	return v
}

// NormalizeCell is Normalize or NormalizeDollar with the parse failure
// reported. The returned error is always a *CellError and the Value is
// Missing whenever the error is non-nil. A sentinel hit is Missing with a
// nil error.
func NormalizeCell(raw string, dollar bool) (Value, error) {
	kind := Classify(raw)
	if dollar {
		return normalizeDollar(raw, kind)
	}
	s := strings.TrimSpace(raw)
	var (
		f   float64
		err error
	)
	switch kind {
	case KindPercent:
		f, err = parsePercent(s)
	case KindFraction:
		f, err = parseFraction(s)
	case KindNumber:
		f, _ = parseFinite(s)
	default:
		err = errNotNumeric
	}
	if err != nil {
		return Missing(), &CellError{Raw: raw, Kind: kind, Err: err}
	}
	if f == sentinel {
		return Missing(), nil
	}
	return Some(f), nil
}

var (
	errNotNumeric   = errors.New("not numeric")
	errZeroDivision = errors.New("zero denominator")
	errBadFraction  = errors.New("want exactly one '/'")
)

func normalizeDollar(raw string, kind CellKind) (Value, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	f, ok := parseFinite(strings.TrimSpace(s))
	if !ok {
		return Missing(), &CellError{Raw: raw, Kind: kind, Err: errNotNumeric}
	}
	return Some(f), nil
}

func parsePercent(s string) (float64, error) {
	f, ok := parseFinite(strings.TrimSpace(strings.ReplaceAll(s, "%", "")))
	if !ok {
		return 0, errNotNumeric
	}
	return f / 100, nil
}

func parseFraction(s string) (float64, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return 0, errBadFraction
	}
	num, ok := parseFinite(strings.TrimSpace(parts[0]))
	if !ok {
		return 0, errNotNumeric
	}
	den, ok := parseFinite(strings.TrimSpace(parts[1]))
	if !ok {
		return 0, errNotNumeric
	}
	if den == 0 {
		return 0, errZeroDivision
	}
	return num / den, nil
}

// parseFinite rejects NaN and ±Inf, which strconv accepts by name.
func parseFinite(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
