// Package states holds the fixed table of U.S. state codes (50 states plus DC)
// and their canonical names.
package states

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInvalidCode is matched by every InvalidCodeError.
var ErrInvalidCode = errors.New("invalid state code")

// ErrInvalidName is matched by every InvalidNameError.
var ErrInvalidName = errors.New("invalid state name")

// InvalidCodeError reports a code outside the fixed 51-entry table.
type InvalidCodeError struct {
	Code string
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid state code %q", e.Code)
}

func (e *InvalidCodeError) Is(target error) bool { return target == ErrInvalidCode }

// InvalidNameError reports a full state name that is not in the table.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("%q is not a valid state name", e.Name)
}

func (e *InvalidNameError) Is(target error) bool { return target == ErrInvalidName }

// State pairs a two-letter code with its canonical name.
type State struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// all is ordered as the source survey lists them; DC sits between CT and DE.
var all = [...]State{
	{"AL", "Alabama"}, {"AK", "Alaska"}, {"AZ", "Arizona"}, {"AR", "Arkansas"},
	{"CA", "California"}, {"CO", "Colorado"}, {"CT", "Connecticut"}, {"DC", "Washington D.C."}, {"DE", "Delaware"},
	{"FL", "Florida"}, {"GA", "Georgia"}, {"HI", "Hawaii"}, {"ID", "Idaho"},
	{"IL", "Illinois"}, {"IN", "Indiana"}, {"IA", "Iowa"}, {"KS", "Kansas"},
	{"KY", "Kentucky"}, {"LA", "Louisiana"}, {"ME", "Maine"}, {"MD", "Maryland"},
	{"MA", "Massachusetts"}, {"MI", "Michigan"}, {"MN", "Minnesota"}, {"MS", "Mississippi"},
	{"MO", "Missouri"}, {"MT", "Montana"}, {"NE", "Nebraska"}, {"NV", "Nevada"},
	{"NH", "New Hampshire"}, {"NJ", "New Jersey"}, {"NM", "New Mexico"}, {"NY", "New York"},
	{"NC", "North Carolina"}, {"ND", "North Dakota"}, {"OH", "Ohio"}, {"OK", "Oklahoma"},
	{"OR", "Oregon"}, {"PA", "Pennsylvania"}, {"RI", "Rhode Island"}, {"SC", "South Carolina"},
	{"SD", "South Dakota"}, {"TN", "Tennessee"}, {"TX", "Texas"}, {"UT", "Utah"},
	{"VT", "Vermont"}, {"VA", "Virginia"}, {"WA", "Washington"}, {"WV", "West Virginia"},
	{"WI", "Wisconsin"}, {"WY", "Wyoming"},
}

var (
	byCode = make(map[string]string, len(all))
	byName = make(map[string]string, len(all))
)

func init() {
	for _, s := range all {
		byCode[s.Code] = s.Name
		byName[strings.ToLower(s.Name)] = s.Code
	}
}

// Count is the number of entries in the table.
const Count = len(all)

// All returns the table in its fixed order. The slice is a copy.
func All() []State {
	out := make([]State, len(all))
	copy(out, all[:])
	return out
}

// Valid reports whether code is one of the 51 codes. Matching is exact.
func Valid(code string) bool {
	_, ok := byCode[code]
	return ok
}

// Name returns the canonical name for code.
func Name(code string) (string, error) {
	n, ok := byCode[code]
	if !ok {
		return "", &InvalidCodeError{Code: code}
	}
	return n, nil
}

// CodeForName looks up a full state name. Case and surrounding whitespace
// are ignored.
func CodeForName(name string) (string, error) {
	code, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", &InvalidNameError{Name: name}
	}
	return code, nil
}

// Resolve accepts either a two-letter code (any case) or a full state name
// and returns the matching entry.
func Resolve(input string) (State, error) {
	in := strings.TrimSpace(input)
	if len(in) == 2 {
		code := strings.ToUpper(in)
		if n, ok := byCode[code]; ok {
			return State{Code: code, Name: n}, nil
		}
	}
	code, err := CodeForName(in)
	if err != nil {
		if len(in) == 2 {
			return State{}, &InvalidCodeError{Code: input}
		}
		return State{}, err
	}
	return State{Code: code, Name: byCode[code]}, nil
}

// TitleName title-cases user input the way names appear in the table,
// e.g. "new york" -> "New York".
func TitleName(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}
