package input

import (
	"errors"
	"strings"
	"unicode"
)

// Kind distinguishes the accepted shapes of user input.
type Kind string

const (
	// KindCity is a city name, normalized for querying.
	KindCity Kind = "city"
	// KindPincode is a 6-digit Indian postal code.
	KindPincode Kind = "pincode"
	// KindQuit signals session termination.
	KindQuit Kind = "quit"
	// KindStats requests the in-process counter snapshot.
	KindStats Kind = "stats"
)

// ErrEmpty is returned when input is empty or whitespace-only after trim.
var ErrEmpty = errors.New("location is required")

// ErrInvalidChars is returned when input is neither a 6-digit pincode nor a
// plausible city name.
var ErrInvalidChars = errors.New("not a city name or 6-digit pincode")

// Query is a classified, normalized piece of user input. Immutable once built.
type Query struct {
	Kind  Kind
	Value string
}

// Key returns the cache key for the query: "<kind>:<lowercased value>".
func (q Query) Key() string {
	return string(q.Kind) + ":" + strings.ToLower(q.Value)
}

// cityAliases maps common spellings to the names OpenWeatherMap resolves best.
var cityAliases = map[string]string{
	"new delhi": "New Delhi",
	"delhi":     "Delhi",
	"mumbai":    "Mumbai",
	"bangalore": "Bengaluru",
	"bengaluru": "Bengaluru",
	"kolkata":   "Kolkata",
	"chennai":   "Chennai",
	"hyderabad": "Hyderabad",
	"pune":      "Pune",
}

// Classify trims the input and classifies it as a session command, a 6-digit
// pincode, or a city name. City names are normalized through the alias table,
// otherwise title-cased. Returns ErrEmpty or ErrInvalidChars for anything else;
// the caller re-prompts without side effects.
func Classify(raw string) (Query, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Query{}, ErrEmpty
	}

	switch strings.ToLower(s) {
	case "quit", "exit", "q":
		return Query{Kind: KindQuit}, nil
	case "stats":
		return Query{Kind: KindStats}, nil
	}

	if isPincode(s) {
		return Query{Kind: KindPincode, Value: s}, nil
	}

	if isCityName(s) {
		return Query{Kind: KindCity, Value: normalizeCity(s)}, nil
	}

	return Query{}, ErrInvalidChars
}

// isPincode reports whether s is exactly six ASCII digits.
func isPincode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isCityName allows letters (Unicode), spaces, hyphens, dots and apostrophes.
func isCityName(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			continue
		}
		switch r {
		case ' ', '-', '.', '\'':
			continue
		}
		return false
	}
	return true
}

func normalizeCity(s string) string {
	lower := strings.ToLower(collapseSpaces(s))
	if canonical, ok := cityAliases[lower]; ok {
		return canonical
	}
	return titleCase(lower)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// titleCase upper-cases the first letter of each space-separated word.
// strings.Title is deprecated and cases every rune cluster; this only needs
// ASCII-word behavior for city names.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
