package distance

import (
	"strings"
	"unicode"
)

// ServiceArea decides state-list membership for a delivery location.
// Membership is reported alongside distance but never derived from it.
type ServiceArea struct {
	codes map[string]struct{}
	names []string
}

// DefaultServiceAreaStates is the default serviced-state reference list
var DefaultServiceAreaStates = []string{
	"OH", "Ohio",
	"KY", "Kentucky",
	"IN", "Indiana",
	"MI", "Michigan",
	"WV", "West Virginia",
	"PA", "Pennsylvania",
}

// NewServiceArea builds a service area from state codes and names.
// Two-letter entries match as whole tokens; longer entries match as
// case-insensitive substrings.
func NewServiceArea(entries []string) *ServiceArea {
	area := &ServiceArea{codes: make(map[string]struct{})}
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if len(e) == 2 {
			area.codes[strings.ToUpper(e)] = struct{}{}
		} else {
			area.names = append(area.names, strings.ToLower(e))
		}
	}
	return area
}

// Contains reports whether the location names a serviced state
func (a *ServiceArea) Contains(location string) bool {
	lower := strings.ToLower(location)
	for _, name := range a.names {
		if strings.Contains(lower, name) {
			return true
		}
	}

	tokens := strings.FieldsFunc(location, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, tok := range tokens {
		if len(tok) != 2 {
			continue
		}
		if _, ok := a.codes[strings.ToUpper(tok)]; ok {
			return true
		}
	}
	return false
}
