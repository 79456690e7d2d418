package scoring

import (
	"fmt"
	"strings"
)

// Elective identifies a subject track by its short code.
type Elective string

const (
	MobileDev Elective = "MobileDev"
	ITBA      Elective = "ITBA"
	MMGD      Elective = "MMGD"
)

// ActivitiesPerElective is the number of graded activities every elective offers.
const ActivitiesPerElective = 3

// DefaultElectives is the canonical elective set. Its order is the tie-break order
// used by Combine.
var DefaultElectives = []Elective{MobileDev, ITBA, MMGD}

var displayNames = map[Elective]string{
	MobileDev: "Mobile Development",
	ITBA:      "IT Business Analytics",
	MMGD:      "Multimedia & Game Development",
}

// DisplayName returns the human readable name of the elective.
func (e Elective) DisplayName() string {
	if name, ok := displayNames[e]; ok {
		return name
	}
	return string(e)
}

func (e Elective) String() string { return string(e) }

// ParseElective resolves a code ("ITBA") or display name ("IT Business Analytics")
// to its Elective. Matching ignores case and surrounding whitespace.
func ParseElective(s string) (Elective, error) {
	needle := strings.TrimSpace(s)
	for _, e := range DefaultElectives {
		if strings.EqualFold(needle, string(e)) || strings.EqualFold(needle, displayNames[e]) {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown elective %q", s)
}

// IsKnown reports whether e is part of DefaultElectives.
func (e Elective) IsKnown() bool {
	_, ok := displayNames[e]
	return ok
}
