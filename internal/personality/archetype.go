package personality

import (
	"errors"
	"fmt"
	"strings"
)

// Archetype is one of the four fixed cooking personalities.
type Archetype int

const (
	// ThrillSeeker cooks fast, punchy food and wants dinner on the table in minutes.
	ThrillSeeker Archetype = iota + 1
	// WeekendWarrior keeps weeknights short and saves the big cooks for the weekend.
	WeekendWarrior
	// WeekdayHero is a steady, balanced home cook who is happy to spend time most nights.
	WeekdayHero
	// BatchPlanner preps ahead and cooks in bulk.
	BatchPlanner
)

// ErrUnknownArchetype is returned when parsing a name outside the fixed set.
var ErrUnknownArchetype = errors.New("unknown archetype")

// Archetypes lists every valid archetype in declaration order.
var Archetypes = []Archetype{ThrillSeeker, WeekendWarrior, WeekdayHero, BatchPlanner}

var archetypeNames = map[Archetype]string{
	ThrillSeeker:   "thrill_seeker",
	WeekendWarrior: "weekend_warrior",
	WeekdayHero:    "weekday_hero",
	BatchPlanner:   "batch_planner",
}

func (a Archetype) String() string {
	if name, ok := archetypeNames[a]; ok {
		return name
	}
	return fmt.Sprintf("archetype(%d)", int(a))
}

// Valid reports whether a is one of the four archetypes.
func (a Archetype) Valid() bool {
	_, ok := archetypeNames[a]
	return ok
}

// ParseArchetype converts a stored or user-typed name into an Archetype.
func ParseArchetype(s string) (Archetype, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, " ", "_")
	for a, name := range archetypeNames {
		if name == key {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownArchetype, s)
}

func (a Archetype) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownArchetype, int(a))
	}
	return []byte(a.String()), nil
}

func (a *Archetype) UnmarshalText(text []byte) error {
	parsed, err := ParseArchetype(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Style is the cooking style implied by an archetype.
type Style string

const (
	StyleQuick       Style = "quick"
	StyleAdventurous Style = "adventurous"
	StyleBalanced    Style = "balanced"
	StyleBatch       Style = "batch"
)

var archetypeStyles = map[Archetype]Style{
	ThrillSeeker:   StyleQuick,
	WeekendWarrior: StyleAdventurous,
	WeekdayHero:    StyleBalanced,
	BatchPlanner:   StyleBatch,
}

// StyleOf returns the style derived 1:1 from the archetype.
func StyleOf(a Archetype) Style {
	return archetypeStyles[a]
}
