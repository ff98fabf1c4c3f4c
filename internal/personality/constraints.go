package personality

import "fmt"

// Constraints are the fixed cooking ceilings for an archetype.
type Constraints struct {
	MaxCookTimeWeekday int   `json:"max_cook_time_weekday"`
	MaxCookTimeWeekend int   `json:"max_cook_time_weekend"`
	MaxSteps           int   `json:"max_steps"`
	MaxIngredients     int   `json:"max_ingredients"`
	Style              Style `json:"style"`
}

// TimeLimit returns the cook-time ceiling for a weekday or weekend cook.
func (c Constraints) TimeLimit(isWeekend bool) int {
	if isWeekend {
		return c.MaxCookTimeWeekend
	}
	return c.MaxCookTimeWeekday
}

// Fits reports whether a single cook satisfies the time and ingredient ceilings.
func (c Constraints) Fits(cookMinutes, ingredients int, isWeekend bool) bool {
	return cookMinutes <= c.TimeLimit(isWeekend) && ingredients <= c.MaxIngredients
}

var constraintTable = map[Archetype]Constraints{
	ThrillSeeker: {
		MaxCookTimeWeekday: 15,
		MaxCookTimeWeekend: 30,
		MaxSteps:           6,
		MaxIngredients:     8,
		Style:              StyleQuick,
	},
	WeekendWarrior: {
		MaxCookTimeWeekday: 30,
		MaxCookTimeWeekend: 90,
		MaxSteps:           12,
		MaxIngredients:     14,
		Style:              StyleAdventurous,
	},
	WeekdayHero: {
		MaxCookTimeWeekday: 45,
		MaxCookTimeWeekend: 60,
		MaxSteps:           10,
		MaxIngredients:     12,
		Style:              StyleBalanced,
	},
	BatchPlanner: {
		MaxCookTimeWeekday: 60,
		MaxCookTimeWeekend: 120,
		MaxSteps:           15,
		MaxIngredients:     18,
		Style:              StyleBatch,
	},
}

// weekdayTimeTable holds Monday..Friday cook-time ceilings, indexed by day_of_week-1.
var weekdayTimeTable = map[Archetype][5]int{
	ThrillSeeker:   {15, 15, 20, 15, 20},
	WeekendWarrior: {25, 30, 30, 30, 35},
	WeekdayHero:    {40, 45, 45, 45, 50},
	BatchPlanner:   {30, 30, 45, 30, 60},
}

// GetConstraints returns the constraint record for a. An archetype outside the
// fixed set is a programming error and panics.
func GetConstraints(a Archetype) Constraints {
	c, ok := constraintTable[a]
	if !ok {
		panic(fmt.Sprintf("personality: no constraints for %s", a))
	}
	return c
}

// GetDailyConstraints returns the archetype's constraints for a given day.
// dayOfWeek uses 0=Sunday..6=Saturday. On a weekday Monday..Friday the weekday
// ceiling comes from the per-day table; weekend indices fall back to the base record.
func GetDailyConstraints(a Archetype, dayOfWeek int, isWeekend bool) Constraints {
	c := GetConstraints(a)
	if isWeekend {
		return c
	}
	idx := dayOfWeek - 1
	table := weekdayTimeTable[a]
	if idx >= 0 && idx < len(table) {
		c.MaxCookTimeWeekday = table[idx]
	}
	return c
}

// IsWeekend reports whether a 0=Sunday day index falls on the weekend.
func IsWeekend(dayOfWeek int) bool {
	return dayOfWeek == 0 || dayOfWeek == 6
}
