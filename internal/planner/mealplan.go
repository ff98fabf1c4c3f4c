package planner

import (
	"fmt"
	"time"
)

// PlanStatus represents the lifecycle state of a meal plan.
type PlanStatus string

const (
	StatusDraft PlanStatus = "DRAFT"
	StatusFinal PlanStatus = "FINAL"
)

// DayMode is a per-weekday scheduling hint.
type DayMode int

const (
	ModeUsual DayMode = iota + 1
	ModeMixItUp
	ModeGoNuts
	ModeSkip
	ModeLeftover
)

var dayModeNames = map[DayMode]string{
	ModeUsual:    "usual",
	ModeMixItUp:  "mix_it_up",
	ModeGoNuts:   "go_nuts",
	ModeSkip:     "skip",
	ModeLeftover: "leftover",
}

func (m DayMode) String() string {
	if name, ok := dayModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("DayMode(%d)", int(m))
}

// ParseDayMode converts a mode name into a DayMode.
func ParseDayMode(s string) (DayMode, error) {
	for m, name := range dayModeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown day mode %q", s)
}

// MarshalText encodes the mode by name.
func (m DayMode) MarshalText() ([]byte, error) {
	if _, ok := dayModeNames[m]; !ok {
		return nil, fmt.Errorf("invalid day mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name.
func (m *DayMode) UnmarshalText(text []byte) error {
	parsed, err := ParseDayMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// PlanDay is one calendar day of a weekly plan. An empty RecipeID means no
// recipe was assigned.
type PlanDay struct {
	Date                time.Time `json:"date"`
	DayOfWeek           int       `json:"day_of_week"`
	Mode                DayMode   `json:"day_mode"`
	RecipeID            string    `json:"assigned_recipe_id,omitempty"`
	RecipeTitle         string    `json:"recipe_title,omitempty"`
	Cuisine             string    `json:"cuisine,omitempty"`
	Minutes             int       `json:"minutes,omitempty"`
	LeftoverSourceTitle string    `json:"leftover_source_title,omitempty"`
	Score               float64   `json:"score"`
}

// Assigned reports whether the day has a recipe.
func (d PlanDay) Assigned() bool {
	return d.RecipeID != ""
}

// WeeklyPlanProposal is a transient 7-day plan. It is a value: copying it
// copies every day.
type WeeklyPlanProposal struct {
	ID                string     `json:"id"`
	WeekStart         time.Time  `json:"week_start"`
	Status            PlanStatus `json:"status"`
	Days              [7]PlanDay `json:"days"`
	Servings          int        `json:"servings"`
	EstimatedCost     float64    `json:"estimated_cost"`
	PantryUtilisation float64    `json:"pantry_utilisation"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Accept returns a copy of the proposal marked final.
func (p WeeklyPlanProposal) Accept() WeeklyPlanProposal {
	p.Status = StatusFinal
	return p
}

// RecipeIDs returns the assigned recipe ids in day order.
func (p WeeklyPlanProposal) RecipeIDs() []string {
	var ids []string
	for _, d := range p.Days {
		if d.Assigned() {
			ids = append(ids, d.RecipeID)
		}
	}
	return ids
}

// Cuisines returns the cuisines of the assigned days in day order.
func (p WeeklyPlanProposal) Cuisines() []string {
	var out []string
	for _, d := range p.Days {
		if d.Assigned() && d.Cuisine != "" {
			out = append(out, d.Cuisine)
		}
	}
	return out
}
