package recipe

import (
	"strings"

	"cookdna/internal/personality"
)

// Ingredient is a single line of a recipe's ingredient list.
type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity,omitempty"`
	Unit     string  `json:"unit,omitempty"`
	// Staple ingredients (oil, salt, pepper...) are assumed to be on hand and
	// never count towards pantry matching or shopping.
	Staple bool `json:"staple"`
}

// PersonalityTag is the precomputed fit of a recipe for one archetype.
type PersonalityTag struct {
	Eligible       bool `json:"eligible"`
	SprintTime     int  `json:"sprint_time,omitempty"`
	BatchPrepSteps int  `json:"batch_prep_steps,omitempty"`
}

// PersonalityTagSet maps each archetype to its precomputed tag.
type PersonalityTagSet map[personality.Archetype]PersonalityTag

// Eligible reports whether the recipe is tagged eligible for a. Missing tags are not eligible.
func (s PersonalityTagSet) Eligible(a personality.Archetype) bool {
	return s[a].Eligible
}

// Recipe is a catalogue entry. Recipes are read-only once built by ingestion.
type Recipe struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Cuisine          string            `json:"cuisine"`
	TotalTimeMinutes int               `json:"total_time_minutes"`
	AdventureLevel   int               `json:"adventure_level"`
	SpiceLevel       int               `json:"spice_level"`
	CostPerServe     float64           `json:"cost_per_serve"`
	AvgRating        float64           `json:"avg_rating"`
	CookedCount      int               `json:"cooked_count"`
	LikesCount       int               `json:"likes_count"`
	SeasonTags       []string          `json:"season_tags"`
	Ingredients      []Ingredient      `json:"ingredients"`
	Steps            []string          `json:"steps"`
	LeftoverIdeas    []string          `json:"leftover_ideas,omitempty"`
	Personality      PersonalityTagSet `json:"personality"`
	UpdatedAt        string            `json:"updated_at"`
}

// IngredientCount is the number of ingredient lines, staples included.
func (r Recipe) IngredientCount() int {
	return len(r.Ingredients)
}

// NonStaples returns the ingredients that need to be bought or found in the pantry.
func (r Recipe) NonStaples() []Ingredient {
	var out []Ingredient
	for _, ing := range r.Ingredients {
		if !ing.Staple {
			out = append(out, ing)
		}
	}
	return out
}

// HasSeason reports whether the recipe carries any of the given season tags.
func (r Recipe) HasSeason(seasons ...string) bool {
	for _, tag := range r.SeasonTags {
		for _, s := range seasons {
			if strings.EqualFold(tag, s) {
				return true
			}
		}
	}
	return false
}

// Index builds an id lookup over a catalogue slice.
func Index(recipes []Recipe) map[string]Recipe {
	idx := make(map[string]Recipe, len(recipes))
	for _, r := range recipes {
		idx[r.ID] = r
	}
	return idx
}
