package recipe

import (
	"strings"

	"cookdna/internal/personality"
)

var prepVerbs = []string{"chop", "dice", "slice", "marinate", "prep", "portion", "freeze", "grate", "mince"}

// Tag computes the PersonalityTagSet for a recipe from its time, step and
// ingredient counts. Weekend-leaning archetypes are judged against their
// weekend ceiling, the rest against the weekday one.
func Tag(r Recipe) PersonalityTagSet {
	tags := make(PersonalityTagSet, len(personality.Archetypes))
	for _, a := range personality.Archetypes {
		c := personality.GetConstraints(a)

		limit := c.MaxCookTimeWeekday
		if a == personality.WeekendWarrior || a == personality.BatchPlanner {
			limit = c.MaxCookTimeWeekend
		}

		tag := PersonalityTag{
			Eligible: r.TotalTimeMinutes <= limit &&
				len(r.Steps) <= c.MaxSteps &&
				r.IngredientCount() <= c.MaxIngredients,
		}
		switch a {
		case personality.ThrillSeeker:
			tag.SprintTime = r.TotalTimeMinutes
		case personality.BatchPlanner:
			tag.BatchPrepSteps = countPrepSteps(r.Steps)
			tag.Eligible = tag.Eligible && (tag.BatchPrepSteps > 0 || len(r.LeftoverIdeas) > 0)
		}
		tags[a] = tag
	}
	return tags
}

func countPrepSteps(steps []string) int {
	n := 0
	for _, step := range steps {
		lower := strings.ToLower(step)
		for _, verb := range prepVerbs {
			if strings.Contains(lower, verb) {
				n++
				break
			}
		}
	}
	return n
}
