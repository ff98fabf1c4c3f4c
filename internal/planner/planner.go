package planner

import (
	"errors"
	"sort"
	"strings"
	"time"

	"cookdna/internal/pantry"
	"cookdna/internal/personality"
	"cookdna/internal/recipe"
	"cookdna/internal/scorer"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultServings is used when Constraints.Servings is not set.
	DefaultServings = 2

	planningHour       = 18
	mixItUpExtraMinute = 15
	mixItUpBonus       = 6
	goNutsMinAdventure = 3
	goNutsBonusPerStep = 2
	varietyLookback    = 2
)

var (
	// ErrDayOutOfRange is returned by SwapDay for an index outside 0..6.
	ErrDayOutOfRange = errors.New("day index out of range")
	// ErrNoAlternative is returned by SwapDay when no other recipe fits the day.
	ErrNoAlternative = errors.New("no alternative recipe for this day")
)

// Constraints are the user's inputs to plan generation.
type Constraints struct {
	Profile personality.Profile
	// DayModes is keyed by day of week, 0=Sunday. Missing days are ModeUsual.
	DayModes map[int]DayMode
	// Exclude lists recipe ids that must not be planned (cooldowns, dislikes).
	Exclude []string
	// RecentCuisines are cuisines cooked recently that the week should avoid.
	RecentCuisines []string
	Servings       int
	// Context carries preferences and the pantry. Hour, day and month are
	// set per planned day.
	Context scorer.Context
}

func (c Constraints) servings() int {
	if c.Servings > 0 {
		return c.Servings
	}
	return DefaultServings
}

func (c Constraints) mode(dayOfWeek int) DayMode {
	if m, ok := c.DayModes[dayOfWeek]; ok {
		return m
	}
	return ModeUsual
}

// Generator builds weekly plans.
type Generator struct {
	logger zerolog.Logger
	now    func() time.Time
}

// NewGenerator creates a Generator.
func NewGenerator(logger zerolog.Logger) *Generator {
	return &Generator{
		logger: logger.With().Str("component", "planner").Logger(),
		now:    time.Now,
	}
}

// Generate assigns at most one recipe to each of the 7 days starting at
// weekStart. It always returns 7 days; a day with no fitting recipe is left
// unassigned rather than failing the week.
func (g *Generator) Generate(recipes []recipe.Recipe, weekStart time.Time, c Constraints) WeeklyPlanProposal {
	p := WeeklyPlanProposal{
		ID:        uuid.NewString(),
		WeekStart: weekStart,
		Status:    StatusDraft,
		Servings:  c.servings(),
		CreatedAt: g.now(),
	}
	idx := recipe.Index(recipes)

	for i := range p.Days {
		date := weekStart.AddDate(0, 0, i)
		day := PlanDay{
			Date:      date,
			DayOfWeek: int(date.Weekday()),
			Mode:      c.mode(int(date.Weekday())),
		}

		switch day.Mode {
		case ModeSkip:
			p.Days[i] = day
			continue
		case ModeLeftover:
			if source := leftoverSource(p.Days[:i], idx); source != "" {
				day.LeftoverSourceTitle = source
				p.Days[i] = day
				continue
			}
			day.Mode = ModeUsual
		}

		used := assignedIDs(p.Days[:i])
		best, ok := g.pick(recipes, day, previousCuisines(p.Days[:i]), used, c)
		if ok {
			day = assign(day, best)
		} else {
			g.logger.Debug().Time("date", date).Str("mode", day.Mode.String()).Msg("no recipe fits day, leaving unassigned")
		}
		p.Days[i] = day
	}

	refreshLeftovers(&p, idx)
	p.EstimatedCost, p.PantryUtilisation = totals(p, idx, c)

	g.logger.Debug().
		Str("proposal_id", p.ID).
		Time("week_start", weekStart).
		Int("assigned", len(p.RecipeIDs())).
		Int("pool", len(recipes)).
		Msg("weekly plan generated")
	return p
}

// SwapDay returns a new proposal in which the day at index gets the best
// recipe that is neither its current one nor planned elsewhere in the week,
// keeping the cuisine-variety rule for the day and the two assigned days after it.
// The input proposal is never modified. Skip and leftover days come back unchanged.
func (g *Generator) SwapDay(p WeeklyPlanProposal, index int, recipes []recipe.Recipe, c Constraints) (WeeklyPlanProposal, error) {
	if index < 0 || index >= len(p.Days) {
		return p, ErrDayOutOfRange
	}
	day := p.Days[index]
	if day.Mode == ModeSkip || day.Mode == ModeLeftover {
		return p, nil
	}

	used := make(map[string]bool)
	for i, d := range p.Days {
		if i != index && d.Assigned() {
			used[d.RecipeID] = true
		}
	}
	if day.Assigned() {
		used[day.RecipeID] = true
	}

	// The new cuisine also sits in the lookback of the days that follow.
	neighbours := append(previousCuisines(p.Days[:index]), nextCuisines(p.Days[index+1:])...)
	best, ok := g.pick(recipes, day, neighbours, used, c)
	if !ok {
		return p, ErrNoAlternative
	}

	idx := recipe.Index(recipes)
	p.Days[index] = assign(PlanDay{Date: day.Date, DayOfWeek: day.DayOfWeek, Mode: day.Mode}, best)
	refreshLeftovers(&p, idx)
	p.EstimatedCost, p.PantryUtilisation = totals(p, idx, c)

	g.logger.Debug().Str("proposal_id", p.ID).Int("day", index).Str("recipe_id", best.Recipe.ID).Msg("day swapped")
	return p, nil
}

// pick returns the best candidate for day, retrying once without the
// recent-cuisine history when nothing fits.
func (g *Generator) pick(recipes []recipe.Recipe, day PlanDay, prev []string, used map[string]bool, c Constraints) (scorer.Scored, bool) {
	if best, ok := g.bestCandidate(recipes, day, prev, used, c, c.RecentCuisines); ok {
		return best, true
	}
	if len(c.RecentCuisines) == 0 {
		return scorer.Scored{}, false
	}
	g.logger.Debug().Time("date", day.Date).Msg("relaxing cuisine history")
	return g.bestCandidate(recipes, day, prev, used, c, nil)
}

func (g *Generator) bestCandidate(recipes []recipe.Recipe, day PlanDay, prev []string, used map[string]bool, c Constraints, history []string) (scorer.Scored, bool) {
	weekend := personality.IsWeekend(day.DayOfWeek)
	archetype := c.Profile.ArchetypeFor(weekend)
	daily := personality.GetDailyConstraints(archetype, day.DayOfWeek, weekend)

	ceiling := daily.TimeLimit(weekend)
	switch day.Mode {
	case ModeMixItUp:
		ceiling += mixItUpExtraMinute
	case ModeGoNuts:
		ceiling = daily.MaxCookTimeWeekend
	}

	excluded := make(map[string]bool, len(c.Exclude))
	for _, id := range c.Exclude {
		excluded[id] = true
	}

	var candidates []recipe.Recipe
	for _, r := range recipes {
		if excluded[r.ID] || used[r.ID] || r.TotalTimeMinutes > ceiling {
			continue
		}
		if containsCuisine(prev, r.Cuisine) || containsCuisine(history, r.Cuisine) {
			continue
		}
		candidates = append(candidates, r)
	}

	if day.Mode == ModeGoNuts {
		var adventurous []recipe.Recipe
		for _, r := range candidates {
			if r.AdventureLevel >= goNutsMinAdventure {
				adventurous = append(adventurous, r)
			}
		}
		if len(adventurous) > 0 {
			candidates = adventurous
		}
	}
	if len(candidates) == 0 {
		return scorer.Scored{}, false
	}

	ctx := c.Context
	ctx.Hour = planningHour
	ctx.DayOfWeek = day.DayOfWeek
	ctx.Month = day.Date.Month()
	profile := c.Profile
	ctx.Profile = &profile

	scored := make([]scorer.Scored, len(candidates))
	for i, r := range candidates {
		scored[i] = scorer.Scored{Recipe: r, Score: scorer.Score(r, ctx) + modeBonus(day.Mode, r, ctx)}
	}
	scorer.Sort(scored)
	return scored[0], true
}

func modeBonus(mode DayMode, r recipe.Recipe, ctx scorer.Context) float64 {
	switch mode {
	case ModeMixItUp:
		if !containsCuisine(ctx.PreferredCuisines, r.Cuisine) {
			return mixItUpBonus
		}
	case ModeGoNuts:
		if r.AdventureLevel > 2 {
			return float64(goNutsBonusPerStep * (r.AdventureLevel - 2))
		}
	}
	return 0
}

func assign(day PlanDay, s scorer.Scored) PlanDay {
	day.RecipeID = s.Recipe.ID
	day.RecipeTitle = s.Recipe.Title
	day.Cuisine = s.Recipe.Cuisine
	day.Minutes = s.Recipe.TotalTimeMinutes
	day.Score = s.Score
	return day
}

// leftoverSource picks the title a leftover day reuses: the most recent
// earlier recipe with leftover ideas, else the most recent earlier recipe.
func leftoverSource(earlier []PlanDay, idx map[string]recipe.Recipe) string {
	fallback := ""
	for i := len(earlier) - 1; i >= 0; i-- {
		d := earlier[i]
		if !d.Assigned() {
			continue
		}
		if len(idx[d.RecipeID].LeftoverIdeas) > 0 {
			return d.RecipeTitle
		}
		if fallback == "" {
			fallback = d.RecipeTitle
		}
	}
	return fallback
}

// refreshLeftovers re-derives leftover titles after assignments change.
func refreshLeftovers(p *WeeklyPlanProposal, idx map[string]recipe.Recipe) {
	for i := range p.Days {
		if p.Days[i].Mode == ModeLeftover {
			p.Days[i].LeftoverSourceTitle = leftoverSource(p.Days[:i], idx)
		}
	}
}

func previousCuisines(earlier []PlanDay) []string {
	var out []string
	for i := len(earlier) - 1; i >= 0 && len(out) < varietyLookback; i-- {
		if earlier[i].Assigned() {
			out = append(out, earlier[i].Cuisine)
		}
	}
	return out
}

func nextCuisines(later []PlanDay) []string {
	var out []string
	for i := 0; i < len(later) && len(out) < varietyLookback; i++ {
		if later[i].Assigned() {
			out = append(out, later[i].Cuisine)
		}
	}
	return out
}

func assignedIDs(days []PlanDay) map[string]bool {
	used := make(map[string]bool, len(days))
	for _, d := range days {
		if d.Assigned() {
			used[d.RecipeID] = true
		}
	}
	return used
}

func totals(p WeeklyPlanProposal, idx map[string]recipe.Recipe, c Constraints) (float64, float64) {
	servings := c.servings()
	cost := 0.0
	usedPantry := make(map[string]bool)
	for _, d := range p.Days {
		if !d.Assigned() {
			continue
		}
		r := idx[d.RecipeID]
		cost += r.CostPerServe * float64(servings)
		for _, name := range c.Context.Pantry.Used(r) {
			usedPantry[name] = true
		}
	}
	util := 0.0
	if n := c.Context.Pantry.Len(); n > 0 {
		util = float64(len(usedPantry)) / float64(n)
	}
	return cost, util
}

// ShoppingItems returns the sorted, de-duplicated normalised names of non-staple
// ingredients of the planned recipes that are missing from the pantry.
func ShoppingItems(p WeeklyPlanProposal, recipes []recipe.Recipe, pan pantry.Index) []string {
	idx := recipe.Index(recipes)
	seen := make(map[string]bool)
	var items []string
	for _, d := range p.Days {
		if !d.Assigned() {
			continue
		}
		for _, name := range pan.Missing(idx[d.RecipeID]) {
			if !seen[name] {
				seen[name] = true
				items = append(items, name)
			}
		}
	}
	sort.Strings(items)
	return items
}

// GetNextMonday returns midnight of the first Monday strictly after now's date.
func GetNextMonday(now time.Time) time.Time {
	days := (8 - int(now.Weekday())) % 7
	if days == 0 {
		days = 7
	}
	y, m, d := now.AddDate(0, 0, days).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

func containsCuisine(list []string, cuisine string) bool {
	if cuisine == "" {
		return false
	}
	for _, c := range list {
		if strings.EqualFold(c, cuisine) {
			return true
		}
	}
	return false
}
