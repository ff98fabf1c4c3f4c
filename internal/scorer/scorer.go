// Package scorer ranks catalogue recipes against a user's context. Every
// function here is pure: the same recipe and context always produce the same score.
package scorer

import (
	"math"
	"sort"
	"time"

	"cookdna/internal/pantry"
	"cookdna/internal/personality"
	"cookdna/internal/recipe"
)

// BudgetTier is the user's spending preference.
type BudgetTier string

const (
	BudgetTight    BudgetTier = "tight"
	BudgetModerate BudgetTier = "moderate"
	BudgetGenerous BudgetTier = "generous"
)

// Component weights. Each component is capped at its own weight.
const (
	preferredCuisineBonus = 15
	likedCuisineBonus     = 10
	timeBudgetBonus       = 5
	pantryMatchMax        = 20
	recentlyCookedPenalty = -15
	highRatingBonus       = 8
	popularBonus          = 4
	likedBonus            = 3
	weekendAdventureBonus = 6
	cheapMealBonus        = 4
	seasonBonus           = 10
	dinnerSlotBonus       = 5
	quickWeeknightBonus   = 5
	spiceMatchBonus       = 3
	personalityTimeFit    = 8
	personalityTimeNear   = 4
	personalityIngrFit    = 4
	personalityTagBonus   = 8

	cheapCostPerServe  = 4.0
	quickMealMinutes   = 20
	nearLimitTolerance = 10
)

// AllYear is the season tag that matches every month.
const AllYear = "all-year"

// Context is everything about the moment and the user that influences a score.
type Context struct {
	Hour      int
	DayOfWeek int // 0=Sunday..6=Saturday
	Month     time.Month

	PreferredCuisines []string
	LikedCuisines     []string
	AdventureTarget   int
	SpiceTarget       int
	WeeknightMinutes  int
	WeekendMinutes    int
	Budget            BudgetTier

	Pantry         pantry.Index
	RecentlyCooked []string

	// Profile and Constraints are optional. With neither set the
	// personality component contributes nothing.
	Profile     *personality.Profile
	Constraints *personality.Constraints
}

// IsWeekend reports whether the context falls on a Saturday or Sunday.
func (c Context) IsWeekend() bool {
	return personality.IsWeekend(c.DayOfWeek)
}

// Breakdown is the per-component contribution to a score.
type Breakdown struct {
	Relevance   float64 `json:"relevance"`
	Pantry      float64 `json:"pantry"`
	Freshness   float64 `json:"freshness"`
	Engagement  float64 `json:"engagement"`
	Diversity   float64 `json:"diversity"`
	Seasonality float64 `json:"seasonality"`
	DinnerSlot  float64 `json:"dinner_slot"`
	QuickMeal   float64 `json:"quick_meal"`
	Spice       float64 `json:"spice"`
	Personality float64 `json:"personality"`
}

// Total is the floored sum of all components.
func (b Breakdown) Total() float64 {
	sum := b.Relevance + b.Pantry + b.Freshness + b.Engagement + b.Diversity +
		b.Seasonality + b.DinnerSlot + b.QuickMeal + b.Spice + b.Personality
	return math.Max(0, sum)
}

// Score returns the non-negative desirability of r in ctx.
func Score(r recipe.Recipe, ctx Context) float64 {
	return Explain(r, ctx).Total()
}

// Explain returns the individual score components for r in ctx.
func Explain(r recipe.Recipe, ctx Context) Breakdown {
	weekend := ctx.IsWeekend()
	var b Breakdown

	if contains(ctx.PreferredCuisines, r.Cuisine) {
		b.Relevance += preferredCuisineBonus
	}
	if contains(ctx.LikedCuisines, r.Cuisine) {
		b.Relevance += likedCuisineBonus
	}
	budget := ctx.WeeknightMinutes
	if weekend {
		budget = ctx.WeekendMinutes
	}
	if budget > 0 && r.TotalTimeMinutes <= budget {
		b.Relevance += timeBudgetBonus
	}

	b.Pantry = pantryMatchMax * ctx.Pantry.MatchRatio(r)

	for _, id := range ctx.RecentlyCooked {
		if id == r.ID {
			b.Freshness = recentlyCookedPenalty
			break
		}
	}

	if r.AvgRating >= 4 {
		b.Engagement += highRatingBonus
	}
	if r.CookedCount > 50 {
		b.Engagement += popularBonus
	}
	if r.LikesCount > 20 {
		b.Engagement += likedBonus
	}

	if weekend && r.AdventureLevel >= 3 {
		b.Diversity += weekendAdventureBonus
	}
	if ctx.Budget == BudgetTight && r.CostPerServe <= cheapCostPerServe {
		b.Diversity += cheapMealBonus
	}

	if r.HasSeason(append(SeasonsOf(ctx.Month), AllYear)...) {
		b.Seasonality = seasonBonus
	}

	if ctx.Hour >= 17 && ctx.Hour <= 21 {
		b.DinnerSlot = dinnerSlotBonus
	}
	if !weekend && ctx.Hour >= 18 && r.TotalTimeMinutes <= quickMealMinutes {
		b.QuickMeal = quickWeeknightBonus
	}

	if abs(r.SpiceLevel-ctx.SpiceTarget) <= 1 {
		b.Spice = spiceMatchBonus
	}

	b.Personality = personalityFit(r, ctx, weekend)
	return b
}

func personalityFit(r recipe.Recipe, ctx Context, weekend bool) float64 {
	if ctx.Profile == nil && ctx.Constraints == nil {
		return 0
	}

	var c personality.Constraints
	switch {
	case ctx.Constraints != nil:
		c = *ctx.Constraints
	default:
		c = personality.GetDailyConstraints(ctx.Profile.ArchetypeFor(weekend), ctx.DayOfWeek, weekend)
	}

	fit := 0.0
	limit := c.MaxCookTimeWeekday
	switch {
	case r.TotalTimeMinutes <= limit:
		fit += personalityTimeFit
	case r.TotalTimeMinutes <= limit+nearLimitTolerance:
		fit += personalityTimeNear
	}
	if r.IngredientCount() <= c.MaxIngredients {
		fit += personalityIngrFit
	}
	if ctx.Profile != nil && r.Personality.Eligible(ctx.Profile.ArchetypeFor(weekend)) {
		fit += personalityTagBonus
	}
	return fit
}

// Scored pairs a recipe with its score.
type Scored struct {
	Recipe recipe.Recipe
	Score  float64
}

// Rank scores every recipe and sorts them best first. Equal scores are
// ordered by recipe id so the result is fully deterministic.
func Rank(recipes []recipe.Recipe, ctx Context) []Scored {
	out := make([]Scored, len(recipes))
	for i, r := range recipes {
		out[i] = Scored{Recipe: r, Score: Score(r, ctx)}
	}
	Sort(out)
	return out
}

// Sort orders scored recipes by score descending, then id ascending.
func Sort(s []Scored) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].Score != s[j].Score {
			return s[i].Score > s[j].Score
		}
		return s[i].Recipe.ID < s[j].Recipe.ID
	})
}

func contains(list []string, v string) bool {
	if v == "" {
		return false
	}
	for _, s := range list {
		if equalFold(s, v) {
			return true
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
