package planner

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"cookdna/internal/database"
	"cookdna/internal/pantry"
	"cookdna/internal/personality"
	"cookdna/internal/recipe"
	"cookdna/internal/scorer"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-10-26 is a Monday.
var weekStart = time.Date(2026, 10, 26, 0, 0, 0, 0, time.UTC)

func mk(id, cuisine string, minutes, adventure int) recipe.Recipe {
	return recipe.Recipe{
		ID:               id,
		Title:            "Title " + id,
		Cuisine:          cuisine,
		TotalTimeMinutes: minutes,
		AdventureLevel:   adventure,
		CostPerServe:     5,
	}
}

func constraintsFor(a personality.Archetype) Constraints {
	return Constraints{Profile: personality.ClassifyFromOnboarding(a)}
}

// onlyMonday skips every day except Monday.
func onlyMonday(mode DayMode) map[int]DayMode {
	return map[int]DayMode{0: ModeSkip, 1: mode, 2: ModeSkip, 3: ModeSkip, 4: ModeSkip, 5: ModeSkip, 6: ModeSkip}
}

func newGenerator() *Generator {
	return NewGenerator(zerolog.Nop())
}

func TestGenerateAlwaysSevenDays(t *testing.T) {
	p := newGenerator().Generate(nil, weekStart, constraintsFor(personality.WeekdayHero))

	require.Len(t, p.Days, 7)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, StatusDraft, p.Status)
	for i, d := range p.Days {
		assert.Equal(t, weekStart.AddDate(0, 0, i), d.Date)
		assert.Equal(t, int(d.Date.Weekday()), d.DayOfWeek)
		assert.False(t, d.Assigned())
		assert.Zero(t, d.Score)
	}
	assert.Equal(t, 1, p.Days[0].DayOfWeek)
	assert.Equal(t, 0, p.Days[6].DayOfWeek)
	assert.Zero(t, p.EstimatedCost)
	assert.Zero(t, p.PantryUtilisation)
}

func TestGenerateSkipDay(t *testing.T) {
	var pool []recipe.Recipe
	for _, c := range []string{"thai", "italian", "greek", "mexican", "indian", "french", "korean", "lebanese"} {
		pool = append(pool, mk(c+"-1", c, 20, 2))
	}
	c := constraintsFor(personality.WeekdayHero)
	c.DayModes = map[int]DayMode{3: ModeSkip}

	p := newGenerator().Generate(pool, weekStart, c)

	wed := p.Days[2]
	assert.Equal(t, 3, wed.DayOfWeek)
	assert.Equal(t, ModeSkip, wed.Mode)
	assert.False(t, wed.Assigned())
	assert.Zero(t, wed.Score)
	for i, d := range p.Days {
		if i != 2 {
			assert.True(t, d.Assigned(), "day %d", i)
		}
	}
}

func TestGenerateVarietyAndNoRepeats(t *testing.T) {
	var pool []recipe.Recipe
	for _, c := range []string{"a", "b", "c"} {
		for _, n := range []string{"1", "2", "3"} {
			pool = append(pool, mk(c+n, c, 20, 2))
		}
	}
	p := newGenerator().Generate(pool, weekStart, constraintsFor(personality.WeekdayHero))

	seen := make(map[string]bool)
	var cuisines []string
	for _, d := range p.Days {
		require.True(t, d.Assigned())
		assert.False(t, seen[d.RecipeID], "recipe %s planned twice", d.RecipeID)
		seen[d.RecipeID] = true
		cuisines = append(cuisines, d.Cuisine)
	}
	for i := range cuisines {
		for back := 1; back <= 2 && i-back >= 0; back++ {
			assert.NotEqual(t, cuisines[i-back], cuisines[i], "day %d repeats cuisine of day %d", i, i-back)
		}
	}
	assert.Equal(t, []string{"a1", "b1", "c1", "a2", "b2", "c2", "a3"}, p.RecipeIDs(), "ties resolved by id")
}

func TestGenerateRelaxesCuisineHistory(t *testing.T) {
	c := constraintsFor(personality.WeekdayHero)
	c.RecentCuisines = []string{"Thai"}

	p := newGenerator().Generate([]recipe.Recipe{mk("green-curry", "thai", 30, 2)}, weekStart, c)

	assert.Equal(t, "green-curry", p.Days[0].RecipeID)
	for _, d := range p.Days[1:] {
		assert.False(t, d.Assigned(), "pool exhausted")
	}
}

func TestGenerateTimeCeilings(t *testing.T) {
	pool := []recipe.Recipe{mk("twenty", "thai", 20, 1)}

	t.Run("UsualRespectsDailyCeiling", func(t *testing.T) {
		c := constraintsFor(personality.ThrillSeeker)
		c.DayModes = onlyMonday(ModeUsual)
		p := newGenerator().Generate(pool, weekStart, c)
		assert.False(t, p.Days[0].Assigned(), "Monday ceiling is 15 minutes")
	})

	t.Run("MixItUpAddsFifteen", func(t *testing.T) {
		c := constraintsFor(personality.ThrillSeeker)
		c.DayModes = onlyMonday(ModeMixItUp)
		p := newGenerator().Generate(pool, weekStart, c)
		assert.Equal(t, "twenty", p.Days[0].RecipeID)
	})

	t.Run("GoNutsPrefersAdventure", func(t *testing.T) {
		calm := mk("calm", "italian", 10, 1)
		calm.AvgRating = 5
		wild := mk("wild", "ethiopian", 25, 3)
		c := constraintsFor(personality.ThrillSeeker)
		c.DayModes = onlyMonday(ModeGoNuts)
		p := newGenerator().Generate([]recipe.Recipe{calm, wild}, weekStart, c)
		assert.Equal(t, "wild", p.Days[0].RecipeID)
	})

	t.Run("HybridUsesWeekendArchetype", func(t *testing.T) {
		slow := mk("slow", "french", 80, 2)
		c := constraintsFor(personality.ThrillSeeker)
		c.Profile = c.Profile.WithHybrid(&personality.HybridMode{
			WeekdayArchetype: personality.ThrillSeeker,
			WeekendArchetype: personality.WeekendWarrior,
		})
		p := newGenerator().Generate([]recipe.Recipe{slow}, weekStart, c)
		assert.False(t, p.Days[0].Assigned())
		assert.Equal(t, "slow", p.Days[5].RecipeID, "Saturday allows 90 minutes")
	})
}

func TestGenerateLeftovers(t *testing.T) {
	stew := mk("stew", "italian", 40, 2)
	stew.AvgRating = 5
	stew.LeftoverIdeas = []string{"Stew pie"}
	salad := mk("salad", "greek", 15, 1)

	t.Run("PrefersRecipeWithLeftoverIdeas", func(t *testing.T) {
		c := constraintsFor(personality.WeekdayHero)
		c.DayModes = map[int]DayMode{3: ModeLeftover, 4: ModeSkip, 5: ModeSkip, 6: ModeSkip, 0: ModeSkip}
		p := newGenerator().Generate([]recipe.Recipe{stew, salad}, weekStart, c)

		assert.Equal(t, "stew", p.Days[0].RecipeID)
		assert.Equal(t, "salad", p.Days[1].RecipeID)
		wed := p.Days[2]
		assert.Equal(t, ModeLeftover, wed.Mode)
		assert.False(t, wed.Assigned())
		assert.Equal(t, "Title stew", wed.LeftoverSourceTitle)
		assert.Zero(t, wed.Score)
	})

	t.Run("FirstDayFallsBackToUsual", func(t *testing.T) {
		c := constraintsFor(personality.WeekdayHero)
		c.DayModes = map[int]DayMode{1: ModeLeftover}
		p := newGenerator().Generate([]recipe.Recipe{stew, salad}, weekStart, c)
		assert.Equal(t, ModeUsual, p.Days[0].Mode)
		assert.True(t, p.Days[0].Assigned())
	})
}

func TestGenerateTotals(t *testing.T) {
	a := mk("a", "thai", 20, 2)
	a.CostPerServe = 5
	a.Ingredients = []recipe.Ingredient{{Name: "Onion"}, {Name: "Chicken"}, {Name: "Oil", Staple: true}}
	b := mk("b", "greek", 20, 2)
	b.CostPerServe = 3
	b.Ingredients = []recipe.Ingredient{{Name: "Rice"}, {Name: "Feta"}}

	c := constraintsFor(personality.WeekdayHero)
	c.DayModes = map[int]DayMode{3: ModeSkip, 4: ModeSkip, 5: ModeSkip, 6: ModeSkip, 0: ModeSkip}
	c.Context = scorer.Context{Pantry: pantry.NewIndex([]pantry.Item{{Name: "onions"}, {Name: "rice"}, {Name: "milk"}, {Name: "eggs"}})}

	p := newGenerator().Generate([]recipe.Recipe{a, b}, weekStart, c)
	require.Len(t, p.RecipeIDs(), 2)
	assert.Equal(t, DefaultServings, p.Servings)
	assert.InDelta(t, 16.0, p.EstimatedCost, 1e-9)
	assert.InDelta(t, 0.5, p.PantryUtilisation, 1e-9)

	items := ShoppingItems(p, []recipe.Recipe{a, b}, c.Context.Pantry)
	assert.Equal(t, []string{"chicken", "feta"}, items)

	c.Servings = 4
	p = newGenerator().Generate([]recipe.Recipe{a, b}, weekStart, c)
	assert.InDelta(t, 32.0, p.EstimatedCost, 1e-9)
}

func TestSwapDay(t *testing.T) {
	pool := []recipe.Recipe{
		mk("a1", "a", 20, 2), mk("b1", "b", 20, 2), mk("c1", "c", 20, 2),
		mk("d1", "d", 20, 2), mk("e1", "e", 20, 2), mk("f1", "f", 20, 2),
		mk("g1", "g", 20, 2), mk("h1", "h", 20, 2), mk("i1", "i", 20, 2),
	}
	c := constraintsFor(personality.WeekdayHero)
	c.DayModes = map[int]DayMode{5: ModeSkip}
	g := newGenerator()
	original := g.Generate(pool, weekStart, c)
	snapshot := original

	swapped, err := g.SwapDay(original, 0, pool, c)
	require.NoError(t, err)

	assert.Equal(t, snapshot, original, "input proposal must not change")
	assert.NotEqual(t, original.Days[0].RecipeID, swapped.Days[0].RecipeID)
	assert.True(t, swapped.Days[0].Assigned())
	for i := 1; i < 7; i++ {
		assert.Equal(t, original.Days[i], swapped.Days[i])
		assert.NotEqual(t, swapped.Days[0].RecipeID, swapped.Days[i].RecipeID)
	}
	assert.Equal(t, original.ID, swapped.ID)

	t.Run("OutOfRange", func(t *testing.T) {
		_, err := g.SwapDay(original, 7, pool, c)
		assert.ErrorIs(t, err, ErrDayOutOfRange)
		_, err = g.SwapDay(original, -1, pool, c)
		assert.ErrorIs(t, err, ErrDayOutOfRange)
	})

	t.Run("SkipDayUnchanged", func(t *testing.T) {
		same, err := g.SwapDay(original, 4, pool, c)
		require.NoError(t, err)
		assert.Equal(t, original, same)
	})

	t.Run("KeepsVarietyWithFollowingDays", func(t *testing.T) {
		pool := []recipe.Recipe{
			mk("a1", "a", 20, 2), mk("b1", "b", 20, 2), mk("c1", "c", 20, 2),
			mk("d1", "d", 20, 2), mk("d2", "d", 20, 2), mk("d3", "d", 20, 2),
			mk("e1", "e", 20, 2), mk("f1", "f", 20, 2), mk("g1", "g", 20, 2), mk("h1", "h", 20, 2),
		}
		c := constraintsFor(personality.WeekdayHero)
		p := g.Generate(pool, weekStart, c)
		require.Equal(t, "d", p.Days[3].Cuisine)

		swapped, err := g.SwapDay(p, 2, pool, c)
		require.NoError(t, err)
		assert.NotEqual(t, "d", swapped.Days[2].Cuisine)
		assertVariety(t, swapped)
	})

	t.Run("NoAlternative", func(t *testing.T) {
		small := pool[:6]
		p := g.Generate(small, weekStart, c)
		_, err := g.SwapDay(p, 0, small, c)
		assert.ErrorIs(t, err, ErrNoAlternative)
	})
}

// assertVariety checks that no assigned day repeats a cuisine from the two
// assigned days before it.
func assertVariety(t *testing.T, p WeeklyPlanProposal) {
	t.Helper()
	var assigned []PlanDay
	for _, d := range p.Days {
		if d.Assigned() {
			assigned = append(assigned, d)
		}
	}
	for i, d := range assigned {
		for j := max(0, i-varietyLookback); j < i; j++ {
			assert.NotEqual(t, assigned[j].Cuisine, d.Cuisine, "%s and %s share a cuisine", assigned[j].Date.Weekday(), d.Date.Weekday())
		}
	}
}

func TestGetNextMonday(t *testing.T) {
	loc := time.UTC
	cases := map[time.Time]time.Time{
		time.Date(2026, 10, 19, 9, 0, 0, 0, loc):  time.Date(2026, 10, 26, 0, 0, 0, 0, loc),
		time.Date(2026, 10, 25, 23, 0, 0, 0, loc): time.Date(2026, 10, 26, 0, 0, 0, 0, loc),
		time.Date(2026, 10, 21, 12, 0, 0, 0, loc): time.Date(2026, 10, 26, 0, 0, 0, 0, loc),
		time.Date(2026, 12, 29, 12, 0, 0, 0, loc): time.Date(2027, 1, 4, 0, 0, 0, 0, loc),
	}
	for in, want := range cases {
		assert.Equal(t, want, GetNextMonday(in), "from %s", in)
	}
}

func TestDayModeText(t *testing.T) {
	for m, name := range dayModeNames {
		parsed, err := ParseDayMode(name)
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
	_, err := ParseDayMode("brunch")
	assert.Error(t, err)

	data, err := json.Marshal(PlanDay{Mode: ModeGoNuts})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"day_mode":"go_nuts"`)
	assert.NotContains(t, string(data), "assigned_recipe_id")
}

func TestPlanRepository(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	defer db.Close()
	repo := NewPlanRepository(db.SQL)

	g := newGenerator()
	pool := []recipe.Recipe{mk("a", "thai", 20, 2), mk("b", "greek", 20, 2)}
	c := constraintsFor(personality.WeekdayHero)

	first := g.Generate(pool, weekStart, c).Accept()
	require.NoError(t, repo.Save(ctx, "u1", first))

	exists, err := repo.ExistsForWeek(ctx, "u1", weekStart)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.ExistsForWeek(ctx, "u2", weekStart)
	require.NoError(t, err)
	assert.False(t, exists)

	replacement := g.Generate(pool, weekStart, c).Accept()
	require.NoError(t, repo.Save(ctx, "u1", replacement))
	old, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, old, "replaced for the same week")

	next := g.Generate(pool, weekStart.AddDate(0, 0, 7), c).Accept()
	require.NoError(t, repo.Save(ctx, "u1", next))

	latest, err := repo.GetLatest(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, next.ID, latest.ID)
	assert.Equal(t, StatusFinal, latest.Status)
	assert.Equal(t, next.RecipeIDs(), latest.RecipeIDs())

	recent, err := repo.ListRecentByUserID(ctx, "u1", 5)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	none, err := repo.GetLatest(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, none)
}
