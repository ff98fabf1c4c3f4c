package app

import (
	"context"
	"fmt"
	"time"

	"cookdna/internal/feed"
	"cookdna/internal/metrics"
	"cookdna/internal/pantry"
	"cookdna/internal/personality"
	"cookdna/internal/planner"
	"cookdna/internal/recipe"
	"cookdna/internal/scorer"
	"cookdna/internal/shopping"
)

const (
	expiryWarning = 3 * 24 * time.Hour
	recentCooks   = 14 * 24 * time.Hour
)

// FeedRequest is what a client sends when it asks for a feed batch.
type FeedRequest struct {
	// Preferences carries the user's cuisine, spice, time and budget
	// settings. Time, profile and history fields are filled in by the app.
	Preferences scorer.Context
	Pantry      []pantry.Item
	Dismissed   []string
	Pools       feed.Pools
}

// BuildFeed assembles one feed batch for the user. Users without a profile
// still get a feed, scored without personality fit.
func (a *App) BuildFeed(ctx context.Context, userID string, req FeedRequest) ([]feed.Card, error) {
	started := time.Now()
	now := a.now()

	profile, err := a.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	recipes, err := a.recipeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	cooldowns, err := a.cooldownRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cooldowns: %w", err)
	}
	sctx, err := a.scoringContext(ctx, userID, req.Preferences, req.Pantry, profile, now)
	if err != nil {
		return nil, err
	}

	pools := req.Pools
	if len(pools.ExpiryAlerts) == 0 {
		if expiring := sctx.Pantry.ExpiringSoon(now, expiryWarning); len(expiring) > 0 {
			names := make([]string, len(expiring))
			for i, it := range expiring {
				names[i] = it.Name
			}
			pools.ExpiryAlerts = []feed.ExpiryAlertCard{{Items: names}}
		}
	}
	if len(pools.Milestones) == 0 && profile != nil {
		if ms, ok := reachedMilestone(profile.Confidence); ok {
			pools.Milestones = []feed.DNAMilestoneCard{{Milestone: ms.Name, Confidence: profile.Confidence}}
		}
	}

	cards := a.assembler.Assemble(feed.Request{
		Recipes:   recipes,
		Context:   sctx,
		Dismissed: req.Dismissed,
		Cooldowns: cooldowns,
		Now:       now,
		Pools:     pools,
	})
	a.track(ctx, "build_feed", len(cards), started)
	return cards, nil
}

// PlanRequest describes the week the user wants planned.
type PlanRequest struct {
	// WeekStart defaults to the next Monday.
	WeekStart   time.Time
	DayModes    map[int]planner.DayMode
	Preferences scorer.Context
	Pantry      []pantry.Item
}

// ProposePlan generates a weekly plan proposal. The proposal is not stored
// until AcceptPlan.
func (a *App) ProposePlan(ctx context.Context, userID string, req PlanRequest) (planner.WeeklyPlanProposal, error) {
	started := time.Now()
	recipes, c, err := a.planInputs(ctx, userID, req)
	if err != nil {
		return planner.WeeklyPlanProposal{}, err
	}
	weekStart := req.WeekStart
	if weekStart.IsZero() {
		weekStart = planner.GetNextMonday(a.now())
	}

	p := a.generator.Generate(recipes, weekStart, c)

	unassigned := 0
	for _, d := range p.Days {
		if d.Mode != planner.ModeSkip && !d.Assigned() {
			unassigned++
		}
	}
	if unassigned > 0 {
		logger(userID).Warn().Int("days", unassigned).Msg("Plan has days without a fitting recipe")
	}
	metrics.RecordUnassignedDays(unassigned)
	a.track(ctx, "propose_plan", len(p.RecipeIDs()), started)
	return p, nil
}

// SwapDay replaces the recipe on one day of a proposal.
func (a *App) SwapDay(ctx context.Context, userID string, p planner.WeeklyPlanProposal, index int, req PlanRequest) (planner.WeeklyPlanProposal, error) {
	recipes, c, err := a.planInputs(ctx, userID, req)
	if err != nil {
		return planner.WeeklyPlanProposal{}, err
	}
	return a.generator.SwapDay(p, index, recipes, c)
}

// AcceptPlan finalises a proposal, stores it and stores its shopping list.
// Ingredients found in the pantry are left off the list.
func (a *App) AcceptPlan(ctx context.Context, userID string, p planner.WeeklyPlanProposal, items []pantry.Item) (*shopping.ShoppingList, error) {
	started := time.Now()
	accepted := p.Accept()
	if err := a.planRepo.Save(ctx, userID, accepted); err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}

	recipes, err := a.recipeRepo.GetByIds(ctx, accepted.RecipeIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to load planned recipes: %w", err)
	}
	list := &shopping.ShoppingList{
		UserID:     userID,
		MealPlanID: accepted.ID,
		Items:      planner.ShoppingItems(accepted, recipes, pantry.NewIndex(items)),
		CreatedAt:  a.now(),
	}
	id, err := a.shoppingRepo.Save(ctx, list)
	if err != nil {
		return nil, fmt.Errorf("failed to save shopping list: %w", err)
	}
	list.ID = id

	logger(userID).Info().Str("plan", accepted.ID).Int("items", len(list.Items)).Msg("Plan accepted")
	a.track(ctx, "accept_plan", len(list.Items), started)
	return list, nil
}

// LatestPlan returns the most recently accepted plan, or nil.
func (a *App) LatestPlan(ctx context.Context, userID string) (*planner.WeeklyPlanProposal, error) {
	p, err := a.planRepo.GetLatest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest plan: %w", err)
	}
	return p, nil
}

func (a *App) planInputs(ctx context.Context, userID string, req PlanRequest) ([]recipe.Recipe, planner.Constraints, error) {
	profile, err := a.Profile(ctx, userID)
	if err != nil {
		return nil, planner.Constraints{}, err
	}
	recipes, err := a.recipeRepo.List(ctx)
	if err != nil {
		return nil, planner.Constraints{}, fmt.Errorf("failed to list recipes: %w", err)
	}

	now := a.now()
	cooldowns, err := a.cooldownRepo.List(ctx, userID)
	if err != nil {
		return nil, planner.Constraints{}, fmt.Errorf("failed to load cooldowns: %w", err)
	}
	var exclude []string
	for id := range cooldowns {
		if cooldowns.Excludes(id, now) {
			exclude = append(exclude, id)
		}
	}

	var recent []string
	if weeks := a.policy.Plan.RecentCuisineWeeks; weeks > 0 {
		plans, err := a.planRepo.ListRecentByUserID(ctx, userID, weeks)
		if err != nil {
			return nil, planner.Constraints{}, fmt.Errorf("failed to load recent plans: %w", err)
		}
		for _, p := range plans {
			recent = append(recent, p.Cuisines()...)
		}
	}

	sctx, err := a.scoringContext(ctx, userID, req.Preferences, req.Pantry, &profile, now)
	if err != nil {
		return nil, planner.Constraints{}, err
	}
	return recipes, planner.Constraints{
		Profile:        profile,
		DayModes:       req.DayModes,
		Exclude:        exclude,
		RecentCuisines: recent,
		Servings:       a.policy.Plan.Servings,
		Context:        sctx,
	}, nil
}

// scoringContext completes the user's preferences with the clock, the pantry,
// the profile and the recipes cooked in the last two weeks.
func (a *App) scoringContext(ctx context.Context, userID string, prefs scorer.Context, items []pantry.Item, profile *personality.Profile, now time.Time) (scorer.Context, error) {
	signals, err := a.profileRepo.ListSignalsSince(ctx, userID, now.Add(-recentCooks))
	if err != nil {
		return scorer.Context{}, fmt.Errorf("failed to load recent cooks: %w", err)
	}
	sctx := prefs
	sctx.Hour = now.Hour()
	sctx.DayOfWeek = int(now.Weekday())
	sctx.Month = now.Month()
	sctx.Pantry = pantry.NewIndex(items)
	sctx.Profile = profile
	sctx.RecentlyCooked = nil
	for _, s := range signals {
		sctx.RecentlyCooked = append(sctx.RecentlyCooked, s.RecipeID)
	}
	return sctx, nil
}

// reachedMilestone returns the highest milestone at or below confidence.
func reachedMilestone(confidence float64) (personality.Milestone, bool) {
	var (
		best personality.Milestone
		ok   bool
	)
	for _, ms := range personality.Milestones {
		if ms.Threshold <= confidence {
			best, ok = ms, true
		}
	}
	return best, ok
}
