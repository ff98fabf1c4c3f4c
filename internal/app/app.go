package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cookdna/internal/config"
	"cookdna/internal/database"
	"cookdna/internal/feed"
	"cookdna/internal/ghost"
	"cookdna/internal/metrics"
	"cookdna/internal/personality"
	"cookdna/internal/planner"
	"cookdna/internal/recipe"
	"cookdna/internal/shopping"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrNotOnboarded is returned for users without a stored profile.
var ErrNotOnboarded = errors.New("user has not picked an archetype yet")

// App holds the application's dependencies.
type App struct {
	ghostClient ghost.Client
	policy      *config.Policy
	model       *personality.Model
	assembler   *feed.Assembler
	generator   *planner.Generator

	recipeRepo   *recipe.Repository
	profileRepo  *personality.Repository
	cooldownRepo *feed.CooldownRepository
	planRepo     *planner.PlanRepository
	shoppingRepo *shopping.Repository
	metricsStore *metrics.Store

	now func() time.Time
}

// NewApp wires the repositories and domain services on top of db.
func NewApp(db *database.DB, ghostClient ghost.Client, policy *config.Policy) (*App, error) {
	model, err := personality.NewModel(policy.Breakpoints)
	if err != nil {
		return nil, fmt.Errorf("failed to build personality model: %w", err)
	}
	return &App{
		ghostClient:  ghostClient,
		policy:       policy,
		model:        model,
		assembler:    feed.NewAssembler(policy.Feed, log.Logger),
		generator:    planner.NewGenerator(log.Logger),
		recipeRepo:   recipe.NewRepository(db.SQL),
		profileRepo:  personality.NewRepository(db.SQL),
		cooldownRepo: feed.NewCooldownRepository(db.SQL),
		planRepo:     planner.NewPlanRepository(db.SQL),
		shoppingRepo: shopping.NewRepository(db.SQL),
		metricsStore: metrics.NewStore(db.SQL),
		now:          time.Now,
	}, nil
}

// MetricsStore exposes the execution metrics store to the CLI.
func (a *App) MetricsStore() *metrics.Store {
	return a.metricsStore
}

// Onboard stores the initial profile for the archetype the user picked.
// Picking again starts the profile over.
func (a *App) Onboard(ctx context.Context, userID string, selection personality.Archetype) (personality.Profile, error) {
	if !selection.Valid() {
		return personality.Profile{}, personality.ErrUnknownArchetype
	}
	p := personality.ClassifyFromOnboarding(selection)
	p.UpdatedAt = a.now()
	if err := a.profileRepo.SaveProfile(ctx, userID, p); err != nil {
		return personality.Profile{}, fmt.Errorf("failed to save profile: %w", err)
	}
	if err := a.profileRepo.SaveCounters(ctx, userID, personality.Counters{}); err != nil {
		return personality.Profile{}, fmt.Errorf("failed to reset counters: %w", err)
	}
	log.Info().Str("user", userID).Stringer("archetype", selection).Msg("User onboarded")
	return p, nil
}

// Profile returns the stored profile or ErrNotOnboarded.
func (a *App) Profile(ctx context.Context, userID string) (personality.Profile, error) {
	p, err := a.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		return personality.Profile{}, fmt.Errorf("failed to load profile: %w", err)
	}
	if p == nil {
		return personality.Profile{}, ErrNotOnboarded
	}
	return *p, nil
}

// Cook is one cook reported by the user.
type Cook struct {
	RecipeID string
	Minutes  int
	// Rating is 1..5, or 0 when the user did not rate the cook.
	Rating   int
	CookedAt time.Time
}

// CookResult is the outcome of RecordCooks.
type CookResult struct {
	Profile    personality.Profile
	Milestones []personality.Milestone
	// Drift is the archetype recent cooks point to, when it differs from the
	// declared one. The profile is not changed; see AcceptDrift.
	Drift *personality.Archetype
}

// RecordCooks stores new cook signals and re-evaluates the profile over the
// policy's signal window: confidence, hybrid split, milestones and drift.
// Every cooked recipe goes on cooldown according to its rating.
func (a *App) RecordCooks(ctx context.Context, userID string, cooks []Cook) (CookResult, error) {
	started := time.Now()
	profile, err := a.Profile(ctx, userID)
	if err != nil {
		return CookResult{}, err
	}

	signals := make([]personality.CookSignal, 0, len(cooks))
	for _, c := range cooks {
		rec, err := a.recipeRepo.Get(ctx, c.RecipeID)
		if err != nil {
			return CookResult{}, fmt.Errorf("failed to load recipe %s: %w", c.RecipeID, err)
		}
		if rec == nil {
			return CookResult{}, fmt.Errorf("unknown recipe %q", c.RecipeID)
		}
		if c.CookedAt.IsZero() {
			c.CookedAt = a.now()
		}
		minutes := c.Minutes
		if minutes <= 0 {
			minutes = rec.TotalTimeMinutes
		}
		dow := int(c.CookedAt.Weekday())
		weekend := personality.IsWeekend(dow)
		limits := personality.GetDailyConstraints(profile.ArchetypeFor(weekend), dow, weekend)
		signals = append(signals, personality.CookSignal{
			RecipeID:        rec.ID,
			CookMinutes:     minutes,
			IngredientCount: rec.IngredientCount(),
			Cuisine:         rec.Cuisine,
			IsWeekend:       weekend,
			PersonalityFit:  limits.Fits(minutes, rec.IngredientCount(), weekend),
			CookedAt:        c.CookedAt,
		})
	}
	if err := a.profileRepo.AppendSignals(ctx, userID, signals); err != nil {
		return CookResult{}, fmt.Errorf("failed to store cook signals: %w", err)
	}
	for i, c := range cooks {
		entry := a.policy.Cooldown.Entry(feed.ReasonCooked, c.Rating, signals[i].CookedAt)
		if err := a.cooldownRepo.Save(ctx, userID, c.RecipeID, entry); err != nil {
			return CookResult{}, fmt.Errorf("failed to save cooldown: %w", err)
		}
	}

	now := a.now()
	window := time.Duration(a.policy.SignalWindowDays) * 24 * time.Hour
	history, err := a.profileRepo.ListSignalsSince(ctx, userID, now.Add(-window))
	if err != nil {
		return CookResult{}, fmt.Errorf("failed to load cook signals: %w", err)
	}
	counters, err := a.profileRepo.GetCounters(ctx, userID)
	if err != nil {
		return CookResult{}, fmt.Errorf("failed to load counters: %w", err)
	}
	summary := personality.Summarise(history, counters, now, window)

	old := profile.Confidence
	next := a.model.ComputeConfidence(old, summary, profile.Primary)
	updated := profile.WithConfidence(next).WithHybrid(a.model.DetectHybridMode(summary))
	updated.UpdatedAt = now

	result := CookResult{
		Milestones: personality.CrossedMilestones(old, updated.Confidence),
		Drift:      a.model.DetectDrift(summary, profile.Primary),
	}
	for _, ms := range result.Milestones {
		log.Info().Str("user", userID).Str("milestone", ms.Name).Float64("confidence", updated.Confidence).Msg("Milestone unlocked")
		metrics.RecordMilestone(ms.Name)
	}
	if result.Drift != nil {
		log.Warn().Str("user", userID).
			Stringer("declared", profile.Primary).
			Stringer("observed", *result.Drift).
			Msg("Cooking behaviour drifted from declared archetype")
		metrics.RecordDrift(profile.Primary.String(), result.Drift.String())
	}
	if updated.Hybrid != nil && profile.Hybrid == nil {
		log.Info().Str("user", userID).
			Stringer("weekday", updated.Hybrid.WeekdayArchetype).
			Stringer("weekend", updated.Hybrid.WeekendArchetype).
			Msg("Hybrid mode detected")
	}

	if err := a.profileRepo.SaveProfile(ctx, userID, updated); err != nil {
		return CookResult{}, fmt.Errorf("failed to save profile: %w", err)
	}
	result.Profile = updated
	a.track(ctx, "record_cooks", len(cooks), started)
	return result, nil
}

// AcceptDrift re-anchors the profile on the archetype the user's cooking drifted to.
func (a *App) AcceptDrift(ctx context.Context, userID string, to personality.Archetype) (personality.Profile, error) {
	profile, err := a.Profile(ctx, userID)
	if err != nil {
		return personality.Profile{}, err
	}
	updated := personality.AcceptDrift(profile, to)
	updated.UpdatedAt = a.now()
	if err := a.profileRepo.SaveProfile(ctx, userID, updated); err != nil {
		return personality.Profile{}, fmt.Errorf("failed to save profile: %w", err)
	}
	log.Info().Str("user", userID).Stringer("from", profile.Primary).Stringer("to", to).Msg("Drift accepted")
	return updated, nil
}

// Dismiss hides a recipe from the feed for the dismissal window and, for
// onboarded users, counts the dismissal as engagement.
func (a *App) Dismiss(ctx context.Context, userID, recipeID string) error {
	return a.react(ctx, userID, recipeID, feed.ReasonDismissed, func(c *personality.Counters) { c.FeedDismisses++ })
}

// Favourite removes a recipe from discovery for good and counts the like.
func (a *App) Favourite(ctx context.Context, userID, recipeID string) error {
	return a.react(ctx, userID, recipeID, feed.ReasonFavourited, func(c *personality.Counters) { c.FeedLikes++ })
}

func (a *App) react(ctx context.Context, userID, recipeID string, reason feed.Reason, bump func(*personality.Counters)) error {
	entry := a.policy.Cooldown.Entry(reason, 0, a.now())
	if err := a.cooldownRepo.Save(ctx, userID, recipeID, entry); err != nil {
		return fmt.Errorf("failed to save cooldown: %w", err)
	}
	profile, err := a.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		// Engagement counters live on the profile.
		return nil
	}
	counters, err := a.profileRepo.GetCounters(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load counters: %w", err)
	}
	bump(&counters)
	if err := a.profileRepo.SaveCounters(ctx, userID, counters); err != nil {
		return fmt.Errorf("failed to save counters: %w", err)
	}
	return nil
}

// PurgeCooldowns drops expired cooldown rows.
func (a *App) PurgeCooldowns(ctx context.Context) (int64, error) {
	n, err := a.cooldownRepo.PurgeExpired(ctx, a.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge cooldowns: %w", err)
	}
	return n, nil
}

// track records an operation, logging rather than failing when the metrics
// store is unavailable.
func (a *App) track(ctx context.Context, operation string, items int, started time.Time) {
	if err := a.metricsStore.Track(ctx, operation, items, started); err != nil {
		log.Warn().Err(err).Str("operation", operation).Msg("Failed to record metrics")
	}
}

// logger returns a contextual logger for one user.
func logger(userID string) *zerolog.Logger {
	l := log.With().Str("user", userID).Logger()
	return &l
}
