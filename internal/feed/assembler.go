package feed

import (
	"fmt"
	"time"

	"cookdna/internal/recipe"
	"cookdna/internal/scorer"

	"github.com/rs/zerolog"
)

// Options are the feed composition limits.
type Options struct {
	BatchSize       int   `yaml:"batch_size" json:"batch_size"`
	MaxRecipeRun    int   `yaml:"max_recipe_run" json:"max_recipe_run"`
	VendorEvery     int   `yaml:"vendor_every" json:"vendor_every"`
	GroupShareLimit int   `yaml:"group_share_limit" json:"group_share_limit"`
	PreviewDays     []int `yaml:"preview_days" json:"preview_days"`
}

// DefaultOptions returns the stock feed limits.
func DefaultOptions() Options {
	return Options{
		BatchSize:       30,
		MaxRecipeRun:    3,
		VendorEvery:     10,
		GroupShareLimit: 2,
		PreviewDays:     []int{1, 2, 4, 6},
	}
}

// Validate rejects limits that would make assembly meaningless.
func (o Options) Validate() error {
	if o.BatchSize <= 0 {
		return fmt.Errorf("feed batch_size must be positive, got %d", o.BatchSize)
	}
	if o.MaxRecipeRun <= 0 {
		return fmt.Errorf("feed max_recipe_run must be positive, got %d", o.MaxRecipeRun)
	}
	if o.VendorEvery <= 1 {
		return fmt.Errorf("feed vendor_every must be greater than 1, got %d", o.VendorEvery)
	}
	if o.GroupShareLimit < 0 {
		return fmt.Errorf("feed group_share_limit must not be negative, got %d", o.GroupShareLimit)
	}
	for _, d := range o.PreviewDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("feed preview day %d is not a day of week", d)
		}
	}
	return nil
}

// Pools hold the auxiliary cards available to a feed build.
type Pools struct {
	Vendors        []VendorCard
	Tips           []TipCard
	Drinks         []DrinkCard
	ExpiryAlerts   []ExpiryAlertCard
	Milestones     []DNAMilestoneCard
	GroupShares    []GroupShareCard
	LifecycleStage string
	GalleryID      string
}

// Request is the complete input of one feed build.
type Request struct {
	Recipes   []recipe.Recipe
	Context   scorer.Context
	Dismissed []string
	Cooldowns Cooldowns
	Now       time.Time
	Pools     Pools
}

// Assembler builds ordered feeds from scored recipes and auxiliary cards.
type Assembler struct {
	opts   Options
	logger zerolog.Logger
}

// NewAssembler creates an Assembler.
func NewAssembler(opts Options, logger zerolog.Logger) *Assembler {
	return &Assembler{
		opts:   opts,
		logger: logger.With().Str("component", "feed").Logger(),
	}
}

// Assemble builds one feed batch. The first card is always the best scored
// recipe when any recipe survives filtering; no more than MaxRecipeRun recipe
// cards ever appear in a row; vendor cards only occupy slots whose index
// modulo VendorEvery is VendorEvery-1.
func (a *Assembler) Assemble(req Request) []Card {
	candidates := make([]recipe.Recipe, 0, len(req.Recipes))
	dismissed := make(map[string]bool, len(req.Dismissed))
	for _, id := range req.Dismissed {
		dismissed[id] = true
	}
	for _, r := range req.Recipes {
		if dismissed[r.ID] || req.Cooldowns.Excludes(r.ID, req.Now) {
			continue
		}
		candidates = append(candidates, r)
	}
	ranked := scorer.Rank(candidates, req.Context)

	cards := make([]Card, 0, a.opts.BatchSize)
	rest := ranked
	if len(ranked) > 0 {
		cards = append(cards, recipeCard(ranked[0]))
		rest = ranked[1:]
	}

	cards = append(cards, a.fillers(req.Pools, ranked)...)

	var (
		vendors     = req.Pools.Vendors
		drinks      = req.Pools.Drinks
		tips        = req.Pools.Tips
		consecutive = 0
	)
	for len(cards) < a.opts.BatchSize && len(rest) > 0 {
		if len(cards)%a.opts.VendorEvery == a.opts.VendorEvery-1 && len(vendors) > 0 {
			cards = append(cards, vendors[0])
			vendors = vendors[1:]
			consecutive = 0
			continue
		}
		if consecutive >= a.opts.MaxRecipeRun {
			switch {
			case len(drinks) > 0:
				cards = append(cards, drinks[0])
				drinks = drinks[1:]
			case len(tips) > 0:
				cards = append(cards, tips[0])
				tips = tips[1:]
			default:
				a.logger.Debug().Int("cards", len(cards)).Msg("no break card left, stopping fill")
				return cards
			}
			consecutive = 0
			continue
		}
		cards = append(cards, recipeCard(rest[0]))
		rest = rest[1:]
		consecutive++
	}

	a.logger.Debug().
		Int("candidates", len(candidates)).
		Int("excluded", len(req.Recipes)-len(candidates)).
		Int("cards", len(cards)).
		Int("vendors", CountKind(cards, KindVendor)).
		Msg("feed assembled")
	return cards
}

// fillers returns the unconditional cards placed once near the top.
func (a *Assembler) fillers(p Pools, ranked []scorer.Scored) []Card {
	var out []Card
	if len(p.ExpiryAlerts) > 0 {
		out = append(out, p.ExpiryAlerts[0])
	}

	stage := p.LifecycleStage
	if stage == "" {
		stage = "discover"
	}
	out = append(out, LifecycleGuideCard{Stage: stage})

	for _, m := range p.Milestones {
		out = append(out, m)
	}
	for i, g := range p.GroupShares {
		if i >= a.opts.GroupShareLimit {
			break
		}
		out = append(out, g)
	}

	planner := WeeklyPlannerCard{}
	for i, day := range a.opts.PreviewDays {
		if i >= len(ranked) {
			break
		}
		planner.Preview = append(planner.Preview, PreviewSlot{
			DayOfWeek: day,
			RecipeID:  ranked[i].Recipe.ID,
			Title:     ranked[i].Recipe.Title,
		})
	}
	out = append(out, planner)

	gallery := p.GalleryID
	if gallery == "" {
		gallery = "community"
	}
	out = append(out, PhotoGalleryCard{ID: gallery})
	return out
}

func recipeCard(s scorer.Scored) RecipeCard {
	return RecipeCard{
		RecipeID: s.Recipe.ID,
		Title:    s.Recipe.Title,
		Cuisine:  s.Recipe.Cuisine,
		Minutes:  s.Recipe.TotalTimeMinutes,
		Score:    s.Score,
	}
}
