package personality

import (
	"sort"
	"time"
)

// RecentWindow is the span of cooking history that counts as recent evidence.
const RecentWindow = 14 * 24 * time.Hour

// CookSignal is one recorded cook.
type CookSignal struct {
	RecipeID        string    `json:"recipe_id"`
	CookMinutes     int       `json:"cook_minutes"`
	IngredientCount int       `json:"ingredient_count"`
	Cuisine         string    `json:"cuisine"`
	IsWeekend       bool      `json:"is_weekend"`
	PersonalityFit  bool      `json:"personality_fit"`
	CookedAt        time.Time `json:"cooked_at"`
}

// Counters are the non-cook engagement tallies rolled up with the signals.
type Counters struct {
	NoshRunCompletions int `json:"nosh_run_completions"`
	SocialEvents       int `json:"social_events"`
	FeedLikes          int `json:"feed_likes"`
	FeedDismisses      int `json:"feed_dismisses"`
}

// SignalSummary is a derived view over a window of cook signals. It is
// rebuilt on every evaluation and carries no identity between calls.
type SignalSummary struct {
	WindowEnd        time.Time    `json:"window_end"`
	Signals          []CookSignal `json:"signals"`
	Recent           []CookSignal `json:"recent"`
	WeekdayCookTimes []int        `json:"weekday_cook_times"`
	WeekendCookTimes []int        `json:"weekend_cook_times"`
	Counters         Counters     `json:"counters"`
}

// Summarise rolls raw signals up into a SignalSummary. Signals after now are
// ignored; window bounds how far back the summary looks (zero means no bound).
// Signals in the result are in chronological order.
func Summarise(signals []CookSignal, counters Counters, now time.Time, window time.Duration) SignalSummary {
	inWindow := make([]CookSignal, 0, len(signals))
	for _, s := range signals {
		if s.CookedAt.After(now) {
			continue
		}
		if window > 0 && now.Sub(s.CookedAt) > window {
			continue
		}
		inWindow = append(inWindow, s)
	}
	sort.SliceStable(inWindow, func(i, j int) bool {
		return inWindow[i].CookedAt.Before(inWindow[j].CookedAt)
	})

	summary := SignalSummary{
		WindowEnd: now,
		Signals:   inWindow,
		Counters:  counters,
	}
	for _, s := range inWindow {
		if now.Sub(s.CookedAt) <= RecentWindow {
			summary.Recent = append(summary.Recent, s)
		}
		if s.IsWeekend {
			summary.WeekendCookTimes = append(summary.WeekendCookTimes, s.CookMinutes)
		} else {
			summary.WeekdayCookTimes = append(summary.WeekdayCookTimes, s.CookMinutes)
		}
	}
	return summary
}

func mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0
	for _, v := range values {
		total += v
	}
	return float64(total) / float64(len(values))
}
