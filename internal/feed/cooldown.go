package feed

import (
	"fmt"
	"time"
)

// Reason is why a recipe was put on cooldown.
type Reason string

const (
	ReasonDismissed  Reason = "dismissed"
	ReasonCooked     Reason = "cooked"
	ReasonFavourited Reason = "favourited"
)

// ParseReason validates a stored reason.
func ParseReason(s string) (Reason, error) {
	switch r := Reason(s); r {
	case ReasonDismissed, ReasonCooked, ReasonFavourited:
		return r, nil
	}
	return "", fmt.Errorf("unknown cooldown reason %q", s)
}

// CooldownEntry suppresses a recipe from the feed until Until.
type CooldownEntry struct {
	Reason Reason    `json:"reason"`
	Rating int       `json:"rating,omitempty"`
	Until  time.Time `json:"cooldown_until"`
}

// Cooldowns maps recipe ids to their cooldown. Treat it as immutable; use With.
type Cooldowns map[string]CooldownEntry

// With returns a copy of c with id set to e.
func (c Cooldowns) With(id string, e CooldownEntry) Cooldowns {
	out := make(Cooldowns, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	out[id] = e
	return out
}

// Excludes reports whether id must stay out of the feed at now. Favourites
// never resurface regardless of their date.
func (c Cooldowns) Excludes(id string, now time.Time) bool {
	e, ok := c[id]
	if !ok {
		return false
	}
	if e.Reason == ReasonFavourited {
		return true
	}
	return now.Before(e.Until)
}

// CooldownPolicy holds the cooldown length in days per reason and rating.
type CooldownPolicy struct {
	DismissedDays  int `yaml:"dismissed_days" json:"dismissed_days"`
	CookedHighDays int `yaml:"cooked_high_days" json:"cooked_high_days"`
	CookedMidDays  int `yaml:"cooked_mid_days" json:"cooked_mid_days"`
	CookedLowDays  int `yaml:"cooked_low_days" json:"cooked_low_days"`
	FavouriteDays  int `yaml:"favourite_days" json:"favourite_days"`
}

// DefaultCooldownPolicy returns the stock cooldown lengths.
func DefaultCooldownPolicy() CooldownPolicy {
	return CooldownPolicy{
		DismissedDays:  14,
		CookedHighDays: 21,
		CookedMidDays:  30,
		CookedLowDays:  60,
		FavouriteDays:  3650,
	}
}

// Validate rejects non-positive durations.
func (p CooldownPolicy) Validate() error {
	for name, days := range map[string]int{
		"dismissed_days":   p.DismissedDays,
		"cooked_high_days": p.CookedHighDays,
		"cooked_mid_days":  p.CookedMidDays,
		"cooked_low_days":  p.CookedLowDays,
		"favourite_days":   p.FavouriteDays,
	} {
		if days <= 0 {
			return fmt.Errorf("cooldown %s must be positive, got %d", name, days)
		}
	}
	return nil
}

// Days returns the cooldown length for a reason and rating. An unrated cook
// (rating 0) gets the middle window.
func (p CooldownPolicy) Days(reason Reason, rating int) int {
	switch reason {
	case ReasonDismissed:
		return p.DismissedDays
	case ReasonFavourited:
		return p.FavouriteDays
	}
	switch {
	case rating >= 4:
		return p.CookedHighDays
	case rating == 3 || rating == 0:
		return p.CookedMidDays
	default:
		return p.CookedLowDays
	}
}

// Entry builds the cooldown entry for an interaction at now.
func (p CooldownPolicy) Entry(reason Reason, rating int, now time.Time) CooldownEntry {
	return CooldownEntry{
		Reason: reason,
		Rating: rating,
		Until:  now.AddDate(0, 0, p.Days(reason, rating)),
	}
}
