package config

import (
	"fmt"
	"os"
	"strconv"

	"cookdna/internal/feed"
	"cookdna/internal/personality"

	"gopkg.in/yaml.v3"
)

// Policy holds the product constants that tune personalisation.
type Policy struct {
	Breakpoints      personality.Breakpoints `yaml:"breakpoints"`
	SignalWindowDays int                     `yaml:"signal_window_days"`
	Cooldown         feed.CooldownPolicy     `yaml:"cooldown"`
	Feed             feed.Options            `yaml:"feed"`
	Plan             PlanPolicy              `yaml:"plan"`
}

// PlanPolicy controls weekly plan generation.
type PlanPolicy struct {
	Servings int `yaml:"servings"`
	// RecentCuisineWeeks is how many accepted plans feed the cuisine history.
	RecentCuisineWeeks int `yaml:"recent_cuisine_weeks"`
}

// DefaultPolicy returns the stock product policy.
func DefaultPolicy() *Policy {
	return &Policy{
		Breakpoints:      personality.DefaultBreakpoints,
		SignalWindowDays: 90,
		Cooldown:         feed.DefaultCooldownPolicy(),
		Feed:             feed.DefaultOptions(),
		Plan: PlanPolicy{
			Servings:           2,
			RecentCuisineWeeks: 1,
		},
	}
}

// LoadPolicy reads the policy file at path on top of the defaults, applies
// environment overrides and validates the result. An empty path yields the defaults.
func LoadPolicy(path string) (*Policy, error) {
	p := DefaultPolicy()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read policy file: %w", err)
		}
		if err := yaml.Unmarshal(data, p); err != nil {
			return nil, fmt.Errorf("parse policy file: %w", err)
		}
	}

	applyEnvOverrides(p)

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	return p, nil
}

func applyEnvOverrides(p *Policy) {
	if v := os.Getenv("PLAN_SERVINGS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			p.Plan.Servings = parsed
		}
	}
	if v := os.Getenv("FEED_BATCH_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			p.Feed.BatchSize = parsed
		}
	}
}

// Validate checks every section of the policy.
func (p *Policy) Validate() error {
	if err := p.Breakpoints.Validate(); err != nil {
		return err
	}
	if p.SignalWindowDays <= 0 {
		return fmt.Errorf("signal_window_days must be positive, got %d", p.SignalWindowDays)
	}
	if err := p.Cooldown.Validate(); err != nil {
		return err
	}
	if err := p.Feed.Validate(); err != nil {
		return err
	}
	if p.Plan.Servings <= 0 {
		return fmt.Errorf("plan servings must be positive, got %d", p.Plan.Servings)
	}
	if p.Plan.RecentCuisineWeeks < 0 {
		return fmt.Errorf("plan recent_cuisine_weeks must not be negative, got %d", p.Plan.RecentCuisineWeeks)
	}
	return nil
}
