package personality

// HybridMode records a weekday/weekend split where the user behaves like two
// different archetypes.
type HybridMode struct {
	WeekdayArchetype Archetype `json:"weekday_archetype"`
	WeekendArchetype Archetype `json:"weekend_archetype"`
}

// DetectHybridMode classifies the mean weekday and weekend cook times and
// returns a split when they disagree. Both sides need at least three samples.
func (m *Model) DetectHybridMode(summary SignalSummary) *HybridMode {
	if len(summary.WeekdayCookTimes) < hybridMinSamples || len(summary.WeekendCookTimes) < hybridMinSamples {
		return nil
	}
	weekday := m.breakpoints.Classify(mean(summary.WeekdayCookTimes))
	weekend := m.breakpoints.Classify(mean(summary.WeekendCookTimes))
	if weekday == weekend {
		return nil
	}
	return &HybridMode{WeekdayArchetype: weekday, WeekendArchetype: weekend}
}

// DetectHybridMode evaluates with the default model.
func DetectHybridMode(summary SignalSummary) *HybridMode {
	return defaultModel.DetectHybridMode(summary)
}

// DetectDrift reports the archetype the user's last five recent cooks point
// to when it differs from declared. At least four of those five cooks must
// individually satisfy the other archetype's time and ingredient ceilings, so a
// single outlier never moves the profile. Returns nil when there is no drift.
func (m *Model) DetectDrift(summary SignalSummary, declared Archetype) *Archetype {
	if len(summary.Recent) < driftWindow {
		return nil
	}
	last := summary.Recent[len(summary.Recent)-driftWindow:]

	times := make([]int, len(last))
	for i, s := range last {
		times[i] = s.CookMinutes
	}
	observed := m.breakpoints.Classify(mean(times))
	if observed == declared {
		return nil
	}

	c := GetConstraints(observed)
	agreeing := 0
	for _, s := range last {
		if c.Fits(s.CookMinutes, s.IngredientCount, s.IsWeekend) {
			agreeing++
		}
	}
	if agreeing < driftAgreement {
		return nil
	}
	return &observed
}

// DetectDrift evaluates with the default model.
func DetectDrift(summary SignalSummary, declared Archetype) *Archetype {
	return defaultModel.DetectDrift(summary, declared)
}
