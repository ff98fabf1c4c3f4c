package personality

import "math"

// ComputeConfidence folds recent cooking evidence into a new confidence value.
//
// Each recent cook earns up to 0.08 (time fit 0.04, ingredient fit 0.02,
// personality fit 0.02) and never less than 0.01. The summed increment is
// capped at MaxIncrement and the result is clamped to [current, MaxConfidence].
func (m *Model) ComputeConfidence(current float64, summary SignalSummary, a Archetype) float64 {
	c := GetConstraints(a)

	var increment float64
	for _, s := range summary.Recent {
		var delta float64
		if s.CookMinutes <= c.TimeLimit(s.IsWeekend) {
			delta += timeFitDelta
		}
		if s.IngredientCount <= c.MaxIngredients {
			delta += ingredientFitDelta
		}
		if s.PersonalityFit {
			delta += personalityFitDelta
		}
		increment += math.Max(delta, floorDelta)
	}
	increment = math.Min(increment, MaxIncrement)

	next := math.Min(current+increment, MaxConfidence)
	if next < current {
		return current
	}
	return next
}

// ComputeConfidence evaluates with the default model.
func ComputeConfidence(current float64, summary SignalSummary, a Archetype) float64 {
	return defaultModel.ComputeConfidence(current, summary, a)
}

// Milestone is a named confidence threshold the caller can react to.
type Milestone struct {
	Name      string
	Threshold float64
}

// Milestones are the confidence thresholds that unlock achievements, in ascending order.
var Milestones = []Milestone{
	{Name: "dna_unlock", Threshold: 0.5},
	{Name: "dna_reveal", Threshold: 0.7},
	{Name: "dna_master", Threshold: 0.9},
}

// CrossedMilestones returns the milestones with old < threshold <= new.
func CrossedMilestones(old, new float64) []Milestone {
	var crossed []Milestone
	for _, ms := range Milestones {
		if old < ms.Threshold && ms.Threshold <= new {
			crossed = append(crossed, ms)
		}
	}
	return crossed
}
