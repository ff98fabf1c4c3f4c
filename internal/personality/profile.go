package personality

import "time"

const (
	// InitialConfidence is the only valid starting confidence, set at onboarding.
	InitialConfidence = 0.4
	// MaxConfidence is the ceiling behavioural evidence can reach.
	MaxConfidence = 0.95
)

// Profile is a user's confidence-weighted cooking personality.
type Profile struct {
	Primary         Archetype   `json:"primary"`
	PrimaryWeight   float64     `json:"primary_weight"`
	Secondary       *Archetype  `json:"secondary,omitempty"`
	SecondaryWeight float64     `json:"secondary_weight,omitempty"`
	Confidence      float64     `json:"confidence"`
	Style           Style       `json:"style"`
	Hybrid          *HybridMode `json:"hybrid,omitempty"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// ClassifyFromOnboarding builds the initial profile from the archetype the user picked.
func ClassifyFromOnboarding(selection Archetype) Profile {
	return Profile{
		Primary:       selection,
		PrimaryWeight: 1.0,
		Confidence:    InitialConfidence,
		Style:         StyleOf(selection),
	}
}

// ArchetypeFor returns the archetype that governs a weekday or weekend cook,
// honouring a detected hybrid split.
func (p Profile) ArchetypeFor(isWeekend bool) Archetype {
	if p.Hybrid != nil {
		if isWeekend {
			return p.Hybrid.WeekendArchetype
		}
		return p.Hybrid.WeekdayArchetype
	}
	return p.Primary
}

// WithConfidence returns a copy of p carrying the new confidence. A lower value
// is ignored; only AcceptDrift may reduce confidence.
func (p Profile) WithConfidence(c float64) Profile {
	if c > p.Confidence {
		p.Confidence = c
	}
	return p
}

// WithHybrid returns a copy of p with the hybrid split replaced (nil clears it).
func (p Profile) WithHybrid(h *HybridMode) Profile {
	if h != nil {
		cp := *h
		h = &cp
	}
	p.Hybrid = h
	return p
}

// AcceptDrift returns a new profile re-anchored on the drifted archetype. The
// previous primary is kept as secondary and confidence restarts at the
// onboarding value.
func AcceptDrift(p Profile, to Archetype) Profile {
	if to == p.Primary {
		return p
	}
	prev := p.Primary
	return Profile{
		Primary:         to,
		PrimaryWeight:   0.7,
		Secondary:       &prev,
		SecondaryWeight: 0.3,
		Confidence:      InitialConfidence,
		Style:           StyleOf(to),
		Hybrid:          p.Hybrid,
		UpdatedAt:       p.UpdatedAt,
	}
}
