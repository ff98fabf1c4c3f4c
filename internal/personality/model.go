package personality

import "fmt"

const (
	timeFitDelta        = 0.04
	ingredientFitDelta  = 0.02
	personalityFitDelta = 0.02
	floorDelta          = 0.01
	// MaxIncrement caps how far one evaluation can move confidence.
	MaxIncrement = 0.15

	hybridMinSamples = 3
	driftWindow      = 5
	driftAgreement   = 4
)

// Breakpoints are the mean cook-time cut-offs, in minutes, used to classify
// behaviour into an archetype.
type Breakpoints struct {
	Sprint int `yaml:"sprint" json:"sprint"`
	Quick  int `yaml:"quick" json:"quick"`
	Steady int `yaml:"steady" json:"steady"`
}

// DefaultBreakpoints are the product defaults (15/30/45 minutes).
var DefaultBreakpoints = Breakpoints{Sprint: 15, Quick: 30, Steady: 45}

// Validate checks the breakpoints are positive and strictly ascending.
func (b Breakpoints) Validate() error {
	if b.Sprint <= 0 || b.Quick <= b.Sprint || b.Steady <= b.Quick {
		return fmt.Errorf("breakpoints must be positive and ascending, got %d/%d/%d", b.Sprint, b.Quick, b.Steady)
	}
	return nil
}

// Classify maps a mean cook time onto an archetype.
func (b Breakpoints) Classify(meanMinutes float64) Archetype {
	switch {
	case meanMinutes <= float64(b.Sprint):
		return ThrillSeeker
	case meanMinutes <= float64(b.Quick):
		return WeekendWarrior
	case meanMinutes <= float64(b.Steady):
		return WeekdayHero
	default:
		return BatchPlanner
	}
}

// Model evaluates behavioural evidence against a profile. It holds only
// policy and is safe for concurrent use.
type Model struct {
	breakpoints Breakpoints
}

// NewModel returns a Model using the given breakpoints.
func NewModel(b Breakpoints) (*Model, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &Model{breakpoints: b}, nil
}

var defaultModel = &Model{breakpoints: DefaultBreakpoints}

// Default returns the Model configured with DefaultBreakpoints.
func Default() *Model {
	return defaultModel
}

// Breakpoints returns the model's classification cut-offs.
func (m *Model) Breakpoints() Breakpoints {
	return m.breakpoints
}
