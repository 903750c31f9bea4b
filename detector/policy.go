package detector

import (
	"fmt"
	"sort"
)

// DecisionMode selects how class probabilities become a verdict
type DecisionMode string

const (
	// ModeArgmax labels the input with the higher-probability class
	ModeArgmax DecisionMode = "argmax"

	// ModeThreshold labels the input synthetic when the synthetic
	// probability exceeds the configured threshold.
	ModeThreshold DecisionMode = "threshold"
)

// Verdict is the predicted origin of the audio
type Verdict string

const (
	VerdictBonafide  Verdict = "bonafide"
	VerdictSynthetic Verdict = "synthetic"
)

// BandTable maps confidence to a reliability label. Cuts must be
// strictly descending; Labels has one more entry than Cuts, ordered
// from the most to the least reliable.
type BandTable struct {
	Cuts   []float64
	Labels []string
}

// DefaultBandTable returns the standard reliability bands
func DefaultBandTable() BandTable {
	return BandTable{
		Cuts:   []float64{0.95, 0.85, 0.75},
		Labels: []string{"Very High", "High", "Moderate", "Low"},
	}
}

// RelaxedBandTable returns looser bands for screening workloads
func RelaxedBandTable() BandTable {
	return BandTable{
		Cuts:   []float64{0.9, 0.8, 0.7},
		Labels: []string{"Very High", "High", "Good", "Moderate"},
	}
}

func bandTableByName(name string) (BandTable, error) {
	switch name {
	case "", "default":
		return DefaultBandTable(), nil
	case "relaxed":
		return RelaxedBandTable(), nil
	default:
		return BandTable{}, newError(ErrConfigLoad, fmt.Sprintf("unknown band table: %q", name))
	}
}

// Validate checks band table consistency
func (b BandTable) Validate() error {
	if len(b.Labels) != len(b.Cuts)+1 {
		return fmt.Errorf("band table needs %d labels for %d cuts, got %d",
			len(b.Cuts)+1, len(b.Cuts), len(b.Labels))
	}
	if !sort.SliceIsSorted(b.Cuts, func(i, j int) bool { return b.Cuts[i] > b.Cuts[j] }) {
		return fmt.Errorf("band table cuts must be strictly descending: %v", b.Cuts)
	}
	for i := 1; i < len(b.Cuts); i++ {
		if b.Cuts[i] == b.Cuts[i-1] {
			return fmt.Errorf("band table cuts must be strictly descending: %v", b.Cuts)
		}
	}
	return nil
}

// Band returns the reliability label for a confidence value.
// A confidence equal to a cut falls in the band below it.
func (b BandTable) Band(confidence float64) string {
	for i, cut := range b.Cuts {
		if confidence > cut {
			return b.Labels[i]
		}
	}
	return b.Labels[len(b.Labels)-1]
}

// Decision is a verdict with its supporting confidence
type Decision struct {
	Verdict     Verdict `json:"verdict"`
	Confidence  float64 `json:"confidence"`
	Reliability string  `json:"reliability"`
}

// DecisionPolicy turns a probability pair into a Decision
type DecisionPolicy struct {
	mode      DecisionMode
	threshold float64
	bands     BandTable
}

// NewDecisionPolicy creates a policy from decision configuration
func NewDecisionPolicy(cfg DecisionConfig) (*DecisionPolicy, error) {
	if cfg.Mode != ModeArgmax && cfg.Mode != ModeThreshold {
		return nil, newError(ErrConfigLoad, fmt.Sprintf("unknown decision mode: %q", cfg.Mode))
	}
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return nil, newError(ErrConfigLoad, fmt.Sprintf("threshold must be in [0, 1]: %g", cfg.Threshold))
	}

	bands, err := bandTableByName(cfg.Bands)
	if err != nil {
		return nil, err
	}
	if err := bands.Validate(); err != nil {
		return nil, wrapError(ErrConfigLoad, "invalid band table", err)
	}

	return &DecisionPolicy{
		mode:      cfg.Mode,
		threshold: cfg.Threshold,
		bands:     bands,
	}, nil
}

// Mode returns the configured decision mode
func (p *DecisionPolicy) Mode() DecisionMode {
	return p.mode
}

// Threshold returns the configured synthetic-probability threshold
func (p *DecisionPolicy) Threshold() float64 {
	return p.threshold
}

// Decide maps a bonafide/synthetic probability pair to a Decision.
//
// In argmax mode the verdict is the higher-probability class and the
// confidence is that class's probability; an exact tie resolves to
// bonafide. In threshold mode the verdict is synthetic exactly when
// the synthetic probability exceeds the threshold, and the confidence
// is the chosen class's probability.
func (p *DecisionPolicy) Decide(bonafideProb, syntheticProb float64) Decision {
	var verdict Verdict
	var confidence float64

	switch p.mode {
	case ModeThreshold:
		if syntheticProb > p.threshold {
			verdict = VerdictSynthetic
			confidence = syntheticProb
		} else {
			verdict = VerdictBonafide
			confidence = bonafideProb
		}
	default:
		if syntheticProb > bonafideProb {
			verdict = VerdictSynthetic
			confidence = syntheticProb
		} else {
			verdict = VerdictBonafide
			confidence = bonafideProb
		}
	}

	return Decision{
		Verdict:     verdict,
		Confidence:  confidence,
		Reliability: p.bands.Band(confidence),
	}
}
