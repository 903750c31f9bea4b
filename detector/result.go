package detector

import "time"

// DetectionResult is the full outcome of analyzing one input
type DetectionResult struct {
	ID string `json:"id"`

	Prediction  Verdict `json:"prediction"`
	Confidence  float64 `json:"confidence"`
	Reliability string  `json:"reliability"`

	BonafideProbability  float64 `json:"bonafide_probability"`
	SyntheticProbability float64 `json:"synthetic_probability"`

	Mode      DecisionMode `json:"mode"`
	Threshold float64      `json:"threshold,omitempty"`

	AudioDuration  float64       `json:"audio_duration"` // Seconds, after decode
	ProcessingTime time.Duration `json:"processing_time"`
	Timestamp      time.Time     `json:"timestamp"`
}

// IsSynthetic reports whether the input was judged machine-generated
func (r *DetectionResult) IsSynthetic() bool {
	return r.Prediction == VerdictSynthetic
}
