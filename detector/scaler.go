package detector

import (
	"encoding/json"
	"fmt"
	"os"
)

// ScalingParameters holds per-feature standardization statistics.
// Transform applies (x - mean) / scale elementwise.
type ScalingParameters struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LoadScaler reads scaling parameters from a JSON artifact
func LoadScaler(path string) (*ScalingParameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapError(ErrConfigLoad, fmt.Sprintf("failed to read scaler file %s", path), err)
	}

	var params ScalingParameters
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, wrapError(ErrConfigLoad, fmt.Sprintf("failed to parse scaler file %s", path), err)
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &params, nil
}

// Validate checks the parameters for internal consistency
func (s *ScalingParameters) Validate() error {
	if len(s.Mean) == 0 {
		return newError(ErrConfigLoad, "scaler has no mean values")
	}
	if len(s.Mean) != len(s.Scale) {
		return newError(ErrConfigLoad, fmt.Sprintf(
			"scaler mean/scale length mismatch: %d vs %d", len(s.Mean), len(s.Scale)))
	}
	for i, sc := range s.Scale {
		if sc == 0 {
			return newError(ErrConfigLoad, fmt.Sprintf("scaler scale[%d] is zero", i))
		}
	}
	return nil
}

// Len returns the number of features the scaler was fit on
func (s *ScalingParameters) Len() int {
	return len(s.Mean)
}

// Transform standardizes a feature vector, returning a new slice
func (s *ScalingParameters) Transform(features []float64) ([]float64, error) {
	if len(features) != len(s.Mean) {
		return nil, newError(ErrDimensionMismatch, fmt.Sprintf(
			"feature vector has %d values, scaler expects %d", len(features), len(s.Mean)))
	}

	scaled := make([]float64, len(features))
	for i, v := range features {
		scaled[i] = (v - s.Mean[i]) / s.Scale[i]
	}

	return scaled, nil
}
