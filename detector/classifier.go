package detector

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitryikh/leaves"
	"gopkg.in/yaml.v3"
)

// Classifier scores a scaled feature vector. Implementations must be
// safe for concurrent use.
type Classifier interface {
	// PredictProbabilities returns the winning class label and the
	// class probabilities ordered as [bonafide, synthetic].
	PredictProbabilities(features []float64) (label int, probs [2]float64, err error)

	// Classes returns the label order the model was trained with
	Classes() []int
}

// ModelManifest describes a model artifact. The classes field records
// the training label order and is verified at load so that probability
// indices cannot silently swap meaning.
type ModelManifest struct {
	Model    string `yaml:"model"`    // Booster file, relative to the manifest
	Classes  []int  `yaml:"classes"`  // Must be exactly [0, 1]
	Features int    `yaml:"features"` // Expected feature vector length
}

// XGBClassifier runs a gradient-boosted tree model
type XGBClassifier struct {
	ensemble *leaves.Ensemble
	features int
}

// LoadClassifier reads a model manifest and its booster file
func LoadClassifier(manifestPath string) (*XGBClassifier, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, wrapError(ErrConfigLoad, fmt.Sprintf("failed to read model manifest %s", manifestPath), err)
	}

	var manifest ModelManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, wrapError(ErrConfigLoad, fmt.Sprintf("failed to parse model manifest %s", manifestPath), err)
	}

	if err := validateClasses(manifest.Classes); err != nil {
		return nil, err
	}
	if manifest.Model == "" {
		return nil, newError(ErrConfigLoad, "model manifest has no model file")
	}

	modelPath := manifest.Model
	if !filepath.IsAbs(modelPath) {
		modelPath = filepath.Join(filepath.Dir(manifestPath), modelPath)
	}

	ensemble, err := leaves.XGEnsembleFromFile(modelPath, true)
	if err != nil {
		return nil, wrapError(ErrConfigLoad, fmt.Sprintf("failed to load model %s", modelPath), err)
	}

	features := manifest.Features
	if features <= 0 {
		features = ensemble.NFeatures()
	}

	return &XGBClassifier{
		ensemble: ensemble,
		features: features,
	}, nil
}

// validateClasses requires the training label order to be exactly
// [0, 1], with 0 = bonafide and 1 = synthetic.
func validateClasses(classes []int) error {
	if len(classes) != 2 || classes[0] != 0 || classes[1] != 1 {
		return newError(ErrConfigLoad, fmt.Sprintf(
			"model classes must be [0 1], got %v", classes))
	}
	return nil
}

// PredictProbabilities scores a scaled feature vector
func (c *XGBClassifier) PredictProbabilities(features []float64) (int, [2]float64, error) {
	if len(features) != c.features {
		return 0, [2]float64{}, newError(ErrDimensionMismatch, fmt.Sprintf(
			"feature vector has %d values, model expects %d", len(features), c.features))
	}

	// Sigmoid output: probability of the synthetic class
	p1 := c.ensemble.PredictSingle(features, 0)
	probs := [2]float64{1 - p1, p1}

	label := 0
	if probs[1] > probs[0] {
		label = 1
	}

	return label, probs, nil
}

// Classes returns the fixed label order
func (c *XGBClassifier) Classes() []int {
	return []int{0, 1}
}

// NumFeatures returns the feature vector length the model expects
func (c *XGBClassifier) NumFeatures() int {
	return c.features
}
