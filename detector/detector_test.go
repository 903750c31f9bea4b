package detector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClassifier returns fixed probabilities regardless of input
type stubClassifier struct {
	probs [2]float64
}

func (s *stubClassifier) PredictProbabilities(features []float64) (int, [2]float64, error) {
	if len(features) != FeatureVectorLength {
		return 0, [2]float64{}, newError(ErrDimensionMismatch, "unexpected feature count")
	}
	label := 0
	if s.probs[1] > s.probs[0] {
		label = 1
	}
	return label, s.probs, nil
}

func (s *stubClassifier) Classes() []int {
	return []int{0, 1}
}

func identityScaler(n int) *ScalingParameters {
	mean := make([]float64, n)
	scale := make([]float64, n)
	for i := range scale {
		scale[i] = 1
	}
	return &ScalingParameters{Mean: mean, Scale: scale}
}

func testDetector(t *testing.T, probs [2]float64) *Detector {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ModelPath = "unused"
	cfg.ScalerPath = "unused"

	det, err := NewWithClassifier(cfg, &stubClassifier{probs: probs}, identityScaler(FeatureVectorLength))
	require.NoError(t, err)
	return det
}

func TestDetector_DetectPCM(t *testing.T) {
	det := testDetector(t, [2]float64{0.2, 0.8})

	result, err := det.DetectPCM(testClip(16000))
	require.NoError(t, err)

	assert.Equal(t, VerdictSynthetic, result.Prediction)
	assert.InDelta(t, 0.8, result.Confidence, 1e-12)
	assert.InDelta(t, 0.2, result.BonafideProbability, 1e-12)
	assert.InDelta(t, 0.8, result.SyntheticProbability, 1e-12)
	assert.Equal(t, "Moderate", result.Reliability)
	assert.Equal(t, ModeArgmax, result.Mode)
	assert.NotEmpty(t, result.ID)
	assert.False(t, result.Timestamp.IsZero())
	assert.InDelta(t, 4.0, result.AudioDuration, 1e-9)
}

func TestDetector_ProbabilityConservation(t *testing.T) {
	for _, p := range [][2]float64{{0.2, 0.8}, {0.97, 0.03}, {0.5, 0.5}} {
		det := testDetector(t, p)
		result, err := det.DetectPCM(testClip(16000))
		require.NoError(t, err)

		sum := result.BonafideProbability + result.SyntheticProbability
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestDetector_InsufficientAudioPropagates(t *testing.T) {
	det := testDetector(t, [2]float64{0.5, 0.5})

	_, err := det.DetectPCM(make([]float64, 16000))
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrInsufficientAudio))
}

func TestDetector_ScalerDimensionCheckedAtConstruction(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModelPath = "unused"
	cfg.ScalerPath = "unused"

	_, err := NewWithClassifier(cfg, &stubClassifier{}, identityScaler(10))
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrDimensionMismatch))
}

func TestDetector_ResultIDsUnique(t *testing.T) {
	det := testDetector(t, [2]float64{0.9, 0.1})
	clip := testClip(16000)

	first, err := det.DetectPCM(clip)
	require.NoError(t, err)
	second, err := det.DetectPCM(clip)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestDetector_IgnoresAudioBeyondClipLength(t *testing.T) {
	det := testDetector(t, [2]float64{0.2, 0.8})

	// Tone starts only after the 4 s analysis window; the detector
	// must see nothing but the leading silence and refuse the input.
	pcm := make([]float64, 10*16000)
	copy(pcm[6*16000:], testClip(16000))

	_, err := det.DetectPCM(pcm)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrInsufficientAudio))
}

func TestExtractFeaturesPCM_NoArtifactsNeeded(t *testing.T) {
	// Feature extraction must work without model or scaler paths
	cfg := DefaultConfig()
	require.Error(t, cfg.Validate())

	features, err := ExtractFeaturesPCM(cfg, testClip(16000))
	require.NoError(t, err)
	assert.Len(t, features, FeatureVectorLength)
}

func TestDetector_ExtractFeatures(t *testing.T) {
	det := testDetector(t, [2]float64{0.5, 0.5})

	features, err := det.ExtractFeatures(testClip(16000))
	require.NoError(t, err)
	assert.Len(t, features, FeatureVectorLength)

	for i, v := range features {
		assert.False(t, math.IsNaN(v), "feature %d is NaN", i)
	}
}

func TestDetector_ThresholdModeReportsThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModelPath = "unused"
	cfg.ScalerPath = "unused"
	cfg.Decision.Mode = ModeThreshold
	cfg.Decision.Threshold = 0.3

	det, err := NewWithClassifier(cfg, &stubClassifier{probs: [2]float64{0.6, 0.4}}, identityScaler(FeatureVectorLength))
	require.NoError(t, err)

	result, err := det.DetectPCM(testClip(16000))
	require.NoError(t, err)

	assert.Equal(t, VerdictSynthetic, result.Prediction)
	assert.Equal(t, 0.3, result.Threshold)
	assert.Equal(t, ModeThreshold, result.Mode)
}
