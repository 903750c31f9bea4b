package detector

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/auralis/spoofcheck/logging"
	"github.com/auralis/spoofcheck/transcode"
)

// Detector runs the full synthetic-speech detection pipeline: decode,
// preprocess, extract features, scale, classify, decide.
//
// The model, scaler, and policy are loaded once and shared read-only,
// so a Detector is safe for concurrent use.
type Detector struct {
	cfg        *Config
	classifier Classifier
	scaler     *ScalingParameters
	policy     *DecisionPolicy
	preproc    *Preprocessor
	decoder    *transcode.Decoder
	logger     logging.Logger
}

// New creates a detector from configuration, loading the model and
// scaler artifacts.
func New(cfg *Config) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	classifier, err := LoadClassifier(cfg.ModelPath)
	if err != nil {
		return nil, err
	}

	scaler, err := LoadScaler(cfg.ScalerPath)
	if err != nil {
		return nil, err
	}

	return NewWithClassifier(cfg, classifier, scaler)
}

// NewWithClassifier creates a detector with an already-loaded
// classifier and scaler. Used by tests and by callers that manage
// model artifacts themselves.
func NewWithClassifier(cfg *Config, classifier Classifier, scaler *ScalingParameters) (*Detector, error) {
	if scaler.Len() != FeatureVectorLength {
		return nil, newError(ErrDimensionMismatch, fmt.Sprintf(
			"scaler was fit on %d features, pipeline produces %d",
			scaler.Len(), FeatureVectorLength))
	}

	policy, err := NewDecisionPolicy(cfg.Decision)
	if err != nil {
		return nil, err
	}

	decoder := transcode.NewDecoder(decoderConfig(cfg))

	return &Detector{
		cfg:        cfg,
		classifier: classifier,
		scaler:     scaler,
		policy:     policy,
		preproc:    NewPreprocessor(cfg),
		decoder:    decoder,
		logger: logging.WithFields(logging.Fields{
			"component": "detector",
		}),
	}, nil
}

// decoderConfig builds the decode settings for a detector config.
// Decoding stops at the clip length; anything past it would be
// discarded by preprocessing anyway.
func decoderConfig(cfg *Config) *transcode.DecoderConfig {
	return &transcode.DecoderConfig{
		TargetSampleRate: cfg.SampleRate,
		MaxDuration:      time.Duration(cfg.ClipSeconds * float64(time.Second)),
		FFmpegPath:       cfg.FFmpegPath,
		Timeout:          time.Duration(cfg.DecodeTimeout),
	}
}

// DetectFile analyzes an audio file
func (d *Detector) DetectFile(path string) (*DetectionResult, error) {
	audio, err := d.decoder.DecodeFile(path)
	if err != nil {
		return nil, wrapError(ErrFeatureExtraction, fmt.Sprintf("failed to decode %s", path), err)
	}
	return d.DetectPCM(audio.PCM)
}

// DetectBytes analyzes encoded audio held in memory
func (d *Detector) DetectBytes(data []byte) (*DetectionResult, error) {
	audio, err := d.decoder.DecodeBytes(data)
	if err != nil {
		return nil, wrapError(ErrFeatureExtraction, "failed to decode audio data", err)
	}
	return d.DetectPCM(audio.PCM)
}

// DetectReader analyzes encoded audio from a stream
func (d *Detector) DetectReader(r io.Reader) (*DetectionResult, error) {
	audio, err := d.decoder.DecodeReader(r)
	if err != nil {
		return nil, wrapError(ErrFeatureExtraction, "failed to decode audio stream", err)
	}
	return d.DetectPCM(audio.PCM)
}

// DetectPCM analyzes mono PCM samples at the configured sample rate
func (d *Detector) DetectPCM(pcm []float64) (*DetectionResult, error) {
	start := time.Now()

	features, err := d.ExtractFeatures(pcm)
	if err != nil {
		return nil, err
	}

	scaled, err := d.scaler.Transform(features)
	if err != nil {
		return nil, err
	}

	_, probs, err := d.classifier.PredictProbabilities(scaled)
	if err != nil {
		return nil, err
	}

	decision := d.policy.Decide(probs[0], probs[1])

	result := &DetectionResult{
		ID:                   uuid.New().String(),
		Prediction:           decision.Verdict,
		Confidence:           decision.Confidence,
		Reliability:          decision.Reliability,
		BonafideProbability:  probs[0],
		SyntheticProbability: probs[1],
		Mode:                 d.policy.Mode(),
		AudioDuration:        float64(len(pcm)) / float64(d.cfg.SampleRate),
		ProcessingTime:       time.Since(start),
		Timestamp:            time.Now(),
	}
	if d.policy.Mode() == ModeThreshold {
		result.Threshold = d.policy.Threshold()
	}

	d.logger.Debug("Detection completed", logging.Fields{
		"result_id":       result.ID,
		"prediction":      result.Prediction,
		"confidence":      result.Confidence,
		"reliability":     result.Reliability,
		"processing_time": result.ProcessingTime.Milliseconds(),
	})

	return result, nil
}

// DecodeFile decodes an audio file to mono PCM at the configured
// sample rate without running detection.
func (d *Detector) DecodeFile(path string) (*transcode.AudioData, error) {
	return d.decoder.DecodeFile(path)
}

// ExtractFeatures preprocesses raw PCM and returns the unscaled
// descriptor vector. Exposed for dataset building and debugging.
func (d *Detector) ExtractFeatures(pcm []float64) ([]float64, error) {
	clip, err := d.preproc.Process(pcm)
	if err != nil {
		return nil, err
	}

	// Extractors cache geometry state, so build a fresh one per call
	return NewFeatureExtractor(d.cfg.SampleRate).Extract(clip)
}

// ExtractFeaturesPCM preprocesses raw PCM and computes the descriptor
// vector using only the analysis settings in cfg. No model or scaler
// artifacts are required.
func ExtractFeaturesPCM(cfg *Config, pcm []float64) ([]float64, error) {
	clip, err := NewPreprocessor(cfg).Process(pcm)
	if err != nil {
		return nil, err
	}

	return NewFeatureExtractor(cfg.SampleRate).Extract(clip)
}

// NewPCMDecoder returns a decoder producing mono PCM at the
// configured sample rate, capped at the clip length. Usable without
// model or scaler artifacts.
func NewPCMDecoder(cfg *Config) *transcode.Decoder {
	return transcode.NewDecoder(decoderConfig(cfg))
}
