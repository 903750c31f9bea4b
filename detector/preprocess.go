package detector

import (
	"fmt"
	"math"

	"github.com/auralis/spoofcheck/algorithms/temporal"
)

const normalizationEpsilon = 1e-6

// Preprocessor shapes decoded audio into the fixed-length clip the
// feature extractor consumes: trim leading and trailing silence,
// enforce a minimum duration, pad or truncate to the clip length, and
// peak-normalize.
type Preprocessor struct {
	sampleRate       int
	clipSeconds      float64
	trimTopDB        float64
	minSeconds       float64
	minDurationCheck bool

	trimmer *temporal.SilenceTrimmer
}

// NewPreprocessor creates a preprocessor from detector configuration
func NewPreprocessor(cfg *Config) *Preprocessor {
	return &Preprocessor{
		sampleRate:       cfg.SampleRate,
		clipSeconds:      cfg.ClipSeconds,
		trimTopDB:        cfg.TrimTopDB,
		minSeconds:       cfg.MinSeconds,
		minDurationCheck: cfg.MinDurationCheck,
		trimmer:          temporal.NewSilenceTrimmer(FrameSize, HopSize),
	}
}

// Process returns the preprocessed clip. The output length is always
// exactly sampleRate * clipSeconds samples.
//
// Input is capped to the clip length before trimming, so audio past
// the analysis window never influences the result.
func (p *Preprocessor) Process(signal []float64) ([]float64, error) {
	if len(signal) == 0 {
		return nil, newError(ErrInsufficientAudio, "empty signal")
	}

	maxSamples := int(p.clipSeconds * float64(p.sampleRate))
	if len(signal) > maxSamples {
		signal = signal[:maxSamples]
	}

	trimmed := p.trimmer.Trim(signal, p.trimTopDB)

	if p.minDurationCheck {
		minSamples := int(p.minSeconds * float64(p.sampleRate))
		if len(trimmed) < minSamples {
			return nil, newError(ErrInsufficientAudio, fmt.Sprintf(
				"audio too short after silence trimming: %.3fs, need %.3fs",
				float64(len(trimmed))/float64(p.sampleRate), p.minSeconds))
		}
	}

	clip := p.fitToClip(trimmed)
	p.normalizePeak(clip)

	return clip, nil
}

// fitToClip right-pads with zeros or truncates to the clip length
func (p *Preprocessor) fitToClip(signal []float64) []float64 {
	targetLen := int(p.clipSeconds * float64(p.sampleRate))

	clip := make([]float64, targetLen)
	copy(clip, signal)

	return clip
}

// normalizePeak scales the signal in place so its peak magnitude is
// close to 1. A small epsilon in the divisor keeps the operation
// defined for near-silent input; an all-zero clip is left untouched.
func (p *Preprocessor) normalizePeak(signal []float64) {
	peak := 0.0
	for _, v := range signal {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}

	if peak == 0 {
		return
	}

	inv := 1.0 / (peak + normalizationEpsilon)
	for i := range signal {
		signal[i] *= inv
	}
}
