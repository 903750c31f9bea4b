package detector

import (
	"fmt"

	"github.com/auralis/spoofcheck/algorithms/chroma"
	"github.com/auralis/spoofcheck/algorithms/spectral"
	"github.com/auralis/spoofcheck/algorithms/stats"
	"github.com/auralis/spoofcheck/algorithms/windowing"
)

// Analysis parameters shared by every stage of the pipeline. The
// scaler and model artifacts are fit against features produced with
// these exact values, so they are not configurable.
const (
	FeatureVectorLength = 67

	NumMFCC          = 20
	NumChroma        = 12
	NumContrastBands = 7

	FrameSize = 512
	HopSize   = 256

	NumMelFilters    = 26
	RolloffThreshold = 0.85
)

// FeatureExtractor computes the fixed 67-element descriptor vector for
// a preprocessed clip. The layout is:
//
//	[0:20)   MFCC means
//	[20:40)  MFCC standard deviations
//	[40:42)  spectral centroid mean, std
//	[42:44)  spectral rolloff mean, std
//	[44:46)  spectral bandwidth mean, std
//	[46:48)  zero-crossing rate mean, std
//	[48:60)  chroma bin means
//	[60:67)  spectral contrast band means
//
// Extractors cache spectra-geometry state after the first clip, so an
// instance must not be shared across goroutines. They are cheap to
// construct; create one per request.
type FeatureExtractor struct {
	sampleRate int

	stft      *spectral.STFT
	window    *windowing.Hann
	mfcc      *spectral.MFCC
	centroid  *spectral.SpectralCentroid
	rolloff   *spectral.SpectralRolloff
	bandwidth *spectral.SpectralBandwidth
	contrast  *spectral.SpectralContrast
	zcr       *spectral.ZeroCrossingRate
	chroma    *chroma.ChromaSTFT
}

// NewFeatureExtractor creates an extractor for the given sample rate
func NewFeatureExtractor(sampleRate int) *FeatureExtractor {
	return &FeatureExtractor{
		sampleRate: sampleRate,
		stft:       spectral.NewSTFT(),
		window:     windowing.NewHann(FrameSize),
		mfcc: spectral.NewMFCCWithParams(sampleRate, spectral.MFCCParams{
			NumCoefficients: NumMFCC,
			NumMelFilters:   NumMelFilters,
			LowFreq:         0,
			HighFreq:        float64(sampleRate) / 2,
		}),
		centroid:  spectral.NewSpectralCentroid(sampleRate),
		rolloff:   spectral.NewSpectralRolloff(sampleRate),
		bandwidth: spectral.NewSpectralBandwidth(sampleRate),
		contrast:  spectral.NewSpectralContrast(sampleRate, NumContrastBands),
		zcr:       spectral.NewZeroCrossingRate(sampleRate, FrameSize, HopSize),
		chroma:    chroma.NewChromaSTFTDefault(sampleRate),
	}
}

// Extract computes the descriptor vector for a preprocessed clip
func (fe *FeatureExtractor) Extract(clip []float64) ([]float64, error) {
	if len(clip) < FrameSize {
		return nil, newError(ErrInsufficientAudio, fmt.Sprintf(
			"clip has %d samples, need at least %d", len(clip), FrameSize))
	}

	stftResult, err := fe.stft.ComputeWithWindow(clip, FrameSize, HopSize, fe.sampleRate, fe.window)
	if err != nil {
		return nil, wrapError(ErrFeatureExtraction, "stft failed", err)
	}

	spectrogram := stftResult.Magnitude

	mfccFrames, err := fe.mfcc.ComputeFrames(spectrogram)
	if err != nil {
		return nil, wrapError(ErrFeatureExtraction, "mfcc failed", err)
	}
	mfccMeans, mfccStds := stats.ColumnMeanStds(mfccFrames, NumMFCC)

	centroids := fe.centroid.ComputeFrames(spectrogram)
	centroidMean, centroidStd := stats.MeanStd(centroids)

	rolloffs := fe.rolloff.ComputeFrames(spectrogram, RolloffThreshold)
	rolloffMean, rolloffStd := stats.MeanStd(rolloffs)

	bandwidths := fe.bandwidth.ComputeFrames(spectrogram, centroids)
	bandwidthMean, bandwidthStd := stats.MeanStd(bandwidths)

	zcrValues := fe.zcr.ComputeFrames(clip)
	zcrMean, zcrStd := stats.MeanStd(zcrValues)

	chromaFrames, err := fe.chroma.ComputeChroma(clip, FrameSize, HopSize, fe.window)
	if err != nil {
		return nil, wrapError(ErrFeatureExtraction, "chroma failed", err)
	}
	chromaMeans := stats.ColumnMeans(chromaFrames, NumChroma)

	contrastFrames := fe.contrast.ComputeFrames(spectrogram)
	contrastMeans := stats.ColumnMeans(contrastFrames, NumContrastBands)

	features := make([]float64, 0, FeatureVectorLength)
	features = append(features, mfccMeans...)
	features = append(features, mfccStds...)
	features = append(features, centroidMean, centroidStd)
	features = append(features, rolloffMean, rolloffStd)
	features = append(features, bandwidthMean, bandwidthStd)
	features = append(features, zcrMean, zcrStd)
	features = append(features, chromaMeans...)
	features = append(features, contrastMeans...)

	if len(features) != FeatureVectorLength {
		return nil, newError(ErrFeatureExtraction, fmt.Sprintf(
			"assembled %d features, expected %d", len(features), FeatureVectorLength))
	}

	return features, nil
}
