package chroma

import (
	"math"

	"github.com/auralis/spoofcheck/algorithms/spectral"
)

// ChromaSTFT computes a chromagram from an STFT magnitude spectrogram.
// Frequencies are folded onto 12 semitone bins (C through B), so all
// octaves of a pitch class share a bin.
type ChromaSTFT struct {
	sampleRate int
	stft       *spectral.STFT
	tuningFreq float64 // A4 frequency (default 440 Hz)
	chromaBins int     // Always 12
	minFreq    float64 // Minimum frequency to consider
	maxFreq    float64 // Maximum frequency to consider
}

// NewChromaSTFT creates a new STFT-based chromagram calculator
func NewChromaSTFT(sampleRate int, tuningFreq float64) *ChromaSTFT {
	return &ChromaSTFT{
		sampleRate: sampleRate,
		stft:       spectral.NewSTFT(),
		tuningFreq: tuningFreq,
		chromaBins: 12,
		minFreq:    80.0,   // Approximate E2
		maxFreq:    8000.0, // High enough for harmonics
	}
}

// NewChromaSTFTDefault creates a chromagram calculator with A4=440Hz tuning
func NewChromaSTFTDefault(sampleRate int) *ChromaSTFT {
	return NewChromaSTFT(sampleRate, 440.0)
}

// ComputeChroma computes the chromagram of an audio signal
func (cs *ChromaSTFT) ComputeChroma(signal []float64, windowSize, hopSize int, window spectral.Window) ([][]float64, error) {
	if len(signal) == 0 {
		return nil, nil
	}

	stftResult, err := cs.stft.ComputeWithWindow(signal, windowSize, hopSize, cs.sampleRate, window)
	if err != nil {
		return nil, err
	}

	return cs.convertSTFTToChroma(stftResult), nil
}

// convertSTFTToChroma converts an STFT magnitude spectrogram to a chromagram
func (cs *ChromaSTFT) convertSTFTToChroma(stftResult *spectral.STFTResult) [][]float64 {
	chromagram := make([][]float64, stftResult.TimeFrames)

	// Pre-calculate frequency to chroma bin mapping
	chromaMapping := cs.calculateChromaMapping(stftResult.FreqBins, stftResult.FreqResolution)

	for t := range stftResult.TimeFrames {
		chromagram[t] = make([]float64, cs.chromaBins)

		for f := range stftResult.FreqBins {
			magnitude := stftResult.Magnitude[t][f]
			chromaBin := chromaMapping[f]

			if chromaBin >= 0 && chromaBin < cs.chromaBins {
				// Magnitude squared for energy
				chromagram[t][chromaBin] += magnitude * magnitude
			}
		}

		cs.normalizeChromaFrame(chromagram[t])
	}

	return chromagram
}

// calculateChromaMapping maps FFT bins to chroma bins
func (cs *ChromaSTFT) calculateChromaMapping(freqBins int, freqResolution float64) []int {
	mapping := make([]int, freqBins)

	for f := range freqBins {
		frequency := float64(f) * freqResolution

		if frequency < cs.minFreq || frequency > cs.maxFreq {
			mapping[f] = -1 // Outside valid range
			continue
		}

		midiNote := cs.frequencyToMIDI(frequency)

		chromaBin := int(math.Round(midiNote)) % 12
		mapping[f] = chromaBin
	}

	return mapping
}

// frequencyToMIDI converts frequency to MIDI note number (A4 = 69)
func (cs *ChromaSTFT) frequencyToMIDI(frequency float64) float64 {
	if frequency <= 0 {
		return 0
	}

	return 69.0 + 12.0*math.Log2(frequency/cs.tuningFreq)
}

// normalizeChromaFrame normalizes a single chroma frame to unit sum
func (cs *ChromaSTFT) normalizeChromaFrame(chromaFrame []float64) {
	totalEnergy := 0.0
	for _, energy := range chromaFrame {
		totalEnergy += energy
	}

	if totalEnergy > 1e-10 {
		for i := range chromaFrame {
			chromaFrame[i] /= totalEnergy
		}
	}
}

// GetChromaLabels returns the chroma bin labels
func (cs *ChromaSTFT) GetChromaLabels() []string {
	return []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
}
