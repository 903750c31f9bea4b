package temporal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func tone(freq float64, sampleRate, numSamples int) []float64 {
	signal := make([]float64, numSamples)
	for i := range signal {
		signal[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return signal
}

func TestSilenceTrimmer_RemovesLeadingAndTrailingSilence(t *testing.T) {
	trimmer := NewSilenceTrimmer(512, 256)

	sampleRate := 16000
	voiced := tone(440, sampleRate, sampleRate)
	signal := make([]float64, 3*sampleRate)
	copy(signal[sampleRate:], voiced)

	trimmed := trimmer.Trim(signal, 20)

	// Trimming is frame-quantized, so allow a frame of slack per edge
	assert.InDelta(t, len(voiced), len(trimmed), 1024)
	assert.Less(t, len(trimmed), 2*sampleRate)
}

func TestSilenceTrimmer_AllSilence(t *testing.T) {
	trimmer := NewSilenceTrimmer(512, 256)
	trimmed := trimmer.Trim(make([]float64, 16000), 20)
	assert.Empty(t, trimmed)
}

func TestSilenceTrimmer_AllVoiced(t *testing.T) {
	trimmer := NewSilenceTrimmer(512, 256)
	signal := tone(440, 16000, 16000)
	trimmed := trimmer.Trim(signal, 20)
	assert.InDelta(t, len(signal), len(trimmed), 1024)
}

func TestSilenceTrimmer_ShorterThanFrame(t *testing.T) {
	trimmer := NewSilenceTrimmer(512, 256)
	signal := tone(440, 16000, 100)
	trimmed := trimmer.Trim(signal, 20)
	assert.NotEmpty(t, trimmed)
}

func TestSilenceTrimmer_KeepsInteriorQuiet(t *testing.T) {
	// Quiet passage between two voiced runs must survive trimming
	trimmer := NewSilenceTrimmer(512, 256)

	sampleRate := 16000
	signal := make([]float64, 3*sampleRate)
	copy(signal, tone(440, sampleRate, sampleRate))
	copy(signal[2*sampleRate:], tone(440, sampleRate, sampleRate))

	trimmed := trimmer.Trim(signal, 20)
	assert.Greater(t, len(trimmed), 2*sampleRate)
}
