package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auralis/spoofcheck/algorithms/windowing"
)

func sine(freq float64, sampleRate, numSamples int) []float64 {
	signal := make([]float64, numSamples)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return signal
}

func TestSTFT_Shape(t *testing.T) {
	stft := NewSTFT()
	window := windowing.NewHann(512)

	signal := sine(440, 16000, 16000)
	result, err := stft.ComputeWithWindow(signal, 512, 256, 16000, window)
	require.NoError(t, err)

	expectedFrames := (len(signal)-512)/256 + 1
	assert.Equal(t, expectedFrames, result.TimeFrames)
	assert.Equal(t, 257, result.FreqBins)
	assert.Len(t, result.Magnitude, expectedFrames)
	assert.Len(t, result.Magnitude[0], 257)
}

func TestSTFT_Deterministic(t *testing.T) {
	// Parallel frame processing must not perturb the output
	stft := NewSTFT()
	window := windowing.NewHann(512)
	signal := sine(440, 16000, 4*16000)

	first, err := stft.ComputeWithWindow(signal, 512, 256, 16000, window)
	require.NoError(t, err)
	second, err := stft.ComputeWithWindow(signal, 512, 256, 16000, window)
	require.NoError(t, err)

	assert.Equal(t, first.Magnitude, second.Magnitude)
}

func TestSTFT_PeakAtToneFrequency(t *testing.T) {
	stft := NewSTFT()
	window := windowing.NewHann(512)

	freq := 1000.0
	result, err := stft.ComputeWithWindow(sine(freq, 16000, 8000), 512, 256, 16000, window)
	require.NoError(t, err)

	frame := result.Magnitude[result.TimeFrames/2]
	peakBin := 0
	for i, m := range frame {
		if m > frame[peakBin] {
			peakBin = i
		}
	}

	peakFreq := float64(peakBin) * result.FreqResolution
	assert.InDelta(t, freq, peakFreq, result.FreqResolution)
}

func TestSTFT_WindowSizeMismatchPropagates(t *testing.T) {
	stft := NewSTFT()

	// Window shorter than the frame: every ApplyInPlace call fails and
	// the failure must surface instead of yielding zero frames.
	window := windowing.NewHann(256)
	_, err := stft.ComputeWithWindow(sine(440, 16000, 8000), 512, 256, 16000, window)
	assert.Error(t, err)
}

func TestSTFT_SignalTooShort(t *testing.T) {
	stft := NewSTFT()
	window := windowing.NewHann(512)

	_, err := stft.ComputeWithWindow(make([]float64, 100), 512, 256, 16000, window)
	assert.Error(t, err)
}

func TestSpectralCentroid_TracksFrequency(t *testing.T) {
	stft := NewSTFT()
	window := windowing.NewHann(512)
	centroid := NewSpectralCentroid(16000)

	lowResult, err := stft.ComputeWithWindow(sine(300, 16000, 8000), 512, 256, 16000, window)
	require.NoError(t, err)
	highResult, err := stft.ComputeWithWindow(sine(4000, 16000, 8000), 512, 256, 16000, window)
	require.NoError(t, err)

	lowCentroids := centroid.ComputeFrames(lowResult.Magnitude)
	highCentroids := centroid.ComputeFrames(highResult.Magnitude)

	mid := len(lowCentroids) / 2
	assert.Less(t, lowCentroids[mid], highCentroids[mid])
}

func TestSpectralRolloff_Bounds(t *testing.T) {
	stft := NewSTFT()
	window := windowing.NewHann(512)
	rolloff := NewSpectralRolloff(16000)

	result, err := stft.ComputeWithWindow(sine(1000, 16000, 8000), 512, 256, 16000, window)
	require.NoError(t, err)

	values := rolloff.ComputeFrames(result.Magnitude, 0.85)
	for _, v := range values {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 8000.0)
	}
}

func TestZeroCrossingRate_ScalesWithFrequency(t *testing.T) {
	zcr := NewZeroCrossingRate(16000, 512, 256)

	lowRates := zcr.ComputeFrames(sine(200, 16000, 8000))
	highRates := zcr.ComputeFrames(sine(2000, 16000, 8000))
	require.NotEmpty(t, lowRates)
	require.NotEmpty(t, highRates)

	assert.Less(t, lowRates[0], highRates[0])

	// A 200 Hz tone crosses zero 400 times per second
	expected := 400.0 / 16000.0
	assert.InDelta(t, expected, lowRates[0], expected*0.2)
}

func TestMelScale_Roundtrip(t *testing.T) {
	ms := NewMelScale()

	for _, hz := range []float64{100, 440, 1000, 4000, 8000} {
		back := ms.MelToHz(ms.HzToMel(hz))
		assert.InDelta(t, hz, back, hz*1e-9)
	}
}

func TestMelFilterBank_Shape(t *testing.T) {
	ms := NewMelScale()
	bank := ms.CreateMelFilterBank(26, 512, 16000, 0, 8000)

	require.Len(t, bank, 26)
	for i, filter := range bank {
		assert.Len(t, filter, 257, "filter %d", i)
	}
}

func TestMFCC_FrameShape(t *testing.T) {
	stft := NewSTFT()
	window := windowing.NewHann(512)

	result, err := stft.ComputeWithWindow(sine(440, 16000, 8000), 512, 256, 16000, window)
	require.NoError(t, err)

	mfcc := NewMFCC(16000, 20)
	frames, err := mfcc.ComputeFrames(result.Magnitude)
	require.NoError(t, err)

	require.Len(t, frames, result.TimeFrames)
	for _, frame := range frames {
		assert.Len(t, frame, 20)
	}
}

func TestSpectralContrast_FrameShape(t *testing.T) {
	stft := NewSTFT()
	window := windowing.NewHann(512)

	result, err := stft.ComputeWithWindow(sine(440, 16000, 8000), 512, 256, 16000, window)
	require.NoError(t, err)

	contrast := NewSpectralContrast(16000, 7)
	frames := contrast.ComputeFrames(result.Magnitude)

	require.Len(t, frames, result.TimeFrames)
	for _, frame := range frames {
		assert.Len(t, frame, 7)
	}
}
