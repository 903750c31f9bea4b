package transcode

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	wav "github.com/youpy/go-wav"
)

func encodeWAV(t *testing.T, samples []float64, sampleRate int, channels int) []byte {
	t.Helper()

	wavSamples := make([]wav.Sample, len(samples))
	for i, v := range samples {
		iv := int(v * 32767)
		wavSamples[i] = wav.Sample{Values: [2]int{iv, iv}}
	}

	var buf bytes.Buffer
	writer := wav.NewWriter(&buf, uint32(len(samples)), uint16(channels), uint32(sampleRate), 16)
	require.NoError(t, writer.WriteSamples(wavSamples))

	return buf.Bytes()
}

func testTone(freq float64, sampleRate, numSamples int) []float64 {
	signal := make([]float64, numSamples)
	for i := range signal {
		signal[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return signal
}

func TestIsWAV(t *testing.T) {
	data := encodeWAV(t, testTone(440, 16000, 1600), 16000, 1)
	assert.True(t, isWAV(data))

	assert.False(t, isWAV([]byte("ID3\x04something that is not wav")))
	assert.False(t, isWAV([]byte("RIFF")))
	assert.False(t, isWAV(nil))
}

func TestDecoder_WAVRoundtrip(t *testing.T) {
	sampleRate := 16000
	original := testTone(440, sampleRate, sampleRate)
	data := encodeWAV(t, original, sampleRate, 1)

	decoder := NewDecoder(&DecoderConfig{TargetSampleRate: sampleRate})
	audio, err := decoder.DecodeBytes(data)
	require.NoError(t, err)

	assert.Equal(t, sampleRate, audio.SampleRate)
	assert.Equal(t, 1, audio.Channels)
	assert.Len(t, audio.PCM, len(original))
	assert.InDelta(t, time.Second.Seconds(), audio.Duration.Seconds(), 1e-3)

	// 16-bit quantization bounds the roundtrip error
	for i := range original {
		assert.InDelta(t, original[i], audio.PCM[i], 1e-3, "sample %d", i)
	}
}

func TestDecoder_WAVStereoDownmix(t *testing.T) {
	sampleRate := 16000
	tone := testTone(440, sampleRate, sampleRate/2)
	data := encodeWAV(t, tone, sampleRate, 2)

	decoder := NewDecoder(&DecoderConfig{TargetSampleRate: sampleRate})
	audio, err := decoder.DecodeBytes(data)
	require.NoError(t, err)

	// Both channels carry the same tone, so the downmix preserves it
	assert.Equal(t, 1, audio.Channels)
	for i := range tone {
		assert.InDelta(t, tone[i], audio.PCM[i], 1e-3, "sample %d", i)
	}
}

func TestDecoder_WAVResample(t *testing.T) {
	sourceRate := 8000
	targetRate := 16000
	data := encodeWAV(t, testTone(440, sourceRate, sourceRate), sourceRate, 1)

	decoder := NewDecoder(&DecoderConfig{TargetSampleRate: targetRate})
	audio, err := decoder.DecodeBytes(data)
	require.NoError(t, err)

	assert.Equal(t, targetRate, audio.SampleRate)
	// 1s of audio should stay 1s after resampling
	assert.InDelta(t, 1.0, audio.Duration.Seconds(), 0.01)
}

func TestDecoder_WAVMaxDuration(t *testing.T) {
	sampleRate := 16000
	data := encodeWAV(t, testTone(440, sampleRate, 4*sampleRate), sampleRate, 1)

	decoder := NewDecoder(&DecoderConfig{
		TargetSampleRate: sampleRate,
		MaxDuration:      time.Second,
	})
	audio, err := decoder.DecodeBytes(data)
	require.NoError(t, err)

	assert.Len(t, audio.PCM, sampleRate)
}

func TestDecoder_EmptyInput(t *testing.T) {
	decoder := NewDecoder(nil)
	_, err := decoder.DecodeBytes(nil)
	assert.Error(t, err)
}

func TestResampleLinear(t *testing.T) {
	signal := []float64{0, 1, 2, 3}

	upsampled := resampleLinear(signal, 8000, 16000)
	assert.Len(t, upsampled, 8)
	assert.InDelta(t, 0.5, upsampled[1], 1e-12)

	downsampled := resampleLinear(signal, 16000, 8000)
	assert.Len(t, downsampled, 2)
	assert.InDelta(t, 0.0, downsampled[0], 1e-12)
	assert.InDelta(t, 2.0, downsampled[1], 1e-12)
}

func TestBytesToFloat64(t *testing.T) {
	assert.Nil(t, bytesToFloat64(nil))
	assert.Nil(t, bytesToFloat64([]byte{1, 2, 3}))

	// 1.0 encoded as little-endian float64
	data := []byte{0, 0, 0, 0, 0, 0, 0xf0, 0x3f}
	samples := bytesToFloat64(data)
	require.Len(t, samples, 1)
	assert.Equal(t, 1.0, samples[0])
}
