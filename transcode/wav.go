package transcode

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"time"

	wav "github.com/youpy/go-wav"

	"github.com/auralis/spoofcheck/logging"
)

const wavReadChunk = 4096

// isWAV reports whether the data starts with a RIFF/WAVE header
func isWAV(data []byte) bool {
	return len(data) >= 12 &&
		bytes.Equal(data[0:4], []byte("RIFF")) &&
		bytes.Equal(data[8:12], []byte("WAVE"))
}

// decodeWAVBytes decodes PCM WAV data without shelling out to ffmpeg.
// Multi-channel input is downmixed by averaging, and the signal is
// resampled to the target rate when needed.
func (d *Decoder) decodeWAVBytes(data []byte) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "decodeWAVBytes",
	})

	reader := wav.NewReader(bytes.NewReader(data))

	format, err := reader.Format()
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV format: %w", err)
	}

	numChannels := int(format.NumChannels)
	if numChannels < 1 || numChannels > 2 {
		return nil, fmt.Errorf("unsupported WAV channel count: %d", numChannels)
	}

	sourceRate := int(format.SampleRate)
	if sourceRate <= 0 {
		return nil, fmt.Errorf("invalid WAV sample rate: %d", sourceRate)
	}

	var samples []float64
	for {
		chunk, err := reader.ReadSamples(wavReadChunk)
		if len(chunk) > 0 {
			for _, s := range chunk {
				var v float64
				for ch := range numChannels {
					v += reader.FloatValue(s, uint(ch))
				}
				samples = append(samples, v/float64(numChannels))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read WAV samples: %w", err)
		}
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("no audio samples decoded")
	}

	targetRate := d.config.TargetSampleRate
	if sourceRate != targetRate {
		samples = resampleLinear(samples, sourceRate, targetRate)
	}

	if d.config.MaxDuration > 0 {
		maxSamples := int(d.config.MaxDuration.Seconds() * float64(targetRate))
		if maxSamples > 0 && len(samples) > maxSamples {
			samples = samples[:maxSamples]
		}
	}

	duration := time.Duration(len(samples)) * time.Second / time.Duration(targetRate)

	logger.Debug("WAV decode completed", logging.Fields{
		"source_sample_rate": sourceRate,
		"source_channels":    numChannels,
		"output_samples":     len(samples),
		"output_duration":    duration.Seconds(),
	})

	return &AudioData{
		PCM:        samples,
		SampleRate: targetRate,
		Channels:   1,
		Duration:   duration,
		Timestamp:  time.Now(),
	}, nil
}

// resampleLinear resamples a signal with linear interpolation
func resampleLinear(signal []float64, sourceRate, targetRate int) []float64 {
	if sourceRate == targetRate || len(signal) == 0 {
		return signal
	}

	ratio := float64(sourceRate) / float64(targetRate)
	outputLen := int(math.Round(float64(len(signal)) / ratio))
	if outputLen < 1 {
		outputLen = 1
	}

	output := make([]float64, outputLen)
	for i := range output {
		pos := float64(i) * ratio
		idx := int(pos)
		frac := pos - float64(idx)

		if idx >= len(signal)-1 {
			output[i] = signal[len(signal)-1]
			continue
		}

		output[i] = signal[idx]*(1-frac) + signal[idx+1]*frac
	}

	return output
}
