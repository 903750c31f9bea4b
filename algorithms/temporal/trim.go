package temporal

import (
	"math"
)

// SilenceTrimmer removes low-energy regions from the edges of a signal.
// A frame is kept when its RMS level is within topDB decibels of the
// loudest frame, so the threshold tracks the recording level rather than
// an absolute amplitude.
type SilenceTrimmer struct {
	frameSize int
	hopSize   int
}

// NewSilenceTrimmer creates a trimmer with the given frame geometry
func NewSilenceTrimmer(frameSize, hopSize int) *SilenceTrimmer {
	return &SilenceTrimmer{
		frameSize: frameSize,
		hopSize:   hopSize,
	}
}

// Trim removes leading and trailing frames more than topDB below the peak
// frame level. Returns an empty slice when no frame clears the threshold.
func (st *SilenceTrimmer) Trim(signal []float64, topDB float64) []float64 {
	if len(signal) == 0 {
		return signal
	}

	energies := st.frameRMS(signal)
	if len(energies) == 0 {
		// Shorter than one frame; treat the whole signal as one frame
		if rms(signal) <= 0 {
			return []float64{}
		}
		return signal
	}

	peak := 0.0
	for _, e := range energies {
		if e > peak {
			peak = e
		}
	}

	if peak <= 0 {
		return []float64{}
	}

	peakDB := 20.0 * math.Log10(peak)
	threshold := peakDB - topDB

	first := -1
	last := -1
	for i, e := range energies {
		frameDB := -math.MaxFloat64
		if e > 0 {
			frameDB = 20.0 * math.Log10(e)
		}
		if frameDB > threshold {
			if first == -1 {
				first = i
			}
			last = i
		}
	}

	if first == -1 {
		return []float64{}
	}

	startSample := first * st.hopSize
	endSample := last*st.hopSize + st.frameSize
	endSample = min(endSample, len(signal))

	return signal[startSample:endSample]
}

// frameRMS computes RMS energy for overlapping frames
func (st *SilenceTrimmer) frameRMS(signal []float64) []float64 {
	if len(signal) < st.frameSize {
		return []float64{}
	}

	numFrames := (len(signal)-st.frameSize)/st.hopSize + 1
	energies := make([]float64, numFrames)

	for i := range numFrames {
		startIdx := i * st.hopSize
		endIdx := startIdx + st.frameSize

		if endIdx > len(signal) {
			break
		}

		energies[i] = rms(signal[startIdx:endIdx])
	}

	return energies
}

func rms(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}

	sum := 0.0
	for _, sample := range frame {
		sum += sample * sample
	}

	return math.Sqrt(sum / float64(len(frame)))
}
