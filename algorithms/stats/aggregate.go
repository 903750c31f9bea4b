package stats

import (
	"gonum.org/v1/gonum/stat"
)

// MeanStd returns the mean and population standard deviation of a frame track.
// Population (not sample) deviation keeps aggregates consistent for single-frame
// tracks, where a sample deviation would be undefined.
func MeanStd(track []float64) (mean, std float64) {
	if len(track) == 0 {
		return 0, 0
	}

	mean = stat.Mean(track, nil)
	std = stat.PopStdDev(track, nil)
	return mean, std
}

// ColumnMeans computes the per-column mean of a frames-by-coefficients matrix
func ColumnMeans(frames [][]float64, numColumns int) []float64 {
	means := make([]float64, numColumns)
	if len(frames) == 0 {
		return means
	}

	column := make([]float64, 0, len(frames))
	for c := range numColumns {
		column = column[:0]
		for _, frame := range frames {
			if c < len(frame) {
				column = append(column, frame[c])
			}
		}
		if len(column) > 0 {
			means[c] = stat.Mean(column, nil)
		}
	}

	return means
}

// ColumnMeanStds computes the per-column mean and population standard deviation
// of a frames-by-coefficients matrix
func ColumnMeanStds(frames [][]float64, numColumns int) (means, stds []float64) {
	means = make([]float64, numColumns)
	stds = make([]float64, numColumns)
	if len(frames) == 0 {
		return means, stds
	}

	column := make([]float64, 0, len(frames))
	for c := range numColumns {
		column = column[:0]
		for _, frame := range frames {
			if c < len(frame) {
				column = append(column, frame[c])
			}
		}
		if len(column) > 0 {
			means[c], stds[c] = MeanStd(column)
		}
	}

	return means, stds
}
