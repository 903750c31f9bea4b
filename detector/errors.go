package detector

import (
	"errors"
	"fmt"
)

// ErrorKind classifies detector failures by where they originate and
// whether a caller can retry with different input.
type ErrorKind int

const (
	// ErrConfigLoad covers missing or malformed model, scaler, and
	// configuration artifacts. Fatal at initialization.
	ErrConfigLoad ErrorKind = iota

	// ErrDimensionMismatch means the feature vector length disagrees
	// with what the scaler or model expects.
	ErrDimensionMismatch

	// ErrFeatureExtraction covers decode and analysis failures for a
	// single input. Other inputs are unaffected.
	ErrFeatureExtraction

	// ErrInsufficientAudio means the input had too little usable audio
	// after silence trimming.
	ErrInsufficientAudio
)

func (k ErrorKind) String() string {
	switch k {
	case ErrConfigLoad:
		return "config_load"
	case ErrDimensionMismatch:
		return "dimension_mismatch"
	case ErrFeatureExtraction:
		return "feature_extraction"
	case ErrInsufficientAudio:
		return "insufficient_audio"
	default:
		return "unknown"
	}
}

// Error is the detector's error type. It carries a kind for callers
// that branch on failure class and wraps the underlying cause.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func wrapError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// IsKind reports whether err is a detector error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}
