// Package speech records one spoken phrase from the default microphone and
// transcribes it with a remote recognition service. Recognition failures are
// reported as tagged Result values; only capture device failures are errors.
package speech

import (
	"context"
	"errors"
	"time"
)

// Outcome tags a recognition Result.
type Outcome int

const (
	Recognized Outcome = iota + 1
	Timeout
	Unrecognized
	NetworkError
)

func (o Outcome) String() string {
	switch o {
	case Recognized:
		return "recognized"
	case Timeout:
		return "timeout"
	case Unrecognized:
		return "unrecognized"
	case NetworkError:
		return "network_error"
	default:
		return "unknown"
	}
}

var (
	// ErrNoSpeech is returned by a Capturer when nothing was said before the timeout.
	ErrNoSpeech = errors.New("no speech detected before timeout")
	// ErrUnintelligible is returned by a Transcriber that heard audio but could not decode it.
	ErrUnintelligible = errors.New("speech could not be understood")
)

// Result is the outcome of one recognition attempt. Text is set only when
// Outcome is Recognized; Err only when it is NetworkError.
type Result struct {
	Outcome Outcome
	Text    string
	Err     error
}

// OK reports whether the result carries recognized text.
func (r Result) OK() bool {
	return r.Outcome == Recognized
}

// Message returns the text shown to the user for a failed recognition.
// It is for display only.
func (r Result) Message() string {
	switch r.Outcome {
	case Recognized:
		return r.Text
	case Timeout:
		return "No speech detected. Please try again."
	case Unrecognized:
		return "Speech not recognized. Please try again."
	case NetworkError:
		return "Could not request results. Check your internet connection."
	default:
		return ""
	}
}

// Capturer records one phrase and returns it as a WAV file. It returns
// ErrNoSpeech when no speech starts within timeout.
type Capturer interface {
	Capture(ctx context.Context, timeout time.Duration) ([]byte, error)
}

// Transcriber converts a WAV recording to text in the given locale (BCP 47, e.g. "en-IN").
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte, locale string) (string, error)
}
