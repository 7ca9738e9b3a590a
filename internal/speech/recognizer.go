package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/babelcast/internal/logging"
	"codeberg.org/snonux/babelcast/internal/status"
)

// DefaultTimeout bounds the wait for speech to start.
const DefaultTimeout = 5 * time.Second

// Recognizer combines a Capturer and a Transcriber.
type Recognizer struct {
	capturer    Capturer
	transcriber Transcriber
	timeout     time.Duration
	reporter    status.Reporter
	log         *zap.Logger
}

// Option configures a Recognizer.
type Option func(*Recognizer)

// WithTimeout sets how long to wait for speech to start.
func WithTimeout(d time.Duration) Option {
	return func(r *Recognizer) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithReporter sets the progress reporter.
func WithReporter(rep status.Reporter) Option {
	return func(r *Recognizer) { r.reporter = status.Or(rep) }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Recognizer) { r.log = logging.OrNop(log) }
}

// NewRecognizer creates a recognizer.
func NewRecognizer(c Capturer, t Transcriber, opts ...Option) *Recognizer {
	r := &Recognizer{
		capturer:    c,
		transcriber: t,
		timeout:     DefaultTimeout,
		reporter:    status.Nop{},
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recognize listens for one phrase and transcribes it in locale. The error
// is non-nil only when the input device cannot be used.
func (r *Recognizer) Recognize(ctx context.Context, locale string) (Result, error) {
	return r.RecognizeWith(ctx, locale, r.reporter)
}

// RecognizeWith is Recognize with a per-call progress reporter.
func (r *Recognizer) RecognizeWith(ctx context.Context, locale string, rep status.Reporter) (Result, error) {
	rep = status.Or(rep)

	rep.Begin(status.Listening)
	wav, err := r.capturer.Capture(ctx, r.timeout)
	rep.End(status.Listening)

	switch {
	case errors.Is(err, ErrNoSpeech):
		r.log.Debug("no speech before timeout", zap.Duration("timeout", r.timeout))
		return Result{Outcome: Timeout}, nil
	case err != nil:
		return Result{}, fmt.Errorf("audio capture failed: %w", err)
	}

	rep.Begin(status.Processing)
	defer rep.End(status.Processing)

	text, err := r.transcriber.Transcribe(ctx, wav, locale)
	switch {
	case errors.Is(err, ErrUnintelligible):
		return Result{Outcome: Unrecognized}, nil
	case err != nil:
		r.log.Warn("transcription request failed", zap.String("locale", locale), zap.Error(err))
		return Result{Outcome: NetworkError, Err: err}, nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Outcome: Unrecognized}, nil
	}

	r.log.Debug("speech recognized", zap.String("locale", locale), zap.Int("chars", len(text)))
	return Result{Outcome: Recognized, Text: text}, nil
}
