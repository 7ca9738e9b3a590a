package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/babelcast/internal/languages"
	"codeberg.org/snonux/babelcast/internal/logging"
	"codeberg.org/snonux/babelcast/internal/metrics"
	"codeberg.org/snonux/babelcast/internal/speech"
	"codeberg.org/snonux/babelcast/internal/status"
	"codeberg.org/snonux/babelcast/internal/textfile"
	"codeberg.org/snonux/babelcast/internal/translation"
)

// ModelStore hands out loaded translation models.
type ModelStore interface {
	GetOrLoad(ctx context.Context, modelID string) (*translation.LoadedModel, error)
}

// TextTranslator runs one translation through a loaded model.
type TextTranslator interface {
	Translate(ctx context.Context, tok translation.Tokenizer, model translation.Model, text string) (string, error)
}

// Recognizer captures and transcribes one spoken phrase.
type Recognizer interface {
	RecognizeWith(ctx context.Context, locale string, rep status.Reporter) (speech.Result, error)
}

// Speaker speaks text aloud and returns when playback has finished.
type Speaker interface {
	SpeakWith(ctx context.Context, text, lang string, rep status.Reporter) error
}

// Deps are the collaborators of a Session. Recognizer and Speaker may be
// nil when the surface has no microphone or no speakers.
type Deps struct {
	Models     ModelStore
	Translator TextTranslator
	Recognizer Recognizer
	Speaker    Speaker
	Reporter   status.Reporter
	Log        *zap.Logger
	Metrics    *metrics.Recorder
}

// Session evaluates interactions one at a time per caller.
type Session struct {
	models     ModelStore
	translator TextTranslator
	recognizer Recognizer
	speaker    Speaker
	reporter   status.Reporter
	log        *zap.Logger
	metrics    *metrics.Recorder
}

// New creates a session.
func New(deps Deps) *Session {
	return &Session{
		models:     deps.Models,
		translator: deps.Translator,
		recognizer: deps.Recognizer,
		speaker:    deps.Speaker,
		reporter:   status.Or(deps.Reporter),
		log:        logging.OrNop(deps.Log),
		metrics:    deps.Metrics,
	}
}

// Warm loads the model of a pair ahead of the first translation.
func (s *Session) Warm(ctx context.Context, source, target string) error {
	pair, err := languages.Resolve(source, target)
	if err != nil {
		return err
	}
	_, err = s.models.GetOrLoad(ctx, pair.ModelID)
	return err
}

// Run evaluates one interaction. A Result is returned even on error so the
// caller can render how far the run got. Recognition failures and speech
// output failures are reported in the Result, not as errors.
func (s *Session) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	defer func() { s.metrics.Run(string(req.Mode), time.Since(start)) }()

	res := &Result{States: []State{Idle}}

	pair, err := languages.Resolve(req.Source, req.Target)
	if err != nil {
		res.ConfigErr = err
		return res, err
	}
	res.Pair = pair
	res.ActionsEnabled = true
	res.enter(PairSelected)

	if _, err := ParseMode(string(req.Mode)); err != nil {
		return res, err
	}
	res.enter(ModeSelected)

	var text string
	switch req.Mode {
	case ModeText:
		if req.Action == ActionRepeat && req.Translation != "" {
			s.repeat(ctx, req, res)
			return res, nil
		}
		text = req.Text

	case ModeFile:
		if req.File == nil {
			return res, nil
		}
		text, err = textfile.Decode(req.File.Name, req.File.Data)
		if err != nil {
			return res, err
		}
		res.Original = text
		if req.Action == ActionRepeat && req.Translation != "" {
			s.repeat(ctx, req, res)
			return res, nil
		}

	case ModeAudio:
		if req.Action != ActionSpeak {
			return res, nil
		}
		rec, err := s.recognize(ctx, pair)
		if err != nil {
			return res, err
		}
		res.Recognition = &rec
		if !rec.OK() {
			return res, nil
		}
		text = rec.Text
	}

	if strings.TrimSpace(text) == "" {
		return res, nil
	}
	res.Original = text

	res.enter(Translating)
	res.Translation, err = s.translate(ctx, pair, text)
	if err != nil {
		return res, err
	}

	if res.Translation != "" && !req.Mute {
		s.speak(ctx, pair.OutputLang, res.Translation, res)
	}
	res.enter(Idle)

	return res, nil
}

// repeat speaks the previous translation again without touching the models.
func (s *Session) repeat(ctx context.Context, req Request, res *Result) {
	res.Translation = req.Translation
	if !req.Mute {
		s.speak(ctx, res.Pair.OutputLang, req.Translation, res)
	}
	res.enter(Idle)
}

func (s *Session) recognize(ctx context.Context, pair languages.Pair) (speech.Result, error) {
	if s.recognizer == nil {
		return speech.Result{}, errors.New("speech input is not available")
	}

	rec, err := s.recognizer.RecognizeWith(ctx, pair.Locale(), s.reporter)
	if err != nil {
		return rec, err
	}
	s.metrics.Recognition(rec.Outcome.String())

	if !rec.OK() {
		s.log.Info("speech not recognized",
			zap.String("outcome", rec.Outcome.String()),
			zap.String("locale", pair.Locale()),
			zap.Error(rec.Err))
	}
	return rec, nil
}

func (s *Session) translate(ctx context.Context, pair languages.Pair, text string) (string, error) {
	s.reporter.Begin(status.Translating)
	defer s.reporter.End(status.Translating)

	model, err := s.models.GetOrLoad(ctx, pair.ModelID)
	if err != nil {
		s.metrics.Translation(pair.Key(), err)
		return "", err
	}

	out, err := s.translator.Translate(ctx, model.Tokenizer, model.Model, text)
	s.metrics.Translation(pair.Key(), err)
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}

	s.log.Debug("translated",
		zap.String("pair", pair.Key()),
		zap.String("model", pair.ModelID),
		zap.Int("chars_in", len(text)),
		zap.Int("chars_out", len(out)))
	return out, nil
}

func (s *Session) speak(ctx context.Context, lang, text string, res *Result) {
	if s.speaker == nil {
		return
	}

	res.enter(Speaking)
	err := s.speaker.SpeakWith(ctx, text, lang, s.reporter)
	s.metrics.Synthesis(err)
	if err != nil {
		s.log.Warn("speech output failed", zap.String("lang", lang), zap.Error(err))
		res.SpeakErr = err
		return
	}
	res.Spoke = true
}
