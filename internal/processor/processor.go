package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"codeberg.org/snonux/babelcast/internal"
	"codeberg.org/snonux/babelcast/internal/audio"
	"codeberg.org/snonux/babelcast/internal/cli"
	"codeberg.org/snonux/babelcast/internal/gui"
	"codeberg.org/snonux/babelcast/internal/logging"
	"codeberg.org/snonux/babelcast/internal/metrics"
	"codeberg.org/snonux/babelcast/internal/models"
	"codeberg.org/snonux/babelcast/internal/server"
	"codeberg.org/snonux/babelcast/internal/session"
	"codeberg.org/snonux/babelcast/internal/speech"
	"codeberg.org/snonux/babelcast/internal/status"
	"codeberg.org/snonux/babelcast/internal/translation"
)

// ErrNothingToTranslate is returned when the command-line input is blank.
var ErrNothingToTranslate = errors.New("nothing to translate")

// Processor owns the long-lived components shared by all sessions
type Processor struct {
	flags  *cli.Flags
	config *cli.Config
	log    *zap.Logger
	out    io.Writer

	registry   *prometheus.Registry
	metrics    *metrics.Recorder
	cache      *translation.ModelCache
	translator *translation.Translator
}

// NewProcessor creates a processor for the configured translation backend
func NewProcessor(flags *cli.Flags, config *cli.Config, log *zap.Logger) (*Processor, error) {
	loader, err := translation.NewLoader(config.Translation, log)
	if err != nil {
		return nil, err
	}
	return newProcessor(flags, config, loader, log), nil
}

func newProcessor(flags *cli.Flags, config *cli.Config, loader translation.Loader, log *zap.Logger) *Processor {
	log = logging.OrNop(log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.New(registry)

	return &Processor{
		flags:    flags,
		config:   config,
		log:      log,
		out:      os.Stdout,
		registry: registry,
		metrics:  recorder,
		cache: translation.NewModelCache(loader,
			translation.WithLogger(log),
			translation.WithObserver(recorder),
		),
		translator: translation.NewTranslator(log),
	}
}

// newSession builds a session. listen wires the microphone and speak the
// speakers; a device that cannot be set up is left out with a warning.
func (p *Processor) newSession(rep status.Reporter, log *zap.Logger, listen, speak bool) *session.Session {
	deps := session.Deps{
		Models:     p.cache,
		Translator: p.translator,
		Reporter:   rep,
		Log:        log,
		Metrics:    p.metrics,
	}

	if listen {
		rec, err := speech.New(p.config.Speech, rep, log)
		if err != nil {
			log.Warn("speech input unavailable", zap.Error(err))
		} else {
			deps.Recognizer = rec
		}
	}

	if speak {
		synth, err := p.newSynthesizer(rep, log)
		if err != nil {
			log.Warn("speech output unavailable", zap.Error(err))
		} else {
			deps.Speaker = synth
		}
	}

	return session.New(deps)
}

func (p *Processor) newSynthesizer(rep status.Reporter, log *zap.Logger) (*audio.Synthesizer, error) {
	provider, err := audio.NewConfiguredProvider(p.config.Audio, log)
	if err != nil {
		return nil, err
	}
	if err := provider.IsAvailable(); err != nil {
		return nil, fmt.Errorf("%s provider not available: %w", provider.Name(), err)
	}

	tempDir := p.config.Audio.TempDir
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "babelcast")
	}
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}
	if n, err := internal.RemoveStaleArtifacts(tempDir, internal.StaleArtifactAge); err != nil {
		log.Warn("failed to clean up audio artifacts", zap.String("dir", tempDir), zap.Error(err))
	} else if n > 0 {
		log.Info("removed stale audio artifacts", zap.Int("count", n), zap.String("dir", tempDir))
	}

	return audio.NewSynthesizer(provider, audio.NewCommandPlayer(), tempDir, rep, log), nil
}

// request turns the interaction flags into a session request
func (p *Processor) request() (session.Request, error) {
	req := session.Request{
		Source: p.flags.From,
		Target: p.flags.To,
		Action: session.ActionSpeak,
		Mute:   p.flags.NoSpeak,
	}

	switch {
	case p.flags.Listen:
		req.Mode = session.ModeAudio
	case p.flags.File != "":
		data, err := os.ReadFile(p.flags.File)
		if err != nil {
			return req, fmt.Errorf("failed to read input file: %w", err)
		}
		req.Mode = session.ModeFile
		req.File = &session.Upload{Name: filepath.Base(p.flags.File), Data: data}
	default:
		req.Mode = session.ModeText
		req.Text = p.flags.Text
	}

	return req, nil
}

// ProcessInput runs the single interaction given on the command line
func (p *Processor) ProcessInput(ctx context.Context) error {
	req, err := p.request()
	if err != nil {
		return err
	}

	rep := status.Func(func(s status.Signal, active bool) {
		if active {
			fmt.Fprintln(os.Stderr, s.Message())
		}
	})
	sess := p.newSession(rep, p.log, req.Mode == session.ModeAudio, !req.Mute)

	res, err := sess.Run(ctx, req)
	if err != nil {
		return err
	}

	if res.Recognition != nil && !res.Recognition.OK() {
		return errors.New(res.Recognition.Message())
	}
	if res.Waiting() {
		return ErrNothingToTranslate
	}

	fmt.Fprintf(p.out, "%s (%s)\n", res.Pair.Key(), res.Pair.ModelID)
	fmt.Fprintf(p.out, "\nOriginal:\n%s\n", strings.TrimSpace(res.Original))
	fmt.Fprintf(p.out, "\nTranslation:\n%s\n", res.Translation)

	if res.SpeakErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to speak the translation: %v\n", res.SpeakErr)
	}
	return nil
}

// ListPairs prints the supported language pairs
func (p *Processor) ListPairs() {
	models.ListPairs(p.out)
}

// ListModels prints the translation models, loading each one when check is set
func (p *Processor) ListModels(ctx context.Context, check bool) error {
	return models.NewLister(p.cache, p.out).ListModels(ctx, check)
}

// Serve runs the HTTP API until ctx is cancelled
func (p *Processor) Serve(ctx context.Context) error {
	sess := p.newSession(nil, p.log, false, false)

	var synth server.Synthesizer
	if s, err := p.newSynthesizer(nil, p.log); err != nil {
		p.log.Warn("speech endpoint disabled", zap.Error(err))
	} else {
		synth = s
	}

	srv := server.New(p.config.Server, sess, synth, p.registry, p.log)
	return srv.ListenAndServe(ctx)
}

// RunGUIMode launches the GUI application
func (p *Processor) RunGUIMode() error {
	config := &gui.Config{
		Source: p.flags.From,
		Target: p.flags.To,
		Log:    p.log,
	}

	app := gui.New(config, func(rep status.Reporter, log *zap.Logger) gui.Session {
		return p.newSession(rep, log, true, !p.flags.NoSpeak)
	})
	app.Run()

	return nil
}
