package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"codeberg.org/snonux/babelcast/internal"
	"codeberg.org/snonux/babelcast/internal/logging"
	"codeberg.org/snonux/babelcast/internal/status"
)

// Synthesizer turns text into speech through a temporary audio artifact.
type Synthesizer struct {
	provider Provider
	player   Player
	tempDir  string
	reporter status.Reporter
	log      *zap.Logger
}

// NewSynthesizer creates a synthesizer. An empty tempDir selects os.TempDir().
func NewSynthesizer(provider Provider, player Player, tempDir string, rep status.Reporter, log *zap.Logger) *Synthesizer {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Synthesizer{
		provider: provider,
		player:   player,
		tempDir:  tempDir,
		reporter: status.Or(rep),
		log:      logging.OrNop(log),
	}
}

// Speak synthesizes text in lang and plays it, blocking until playback ends.
func (s *Synthesizer) Speak(ctx context.Context, text, lang string) error {
	return s.SpeakWith(ctx, text, lang, s.reporter)
}

// SpeakWith is Speak with a per-call progress reporter.
func (s *Synthesizer) SpeakWith(ctx context.Context, text, lang string, rep status.Reporter) error {
	if err := ValidateText(text); err != nil {
		return err
	}
	if s.player == nil {
		return ErrNoPlayer
	}

	rep = status.Or(rep)
	rep.Begin(status.Speaking)
	defer rep.End(status.Speaking)

	return s.withArtifact(ctx, text, lang, func(path string) error {
		if err := s.player.Play(ctx, path); err != nil {
			return fmt.Errorf("audio playback failed: %w", err)
		}
		return nil
	})
}

// Synthesize writes the synthesized mp3 for text to w instead of playing it.
func (s *Synthesizer) Synthesize(ctx context.Context, text, lang string, w io.Writer) (int64, error) {
	if err := ValidateText(text); err != nil {
		return 0, err
	}

	var written int64
	err := s.withArtifact(ctx, text, lang, func(path string) error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		written, err = io.Copy(w, f)
		return err
	})
	return written, err
}

// withArtifact generates the audio for text into a fresh artifact, hands the
// path to use and removes the artifact on every exit path.
func (s *Synthesizer) withArtifact(ctx context.Context, text, lang string, use func(path string) error) error {
	path := filepath.Join(s.tempDir, internal.AudioArtifactName())
	defer s.remove(path)

	if err := s.provider.GenerateAudio(ctx, text, lang, path); err != nil {
		return fmt.Errorf("speech synthesis failed: %w", err)
	}
	s.log.Debug("audio artifact generated",
		zap.String("provider", s.provider.Name()),
		zap.String("lang", lang),
		zap.String("path", path))

	return use(path)
}

func (s *Synthesizer) remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("failed to remove audio artifact", zap.String("path", path), zap.Error(err))
	}
}
