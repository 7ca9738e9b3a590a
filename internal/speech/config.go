package speech

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/babelcast/internal/status"
)

// Transcription provider names.
const (
	ProviderOpenAI   = "openai"
	ProviderDeepgram = "deepgram"
)

// Config selects the capture and transcription backends.
type Config struct {
	Provider string
	Capture  string
	Timeout  time.Duration

	OpenAIKey     string
	OpenAIBaseURL string
	DeepgramKey   string
	DeepgramURL   string
}

// DefaultConfig returns Whisper transcription with command-line capture.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Capture:  CaptureCommand,
		Timeout:  DefaultTimeout,
	}
}

// NewTranscriber creates the configured transcription backend.
func NewTranscriber(cfg *Config, log *zap.Logger) (Transcriber, error) {
	switch cfg.Provider {
	case "", ProviderOpenAI:
		return NewOpenAITranscriber(cfg.OpenAIKey, cfg.OpenAIBaseURL)
	case ProviderDeepgram:
		return NewDeepgramTranscriber(cfg.DeepgramKey, cfg.DeepgramURL, log)
	default:
		return nil, fmt.Errorf("unknown speech provider: %s", cfg.Provider)
	}
}

// New builds a Recognizer from cfg.
func New(cfg *Config, rep status.Reporter, log *zap.Logger) (*Recognizer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	capturer, err := NewCapturer(cfg.Capture, log)
	if err != nil {
		return nil, err
	}
	transcriber, err := NewTranscriber(cfg, log)
	if err != nil {
		return nil, err
	}

	return NewRecognizer(capturer, transcriber,
		WithTimeout(cfg.Timeout),
		WithReporter(rep),
		WithLogger(log),
	), nil
}
