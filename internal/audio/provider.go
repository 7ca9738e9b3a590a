// Package audio synthesizes speech for translated text and plays it back.
// Each utterance goes through a temporary mp3 artifact that is removed as
// soon as playback ends.
package audio

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"codeberg.org/snonux/babelcast/internal/logging"
)

// Provider names accepted by NewProvider.
const (
	ProviderGoogle = "google"
	ProviderOpenAI = "openai"
	ProviderESpeak = "espeak"
)

// Provider defines the interface for text-to-speech providers
type Provider interface {
	// GenerateAudio speaks text in language lang (ISO 639-1) and saves it to outputFile
	GenerateAudio(ctx context.Context, text, lang, outputFile string) error

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// Config holds common configuration for audio providers
type Config struct {
	Provider string // "google", "openai" or "espeak"
	Fallback string // optional provider used when Provider fails
	TempDir  string // where audio artifacts are written, os.TempDir() when empty

	GoogleURL string

	// OpenAI-specific settings
	OpenAIKey     string
	OpenAIModel   string  // "tts-1", "tts-1-hd", or "gpt-4o-mini-tts"
	OpenAIVoice   string  // "alloy", "ash", "ballad", "coral", "echo", "fable", "onyx", "nova", "sage", "shimmer", "verse"
	OpenAISpeed   float64 // 0.25 to 4.0
	OpenAIBaseURL string

	ESpeakSpeed int // words per minute
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:    ProviderGoogle,
		GoogleURL:   DefaultGoogleURL,
		OpenAIModel: "gpt-4o-mini-tts",
		OpenAIVoice: "alloy",
		OpenAISpeed: 1.0,
		ESpeakSpeed: 150,
	}
}

// NewProvider creates the audio provider named name
func NewProvider(name string, config *Config, log *zap.Logger) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	switch name {
	case "", ProviderGoogle:
		return NewGoogleProvider(config.GoogleURL, log), nil
	case ProviderOpenAI:
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIProvider(config)
	case ProviderESpeak:
		espeakConfig := DefaultConfig()
		if config.ESpeakSpeed > 0 {
			espeakConfig.Speed = config.ESpeakSpeed
		}
		return NewESpeakProvider(espeakConfig)
	default:
		return nil, fmt.Errorf("unknown audio provider: %s", name)
	}
}

// NewConfiguredProvider creates config.Provider, wrapped with config.Fallback when set.
func NewConfiguredProvider(config *Config, log *zap.Logger) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	primary, err := NewProvider(config.Provider, config, log)
	if err != nil {
		return nil, err
	}
	if config.Fallback == "" || config.Fallback == config.Provider {
		return primary, nil
	}

	fallback, err := NewProvider(config.Fallback, config, log)
	if err != nil {
		// an unusable fallback must not take the primary down with it
		logging.OrNop(log).Warn("fallback audio provider unavailable",
			zap.String("provider", config.Fallback), zap.Error(err))
		return primary, nil
	}
	return NewProviderWithFallback(primary, fallback, log), nil
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
	log      *zap.Logger
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback Provider, log *zap.Logger) Provider {
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
		log:      logging.OrNop(log),
	}
}

// GenerateAudio tries primary provider first, falls back to secondary on error
func (p *ProviderWithFallback) GenerateAudio(ctx context.Context, text, lang, outputFile string) error {
	err := p.primary.GenerateAudio(ctx, text, lang, outputFile)
	if err != nil {
		p.log.Warn("primary audio provider failed, falling back",
			zap.String("primary", p.primary.Name()),
			zap.String("fallback", p.fallback.Name()),
			zap.Error(err))

		return p.fallback.GenerateAudio(ctx, text, lang, outputFile)
	}
	return nil
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

// IsAvailable checks if at least one provider is available
func (p *ProviderWithFallback) IsAvailable() error {
	primaryErr := p.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := p.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both providers unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}
