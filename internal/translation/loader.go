package translation

import (
	"fmt"

	"go.uber.org/zap"
)

// Backend names accepted by NewLoader.
const (
	BackendHuggingFace = "huggingface"
	BackendOpenAI      = "openai"
	BackendGemini      = "gemini"
)

// Config selects and configures a translation backend.
type Config struct {
	Backend string

	HubURL       string
	InferenceURL string
	HFToken      string

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	GeminiKey   string
	GeminiModel string
}

// DefaultConfig returns the Hugging Face backend on the public endpoints.
func DefaultConfig() *Config {
	return &Config{
		Backend:      BackendHuggingFace,
		HubURL:       DefaultHubURL,
		InferenceURL: DefaultInferenceURL,
		GeminiModel:  DefaultGeminiModel,
	}
}

// NewLoader creates the loader for cfg.Backend.
func NewLoader(cfg *Config, log *zap.Logger) (Loader, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	switch cfg.Backend {
	case "", BackendHuggingFace:
		return NewHubLoader(cfg.HubURL, cfg.InferenceURL, cfg.HFToken, log), nil
	case BackendOpenAI:
		return NewOpenAILoader(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), nil
	case BackendGemini:
		return NewGeminiLoader(cfg.GeminiKey, cfg.GeminiModel), nil
	default:
		return nil, fmt.Errorf("unknown translation backend: %s", cfg.Backend)
	}
}
