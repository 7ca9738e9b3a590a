package speech

import (
	"bytes"
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/babelcast/internal/languages"
)

// OpenAITranscriber transcribes with OpenAI Whisper.
type OpenAITranscriber struct {
	client *openai.Client
	model  string
}

// NewOpenAITranscriber creates a transcriber. baseURL is optional.
func NewOpenAITranscriber(apiKey, baseURL string) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAITranscriber{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.Whisper1,
	}, nil
}

// Transcribe implements Transcriber. Whisper takes an ISO 639-1 language,
// so the locale is reduced to its base ("hi-IN" -> "hi").
func (t *OpenAITranscriber) Transcribe(ctx context.Context, wav []byte, locale string) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: "speech.wav",
		Reader:   bytes.NewReader(wav),
		Language: languages.BaseLanguage(locale),
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI transcription error: %w", err)
	}
	return resp.Text, nil
}
