package translation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"codeberg.org/snonux/babelcast/internal/languages"
)

// DefaultGeminiModel is used when no Gemini model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiLoader translates with a Gemini model through google.golang.org/genai.
type GeminiLoader struct {
	apiKey string
	model  string

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiLoader creates a loader. The client is created on first use.
func NewGeminiLoader(apiKey, model string) *GeminiLoader {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiLoader{apiKey: apiKey, model: model}
}

// Load implements Loader.
func (l *GeminiLoader) Load(ctx context.Context, modelID string) (*LoadedModel, error) {
	if l.apiKey == "" {
		return nil, fmt.Errorf("Gemini API key not found")
	}

	src, tgt, err := languages.ModelLanguages(modelID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownModel, err)
	}

	client, err := l.getClient(ctx)
	if err != nil {
		return nil, err
	}

	return &LoadedModel{
		ID:        modelID,
		Tokenizer: WordTokenizer{},
		Model: &chatModel{
			source: languages.DisplayName(src),
			target: languages.DisplayName(tgt),
			complete: func(ctx context.Context, prompt string, maxTokens int) (string, error) {
				return l.complete(ctx, client, prompt, maxTokens)
			},
		},
	}, nil
}

func (l *GeminiLoader) getClient(ctx context.Context) (*genai.Client, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.client != nil {
		return l.client, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  l.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	l.client = client
	return client, nil
}

func (l *GeminiLoader) complete(ctx context.Context, client *genai.Client, prompt string, maxTokens int) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.3),
		MaxOutputTokens: int32(maxTokens),
	}

	resp, err := client.Models.GenerateContent(ctx, l.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	return strings.TrimSpace(resp.Text()), nil
}
