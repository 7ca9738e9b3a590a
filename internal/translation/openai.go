package translation

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/babelcast/internal/languages"
)

// chatPrompt is shared by the chat-style backends.
const chatPrompt = "Translate the following %s text to %s. Respond with only the %s translation, nothing else.\n\n%s"

// OpenAILoader translates with an OpenAI chat model. Loading only checks
// that the identifier names a known opus-mt language direction.
type OpenAILoader struct {
	apiKey string
	client *openai.Client
	model  string
}

// NewOpenAILoader creates a loader. baseURL is optional.
func NewOpenAILoader(apiKey, model, baseURL string) *OpenAILoader {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAILoader{
		apiKey: apiKey,
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Load implements Loader.
func (l *OpenAILoader) Load(_ context.Context, modelID string) (*LoadedModel, error) {
	if l.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not found")
	}

	src, tgt, err := languages.ModelLanguages(modelID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownModel, err)
	}

	return &LoadedModel{
		ID:        modelID,
		Tokenizer: WordTokenizer{},
		Model: &chatModel{
			source: languages.DisplayName(src),
			target: languages.DisplayName(tgt),
			complete: func(ctx context.Context, prompt string, maxTokens int) (string, error) {
				return l.complete(ctx, prompt, maxTokens)
			},
		},
	}, nil
}

func (l *OpenAILoader) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: l.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	}

	resp, err := l.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoOutput
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// chatModel adapts a text completion function to Model. Chat APIs have no
// beam control, so only MaxLength is honoured.
type chatModel struct {
	source   string
	target   string
	complete func(ctx context.Context, prompt string, maxTokens int) (string, error)
}

func (m *chatModel) Generate(ctx context.Context, input []string, cfg GenerationConfig) ([][]string, error) {
	tok := WordTokenizer{}
	text := tok.Decode(input, true)
	prompt := fmt.Sprintf(chatPrompt, m.source, m.target, m.target, text)

	// a word is usually more than one completion token
	out, err := m.complete(ctx, prompt, 4*cfg.MaxLength)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return [][]string{tok.Encode(out, cfg.MaxLength)}, nil
}
