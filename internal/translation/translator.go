package translation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"codeberg.org/snonux/babelcast/internal/logging"
)

// Translator runs one beam-search translation through a loaded model.
type Translator struct {
	cfg GenerationConfig
	log *zap.Logger
}

// NewTranslator creates a translator with the default generation config.
func NewTranslator(log *zap.Logger) *Translator {
	return &Translator{
		cfg: DefaultGenerationConfig(),
		log: logging.OrNop(log),
	}
}

// Translate translates text. Blank text yields "" without touching the
// tokenizer or the model. Input beyond MaxInputTokens is dropped silently.
func (t *Translator) Translate(ctx context.Context, tok Tokenizer, model Model, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	input, truncated := encodeBounded(tok, text, MaxInputTokens)
	if truncated {
		t.log.Debug("translation input truncated",
			zap.Int("max_tokens", MaxInputTokens),
			zap.Int("words", len(strings.Fields(text))))
	}

	sequences, err := model.Generate(ctx, input, t.cfg)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	if len(sequences) == 0 {
		return "", ErrNoOutput
	}

	return tok.Decode(sequences[0], true), nil
}
