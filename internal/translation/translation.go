package translation

import (
	"context"
	"errors"
)

// Decoding parameters used for every translation.
const (
	NumBeams       = 5
	MaxLength      = 256
	MaxInputTokens = 256
)

// Control tokens of the Marian vocabulary.
const (
	PadToken = "<pad>"
	EOSToken = "</s>"
	UnkToken = "<unk>"

	// wordPrefix marks a piece that starts a new word.
	wordPrefix = "▁"
)

var (
	ErrEmptyModelID = errors.New("model identifier is empty")
	ErrUnknownModel = errors.New("unknown model identifier")
	ErrNoOutput     = errors.New("model produced no output sequence")
	ErrUnauthorized = errors.New("model hub rejected the access token")
)

// GenerationConfig holds the beam-search parameters passed to Model.Generate.
type GenerationConfig struct {
	NumBeams      int
	EarlyStopping bool
	MaxLength     int
}

// DefaultGenerationConfig returns beam 5, early stopping, at most 256 tokens.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		NumBeams:      NumBeams,
		EarlyStopping: true,
		MaxLength:     MaxLength,
	}
}

// Tokenizer converts between text and the token sequences a Model consumes.
type Tokenizer interface {
	// Encode splits text into at most maxTokens tokens, silently dropping the rest.
	Encode(text string, maxTokens int) []string
	// Decode joins tokens back into text, dropping control tokens when skipSpecial is set.
	Decode(tokens []string, skipSpecial bool) string
}

// Model generates candidate output sequences for an encoded input, best first.
type Model interface {
	Generate(ctx context.Context, input []string, cfg GenerationConfig) ([][]string, error)
}

// LoadedModel is one cached (tokenizer, model) pair.
type LoadedModel struct {
	ID        string
	Tokenizer Tokenizer
	Model     Model
}

// Loader fetches the artifacts of a model identifier.
type Loader interface {
	Load(ctx context.Context, modelID string) (*LoadedModel, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, modelID string) (*LoadedModel, error)

func (f LoaderFunc) Load(ctx context.Context, modelID string) (*LoadedModel, error) {
	return f(ctx, modelID)
}

func isSpecial(tok string) bool {
	return tok == PadToken || tok == EOSToken || tok == UnkToken
}
