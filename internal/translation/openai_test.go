package translation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAILoader_Translate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))

		var req openai.ChatCompletionRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) || !assert.Len(t, req.Messages, 1) {
			return
		}
		assert.Contains(t, req.Messages[0].Content, "English text to Spanish")
		assert.Contains(t, req.Messages[0].Content, "Good morning")

		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: " Buenos días \n"}},
			},
		})
	}))
	defer srv.Close()

	loader := NewOpenAILoader("test-key", "", srv.URL+"/v1")
	m, err := loader.Load(context.Background(), testModel)
	require.NoError(t, err)

	got, err := NewTranslator(nil).Translate(context.Background(), m.Tokenizer, m.Model, "Good morning")
	require.NoError(t, err)
	assert.Equal(t, "Buenos días", got)
}

func TestOpenAILoader_Errors(t *testing.T) {
	_, err := NewOpenAILoader("", "", "").Load(context.Background(), testModel)
	assert.EqualError(t, err, "OpenAI API key not found")

	_, err = NewOpenAILoader("key", "", "").Load(context.Background(), "facebook/nllb-200")
	assert.ErrorIs(t, err, ErrUnknownModel)

	_, err = NewGeminiLoader("key", "").Load(context.Background(), "Helsinki-NLP/opus-mt-en")
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestOpenAILoader_Integration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}

	m, err := NewOpenAILoader(apiKey, "", "").Load(context.Background(), "Helsinki-NLP/opus-mt-en-fr")
	require.NoError(t, err)

	got, err := NewTranslator(nil).Translate(context.Background(), m.Tokenizer, m.Model, "apple")
	require.NoError(t, err)
	assert.NotEmpty(t, got)
	t.Logf("Translation of 'apple': %s", got)
}
