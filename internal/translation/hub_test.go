package translation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModel = "Helsinki-NLP/opus-mt-en-es"

// newHubServer fakes both the hub and the inference API on one server.
func newHubServer(t *testing.T, inferences *atomic.Int32) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/models/"+testModel, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer hf-test", r.Header.Get("Authorization"))
		w.Write([]byte(`{"id":"` + testModel + `"}`))
	})
	mux.HandleFunc("/api/models/Helsinki-NLP/opus-mt-xx-yy", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Repository not found", http.StatusUnauthorized)
	})
	mux.HandleFunc("/"+testModel+"/resolve/main/vocab.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(testVocab())
	})
	mux.HandleFunc("/models/"+testModel, func(w http.ResponseWriter, r *http.Request) {
		inferences.Add(1)

		var req inferenceRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		assert.Equal(t, "Hello world", req.Inputs)
		assert.Equal(t, inferenceParameters{NumBeams: 5, EarlyStopping: true, MaxLength: 256}, req.Parameters)

		json.NewEncoder(w).Encode([]inferenceResult{{TranslationText: "Hola mundo"}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHubLoader_LoadAndTranslate(t *testing.T) {
	var inferences atomic.Int32
	srv := newHubServer(t, &inferences)
	loader := NewHubLoader(srv.URL, srv.URL, "hf-test", nil)

	m, err := loader.Load(context.Background(), testModel)
	require.NoError(t, err)
	assert.Equal(t, testModel, m.ID)
	assert.IsType(t, &PieceTokenizer{}, m.Tokenizer)

	got, err := NewTranslator(nil).Translate(context.Background(), m.Tokenizer, m.Model, "Hello world")
	require.NoError(t, err)
	assert.Equal(t, "Hola mundo", got)
	assert.EqualValues(t, 1, inferences.Load())
}

func TestHubLoader_UnknownModel(t *testing.T) {
	var inferences atomic.Int32
	srv := newHubServer(t, &inferences)
	loader := NewHubLoader(srv.URL, srv.URL, "", nil)

	_, err := loader.Load(context.Background(), "Helsinki-NLP/opus-mt-xx-yy")
	assert.ErrorIs(t, err, ErrUnknownModel)

	// unregistered path: the mux answers 404
	_, err = loader.Load(context.Background(), "Helsinki-NLP/opus-mt-zz-qq")
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestHubLoader_UnauthorizedWithToken(t *testing.T) {
	var lookups atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lookups.Add(1)
		http.Error(w, "Invalid credentials in Authorization header", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	_, err := NewHubLoader(srv.URL, srv.URL, "hf-expired", nil).Load(context.Background(), testModel)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrUnknownModel)

	_, err = NewHubLoader(srv.URL, srv.URL, "", nil).Load(context.Background(), testModel)
	assert.ErrorIs(t, err, ErrUnknownModel)
	assert.EqualValues(t, 2, lookups.Load())
}

func TestHubModel_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model is loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	loader := NewHubLoader(srv.URL, srv.URL, "", nil)
	model := &HubModel{id: testModel, endpoint: srv.URL + "/models/" + testModel, tokenizer: WordTokenizer{}, loader: loader}

	_, err := model.Generate(context.Background(), []string{"▁hi", EOSToken}, DefaultGenerationConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestNewLoader(t *testing.T) {
	tests := []struct {
		backend string
		want    interface{}
		wantErr bool
	}{
		{"", &HubLoader{}, false},
		{BackendHuggingFace, &HubLoader{}, false},
		{BackendOpenAI, &OpenAILoader{}, false},
		{BackendGemini, &GeminiLoader{}, false},
		{"marian-local", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Backend = tt.backend

			loader, err := NewLoader(cfg, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, loader)
		})
	}
}
