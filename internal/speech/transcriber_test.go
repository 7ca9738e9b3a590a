package speech

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeepgramTranscriber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token dg-test", r.Header.Get("Authorization"))
		assert.Equal(t, "audio/wav", r.Header.Get("Content-Type"))
		assert.Equal(t, "hi-IN", r.URL.Query().Get("language"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "RIFFdata", string(body))

		w.Write([]byte(`{"results":{"channels":[{"alternatives":[{"transcript":"namaste","confidence":0.97}]}]}}`))
	}))
	defer srv.Close()

	tr, err := NewDeepgramTranscriber("dg-test", srv.URL, nil)
	require.NoError(t, err)

	text, err := tr.Transcribe(context.Background(), []byte("RIFFdata"), "hi-IN")
	require.NoError(t, err)
	assert.Equal(t, "namaste", text)
}

func TestDeepgramTranscriber_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("language") == "xx-XX" {
			http.Error(w, `{"err_msg":"bad language"}`, http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"results":{"channels":[]}}`))
	}))
	defer srv.Close()

	tr, err := NewDeepgramTranscriber("dg-test", srv.URL, nil)
	require.NoError(t, err)

	_, err = tr.Transcribe(context.Background(), []byte("RIFF"), "en-IN")
	assert.ErrorIs(t, err, ErrUnintelligible)

	_, err = tr.Transcribe(context.Background(), []byte("RIFF"), "xx-XX")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")

	_, err = NewDeepgramTranscriber("", "", nil)
	assert.Error(t, err)
}

func TestOpenAITranscriber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/audio/transcriptions"))
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "pt", r.FormValue("language"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": "bom dia"})
	}))
	defer srv.Close()

	tr, err := NewOpenAITranscriber("sk-test", srv.URL+"/v1")
	require.NoError(t, err)

	text, err := tr.Transcribe(context.Background(), WrapPCMAsWAV(pcm(1, 0), SampleRate, Channels, BitsPerSample), "pt-PT")
	require.NoError(t, err)
	assert.Equal(t, "bom dia", text)
}

func TestNewTranscriber(t *testing.T) {
	_, err := NewTranscriber(&Config{Provider: ProviderOpenAI, OpenAIKey: "k"}, nil)
	assert.NoError(t, err)
	_, err = NewTranscriber(&Config{Provider: ProviderDeepgram, DeepgramKey: "k"}, nil)
	assert.NoError(t, err)
	_, err = NewTranscriber(&Config{Provider: "google"}, nil)
	assert.Error(t, err)
}
