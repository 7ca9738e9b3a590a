package audio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"short", "Hola mundo", []string{"Hola mundo"}},
		{"collapses whitespace", "  Hola \n mundo ", []string{"Hola mundo"}},
		{"empty", "   ", nil},
		{"long word is cut", strings.Repeat("a", 150), []string{strings.Repeat("a", 100), strings.Repeat("a", 50)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitText(tt.text, maxChunkRunes)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("splitText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitText_RespectsLimit(t *testing.T) {
	text := strings.Repeat("नमस्ते दुनिया ", 40)
	chunks := splitText(text, maxChunkRunes)

	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if n := utf8.RuneCountInString(c); n > maxChunkRunes {
			t.Errorf("chunk has %d runes, limit %d", n, maxChunkRunes)
		}
	}
	if strings.Join(chunks, " ") != strings.TrimSpace(text) {
		t.Error("chunks do not reassemble to the input")
	}
}

func TestGoogleProvider_GenerateAudio(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		q := r.URL.Query()
		if q.Get("tl") != "fr" || q.Get("client") != "tw-ob" || q.Get("q") == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3-" + q.Get("idx") + ";"))
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "speech.mp3")
	p := NewGoogleProvider(srv.URL, nil)

	text := strings.Repeat("bonjour le monde ", 10) // 170 runes -> 2 chunks
	if err := p.GenerateAudio(context.Background(), text, "fr", out); err != nil {
		t.Fatalf("GenerateAudio() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "mp3-0;mp3-1;" {
		t.Errorf("audio = %q", data)
	}
	if requests.Load() != 2 {
		t.Errorf("requests = %d, want 2", requests.Load())
	}
}

func TestGoogleProvider_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unsupported", http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewGoogleProvider(srv.URL, nil)
	out := filepath.Join(t.TempDir(), "speech.mp3")

	if err := p.GenerateAudio(context.Background(), "hello", "xx", out); err == nil {
		t.Error("expected error for failed request")
	}
	if err := p.GenerateAudio(context.Background(), " ", "en", out); err != ErrEmptyText {
		t.Errorf("GenerateAudio() = %v, want ErrEmptyText", err)
	}
}
