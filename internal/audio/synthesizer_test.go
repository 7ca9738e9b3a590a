package audio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/snonux/babelcast/internal"
	"codeberg.org/snonux/babelcast/internal/status"
)

// mockPlayer records the files it was asked to play
type mockPlayer struct {
	played  []string
	existed bool
	err     error
	during  func()
}

func (m *mockPlayer) Play(ctx context.Context, audioFile string) error {
	m.played = append(m.played, audioFile)
	if m.during != nil {
		m.during()
	}
	_, statErr := os.Stat(audioFile)
	m.existed = statErr == nil
	return m.err
}

type recordingReporter struct {
	events []string
}

func (r *recordingReporter) Begin(s status.Signal) { r.events = append(r.events, "+"+s.String()) }
func (r *recordingReporter) End(s status.Signal)   { r.events = append(r.events, "-"+s.String()) }

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("artifacts left behind: %v", entries)
	}
}

func TestSpeak_PlaysAndRemovesArtifact(t *testing.T) {
	dir := t.TempDir()
	provider := &mockProvider{name: "mock", data: []byte("mp3")}
	player := &mockPlayer{}
	rep := &recordingReporter{}

	s := NewSynthesizer(provider, player, dir, rep, nil)
	if err := s.Speak(context.Background(), "Hola mundo", "es"); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}

	if len(player.played) != 1 || !player.existed {
		t.Fatalf("player did not get an existing file: %v", player.played)
	}
	if filepath.Dir(player.played[0]) != dir || !internal.IsAudioArtifact(player.played[0]) {
		t.Errorf("unexpected artifact path %s", player.played[0])
	}
	if provider.lastLang != "es" {
		t.Errorf("lang = %q, want es", provider.lastLang)
	}
	if got := rep.events; len(got) != 2 || got[0] != "+speaking" || got[1] != "-speaking" {
		t.Errorf("signals = %v", got)
	}
	assertDirEmpty(t, dir)
}

func TestSpeak_ArtifactSurvivesConcurrentCleanup(t *testing.T) {
	dir := t.TempDir()
	provider := &mockProvider{name: "mock", data: []byte("mp3")}
	// another process starting up sweeps the shared directory mid-playback
	player := &mockPlayer{during: func() {
		if _, err := internal.RemoveStaleArtifacts(dir, internal.StaleArtifactAge); err != nil {
			t.Errorf("RemoveStaleArtifacts() error = %v", err)
		}
	}}

	s := NewSynthesizer(provider, player, dir, nil, nil)
	if err := s.Speak(context.Background(), "Hola mundo", "es"); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if !player.existed {
		t.Error("artifact was removed while it was still playing")
	}
	assertDirEmpty(t, dir)
}

func TestSpeak_CleansUpOnFailure(t *testing.T) {
	tests := []struct {
		name     string
		provider *mockProvider
		player   *mockPlayer
	}{
		{
			name:     "generation fails after partial write",
			provider: &mockProvider{name: "mock", data: []byte("partial"), generateErr: errors.New("quota exceeded")},
			player:   &mockPlayer{},
		},
		{
			name:     "generation fails before writing",
			provider: &mockProvider{name: "mock", generateErr: errors.New("network down")},
			player:   &mockPlayer{},
		},
		{
			name:     "playback fails",
			provider: &mockProvider{name: "mock", data: []byte("mp3")},
			player:   &mockPlayer{err: errors.New("device busy")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			rep := &recordingReporter{}
			s := NewSynthesizer(tt.provider, tt.player, dir, rep, nil)

			if err := s.Speak(context.Background(), "hello", "en"); err == nil {
				t.Fatal("Speak() error = nil, want error")
			}
			assertDirEmpty(t, dir)
			if n := len(rep.events); n != 2 || rep.events[n-1] != "-speaking" {
				t.Errorf("speaking signal not cleared: %v", rep.events)
			}
		})
	}
}

func TestSpeak_CleansUpOnPanic(t *testing.T) {
	dir := t.TempDir()
	provider := &mockProvider{name: "mock", data: []byte("mp3"), panicMsg: "boom"}
	s := NewSynthesizer(provider, &mockPlayer{}, dir, nil, nil)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		_ = s.Speak(context.Background(), "hello", "en")
	}()

	assertDirEmpty(t, dir)
}

func TestSpeak_EmptyText(t *testing.T) {
	provider := &mockProvider{name: "mock"}
	s := NewSynthesizer(provider, &mockPlayer{}, t.TempDir(), nil, nil)

	if err := s.Speak(context.Background(), "  ", "en"); !errors.Is(err, ErrEmptyText) {
		t.Errorf("Speak() = %v, want ErrEmptyText", err)
	}
	if provider.generateCalls != 0 {
		t.Error("provider called for empty text")
	}
}

func TestSynthesize_WritesAudio(t *testing.T) {
	dir := t.TempDir()
	s := NewSynthesizer(&mockProvider{name: "mock", data: []byte("ID3mp3")}, nil, dir, nil, nil)

	var buf bytes.Buffer
	n, err := s.Synthesize(context.Background(), "Guten Tag", "de", &buf)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if n != 6 || buf.String() != "ID3mp3" {
		t.Errorf("Synthesize() wrote %d bytes %q", n, buf.String())
	}
	assertDirEmpty(t, dir)
}
