package speech

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCapturer(t *testing.T) {
	c, err := NewCapturer("", nil)
	require.NoError(t, err)
	assert.IsType(t, &CommandCapturer{}, c)

	_, err = NewCapturer("webrtc", nil)
	assert.Error(t, err)
}

func TestCommandCapturer_NoRecorder(t *testing.T) {
	c := NewCommandCapturer(nil)
	c.lookPath = func(string) (string, error) { return "", errors.New("not found") }

	_, err := c.Capture(context.Background(), time.Second)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSpeech)
	assert.Contains(t, err.Error(), "no audio recorder found")
}

func TestCommandCapturer_SilentRecorderTimesOut(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}

	// a recorder that starts but never writes a byte
	dir := t.TempDir()
	script := filepath.Join(dir, "arecord")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nexec sleep 30\n"), 0755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	c := NewCommandCapturer(nil)
	c.lookPath = func(name string) (string, error) {
		if name == "arecord" {
			return script, nil
		}
		return "", errors.New("not found")
	}

	start := time.Now()
	_, err := c.Capture(context.Background(), 200*time.Millisecond)
	assert.ErrorIs(t, err, ErrNoSpeech)
	assert.Less(t, time.Since(start), 5*time.Second)
}
