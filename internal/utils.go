package internal

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Version is the current babelcast release.
const Version = "0.4.0"

const (
	artifactPrefix = "tts_output_"
	artifactSuffix = ".mp3"
)

// AudioArtifactName returns a unique file name for one synthesized utterance.
// Format: tts_output_<32 hex chars>.mp3
func AudioArtifactName() string {
	id := uuid.New()
	return artifactPrefix + hex.EncodeToString(id[:]) + artifactSuffix
}

// IsAudioArtifact reports whether name looks like a file created by AudioArtifactName
func IsAudioArtifact(name string) bool {
	base := filepath.Base(name)
	if !strings.HasPrefix(base, artifactPrefix) || !strings.HasSuffix(base, artifactSuffix) {
		return false
	}

	token := strings.TrimSuffix(strings.TrimPrefix(base, artifactPrefix), artifactSuffix)
	if len(token) != 32 {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}

// StaleArtifactAge is how old an artifact must be before RemoveStaleArtifacts
// treats it as abandoned. Younger files may belong to another running process.
const StaleArtifactAge = time.Hour

// RemoveStaleArtifacts deletes audio artifacts in dir that were last modified
// more than olderThan ago, such as those left behind by a process killed
// mid-playback. It returns the number of files removed.
func RemoveStaleArtifacts(dir string, olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read artifact directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !IsAudioArtifact(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil || time.Since(info.ModTime()) < olderThan {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
		removed++
	}

	return removed, nil
}
