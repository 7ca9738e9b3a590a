package audio

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyText is returned when there is nothing to speak.
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrNoPlayer is returned when no audio player program is installed.
	ErrNoPlayer = errors.New("no audio player found")
)

// ValidateText checks that text contains something to speak
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	return nil
}
