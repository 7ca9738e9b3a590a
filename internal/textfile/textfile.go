// Package textfile validates and decodes uploaded plain-text documents.
package textfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNotText is returned for files without a .txt extension.
	ErrNotText = errors.New("only .txt files are supported")
	// ErrInvalidUTF8 is returned when the content is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("file is not valid UTF-8 text")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode checks an uploaded file and returns its text. Line endings are
// normalized to "\n" and a leading byte order mark is dropped.
func Decode(name string, data []byte) (string, error) {
	if !strings.EqualFold(filepath.Ext(name), ".txt") {
		return "", fmt.Errorf("%w: %s", ErrNotText, filepath.Base(name))
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s", ErrInvalidUTF8, filepath.Base(name))
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	return strings.Join(splitLines(string(data)), "\n"), nil
}

// Read loads and decodes a text file from disk.
func Read(path string) (string, error) {
	if !strings.EqualFold(filepath.Ext(path), ".txt") {
		return "", fmt.Errorf("%w: %s", ErrNotText, filepath.Base(path))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read text file: %w", err)
	}
	return Decode(path, content)
}

// splitLines splits a string by newlines, dropping carriage returns
func splitLines(s string) []string {
	var lines []string
	var current strings.Builder
	for _, r := range s {
		if r == '\n' {
			lines = append(lines, current.String())
			current.Reset()
		} else if r != '\r' {
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
