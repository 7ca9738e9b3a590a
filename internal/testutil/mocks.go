package testutil

import (
	"context"
	"fmt"
	"sync"

	"codeberg.org/snonux/babelcast/internal/speech"
	"codeberg.org/snonux/babelcast/internal/status"
	"codeberg.org/snonux/babelcast/internal/translation"
)

// MockLoader mocks a translation model loader
type MockLoader struct {
	mu           sync.Mutex
	Translations map[string]string // input text -> translated text, shared by all models
	Errors       map[string]error  // model id -> load error
	Calls        []string
	Model        *MockModel
}

// NewMockLoader creates a loader whose models translate with translations
func NewMockLoader(translations map[string]string) *MockLoader {
	return &MockLoader{
		Translations: translations,
		Errors:       map[string]error{},
		Model:        &MockModel{Translations: translations},
	}
}

// Load mocks loading a model
func (m *MockLoader) Load(ctx context.Context, modelID string) (*translation.LoadedModel, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, modelID)
	err := m.Errors[modelID]
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}

	return &translation.LoadedModel{
		ID:        modelID,
		Tokenizer: translation.WordTokenizer{},
		Model:     m.Model,
	}, nil
}

// LoadCount returns how often modelID was loaded
func (m *MockLoader) LoadCount(modelID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, id := range m.Calls {
		if id == modelID {
			n++
		}
	}
	return n
}

// MockModel mocks a translation model working on word tokens
type MockModel struct {
	mu           sync.Mutex
	Translations map[string]string
	Err          error
	Calls        []string
}

// Generate mocks beam-search generation
func (m *MockModel) Generate(ctx context.Context, input []string, cfg translation.GenerationConfig) ([][]string, error) {
	tok := translation.WordTokenizer{}
	text := tok.Decode(input, true)

	m.mu.Lock()
	m.Calls = append(m.Calls, text)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	out, ok := m.Translations[text]
	if !ok {
		// Default mock translation
		out = fmt.Sprintf("mock translation of %s", text)
	}
	return [][]string{tok.Encode(out, cfg.MaxLength)}, nil
}

// CallCount returns the number of Generate calls
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockRecognizer mocks speech recognition
type MockRecognizer struct {
	Result  speech.Result
	Err     error
	Locales []string
}

// RecognizeWith mocks listening for one phrase
func (m *MockRecognizer) RecognizeWith(ctx context.Context, locale string, rep status.Reporter) (speech.Result, error) {
	m.Locales = append(m.Locales, locale)

	rep = status.Or(rep)
	rep.Begin(status.Listening)
	rep.End(status.Listening)

	return m.Result, m.Err
}

// SpokenText is one MockSpeaker call
type SpokenText struct {
	Text string
	Lang string
}

// MockSpeaker mocks speech output
type MockSpeaker struct {
	mu    sync.Mutex
	Err   error
	Calls []SpokenText
}

// SpeakWith mocks synthesizing and playing text
func (m *MockSpeaker) SpeakWith(ctx context.Context, text, lang string, rep status.Reporter) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, SpokenText{Text: text, Lang: lang})
	m.mu.Unlock()

	rep = status.Or(rep)
	rep.Begin(status.Speaking)
	defer rep.End(status.Speaking)

	return m.Err
}

// MockReporter records progress signals as "+name" and "-name"
type MockReporter struct {
	mu     sync.Mutex
	Events []string
}

// Begin records a signal start
func (m *MockReporter) Begin(s status.Signal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, "+"+s.String())
}

// End records a signal end
func (m *MockReporter) End(s status.Signal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, "-"+s.String())
}
