package audio

import (
	"context"
	"errors"
	"os"
	"testing"
)

// mockProvider implements Provider interface for testing
type mockProvider struct {
	name          string
	generateErr   error
	availableErr  error
	generateCalls int
	data          []byte
	lastLang      string
	lastFile      string
	panicMsg      string
}

func (m *mockProvider) GenerateAudio(ctx context.Context, text, lang, outputFile string) error {
	m.generateCalls++
	m.lastLang = lang
	m.lastFile = outputFile
	if m.data != nil {
		if err := os.WriteFile(outputFile, m.data, 0644); err != nil {
			return err
		}
	}
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	return m.generateErr
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) IsAvailable() error {
	return m.availableErr
}

func TestDefaultProviderConfig(t *testing.T) {
	config := DefaultProviderConfig()

	if config.Provider != ProviderGoogle {
		t.Errorf("Expected provider 'google', got '%s'", config.Provider)
	}

	if config.OpenAIModel != "gpt-4o-mini-tts" {
		t.Errorf("Expected OpenAI model 'gpt-4o-mini-tts', got '%s'", config.OpenAIModel)
	}

	if config.OpenAIVoice != "alloy" {
		t.Errorf("Expected OpenAI voice 'alloy', got '%s'", config.OpenAIVoice)
	}

	if config.OpenAISpeed != 1.0 {
		t.Errorf("Expected OpenAI speed 1.0, got %f", config.OpenAISpeed)
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		config   *Config
		wantName string
		wantErr  bool
		errMsg   string
	}{
		{
			name:     "default is google",
			provider: "",
			config:   DefaultProviderConfig(),
			wantName: "google",
		},
		{
			name:     "openai with key",
			provider: ProviderOpenAI,
			config:   &Config{OpenAIKey: "test-key", OpenAIModel: "tts-1", OpenAIVoice: "nova"},
			wantName: "openai",
		},
		{
			name:     "openai without key",
			provider: ProviderOpenAI,
			config:   &Config{},
			wantErr:  true,
			errMsg:   "OpenAI API key is required",
		},
		{
			name:     "unknown provider",
			provider: "polly",
			config:   &Config{},
			wantErr:  true,
			errMsg:   "unknown audio provider: polly",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.provider, tt.config, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if err.Error() != tt.errMsg {
					t.Errorf("NewProvider() error = %v, want %v", err.Error(), tt.errMsg)
				}
				return
			}
			if provider.Name() != tt.wantName {
				t.Errorf("Name() = %v, want %v", provider.Name(), tt.wantName)
			}
		})
	}
}

func TestNewConfiguredProvider(t *testing.T) {
	config := DefaultProviderConfig()
	config.Fallback = ProviderOpenAI
	config.OpenAIKey = "test-key"

	provider, err := NewConfiguredProvider(config, nil)
	if err != nil {
		t.Fatalf("NewConfiguredProvider() error = %v", err)
	}
	if provider.Name() != "google (fallback: openai)" {
		t.Errorf("Name() = %v", provider.Name())
	}

	// unusable fallback degrades to the primary alone
	config.OpenAIKey = ""
	provider, err = NewConfiguredProvider(config, nil)
	if err != nil {
		t.Fatalf("NewConfiguredProvider() error = %v", err)
	}
	if provider.Name() != "google" {
		t.Errorf("Name() = %v, want google", provider.Name())
	}
}

func TestProviderWithFallback(t *testing.T) {
	tests := []struct {
		name          string
		primaryErr    error
		fallbackErr   error
		wantErr       bool
		primaryCalls  int
		fallbackCalls int
	}{
		{
			name:          "primary succeeds",
			primaryCalls:  1,
			fallbackCalls: 0,
		},
		{
			name:          "primary fails, fallback succeeds",
			primaryErr:    errors.New("primary failed"),
			primaryCalls:  1,
			fallbackCalls: 1,
		},
		{
			name:          "both fail",
			primaryErr:    errors.New("primary failed"),
			fallbackErr:   errors.New("fallback failed"),
			wantErr:       true,
			primaryCalls:  1,
			fallbackCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := &mockProvider{name: "primary", generateErr: tt.primaryErr}
			fallback := &mockProvider{name: "fallback", generateErr: tt.fallbackErr}

			provider := NewProviderWithFallback(primary, fallback, nil)
			err := provider.GenerateAudio(context.Background(), "hola", "es", "out.mp3")

			if (err != nil) != tt.wantErr {
				t.Errorf("GenerateAudio() error = %v, wantErr %v", err, tt.wantErr)
			}
			if primary.generateCalls != tt.primaryCalls {
				t.Errorf("primary calls = %d, want %d", primary.generateCalls, tt.primaryCalls)
			}
			if fallback.generateCalls != tt.fallbackCalls {
				t.Errorf("fallback calls = %d, want %d", fallback.generateCalls, tt.fallbackCalls)
			}
			if fallback.generateCalls > 0 && fallback.lastLang != "es" {
				t.Errorf("fallback lang = %q, want es", fallback.lastLang)
			}
		})
	}
}

func TestProviderWithFallback_IsAvailable(t *testing.T) {
	down := errors.New("down")

	p := NewProviderWithFallback(&mockProvider{availableErr: down}, &mockProvider{}, nil)
	if err := p.IsAvailable(); err != nil {
		t.Errorf("IsAvailable() = %v, want nil", err)
	}

	p = NewProviderWithFallback(&mockProvider{availableErr: down}, &mockProvider{availableErr: down}, nil)
	if err := p.IsAvailable(); err == nil {
		t.Error("IsAvailable() = nil, want error")
	}
}

func TestValidateText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n"} {
		if err := ValidateText(text); !errors.Is(err, ErrEmptyText) {
			t.Errorf("ValidateText(%q) = %v, want ErrEmptyText", text, err)
		}
	}
	if err := ValidateText("bonjour"); err != nil {
		t.Errorf("ValidateText() = %v", err)
	}
}
