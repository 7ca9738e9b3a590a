package cli

import (
	"reflect"
	"testing"
)

func TestNewFlags(t *testing.T) {
	flags := NewFlags()

	// Test default values
	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"LogLevel", flags.LogLevel, "warn"},
		{"LogFormat", flags.LogFormat, "console"},
		{"From", flags.From, "English"},
		{"To", flags.To, "Spanish"},
		{"Backend", flags.Backend, "huggingface"},
		{"TTSProvider", flags.TTSProvider, "google"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.expected) {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	// Test boolean defaults (should be false)
	boolTests := []struct {
		name  string
		value bool
	}{
		{"Listen", flags.Listen},
		{"NoSpeak", flags.NoSpeak},
		{"Check", flags.Check},
	}

	for _, tt := range boolTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != false {
				t.Errorf("%s = %v, want false", tt.name, tt.value)
			}
		})
	}

	// Test string defaults (should be empty)
	stringTests := []struct {
		name  string
		value string
	}{
		{"CfgFile", flags.CfgFile},
		{"Text", flags.Text},
		{"File", flags.File},
		{"Addr", flags.Addr},
	}

	for _, tt := range stringTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Errorf("%s = %v, want empty string", tt.name, tt.value)
			}
		})
	}
}

func TestHasInput(t *testing.T) {
	tests := []struct {
		name  string
		flags Flags
		want  bool
	}{
		{"none", Flags{}, false},
		{"text", Flags{Text: "hello"}, true},
		{"file", Flags{File: "notes.txt"}, true},
		{"listen", Flags{Listen: true}, true},
		{"no-speak alone", Flags{NoSpeak: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.flags.HasInput(); got != tt.want {
				t.Errorf("HasInput() = %v, want %v", got, tt.want)
			}
		})
	}
}
