// Package languages holds the static language-pair table that maps a
// "<Source> to <Target>" selection to a pretrained opus-mt model and the
// output language code, plus the locale table used for speech recognition.
package languages

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ErrUnsupportedPair is returned when no model exists for a source/target selection.
var ErrUnsupportedPair = errors.New("the selected language pair is not available")

// DefaultLocale is used for speech recognition when the source language is not in the locale table.
const DefaultLocale = "en-IN"

// Pair is one row of the language-pair table.
type Pair struct {
	Source     string `json:"source"`
	Target     string `json:"target"`
	ModelID    string `json:"model"`
	OutputLang string `json:"lang"`
}

// Key returns the "<Source> to <Target>" lookup key.
func (p Pair) Key() string {
	return Key(p.Source, p.Target)
}

// Locale returns the speech-recognition locale for the pair's source language.
func (p Pair) Locale() string {
	return Locale(p.Source)
}

var table = []Pair{
	{"English", "Spanish", "Helsinki-NLP/opus-mt-en-es", "es"},
	{"English", "French", "Helsinki-NLP/opus-mt-en-fr", "fr"},
	{"English", "German", "Helsinki-NLP/opus-mt-en-de", "de"},
	{"English", "Italian", "Helsinki-NLP/opus-mt-en-it", "it"},
	{"English", "Portuguese", "Helsinki-NLP/opus-mt-en-pt", "pt"},
	{"Spanish", "English", "Helsinki-NLP/opus-mt-es-en", "en"},
	{"French", "English", "Helsinki-NLP/opus-mt-fr-en", "en"},
	{"German", "English", "Helsinki-NLP/opus-mt-de-en", "en"},
	{"English", "Hindi", "Helsinki-NLP/opus-mt-en-hi", "hi"},
	{"Hindi", "English", "Helsinki-NLP/opus-mt-hi-en", "en"},
}

var byKey = func() map[string]Pair {
	m := make(map[string]Pair, len(table))
	for _, p := range table {
		m[p.Key()] = p
	}
	return m
}()

// English (India) is the historical default; switch to en-US for US English.
var locales = map[string]string{
	"English":    "en-IN",
	"Hindi":      "hi-IN",
	"Spanish":    "es-ES",
	"French":     "fr-FR",
	"German":     "de-DE",
	"Italian":    "it-IT",
	"Portuguese": "pt-PT",
}

var (
	sources = []string{"English", "Spanish", "French", "German", "Italian", "Portuguese", "Hindi"}
	targets = []string{"Spanish", "French", "German", "Italian", "Portuguese", "English", "Hindi"}
)

// Key builds the lookup key for a source/target selection.
func Key(source, target string) string {
	return source + " to " + target
}

// Resolve looks up the pair for a source/target selection.
func Resolve(source, target string) (Pair, error) {
	p, ok := byKey[Key(source, target)]
	if !ok {
		return Pair{}, fmt.Errorf("%w: %s", ErrUnsupportedPair, Key(source, target))
	}
	return p, nil
}

// Pairs returns a copy of the table in display order.
func Pairs() []Pair {
	out := make([]Pair, len(table))
	copy(out, table)
	return out
}

// Sources returns the selectable source languages.
func Sources() []string {
	return append([]string(nil), sources...)
}

// Targets returns the selectable target languages.
func Targets() []string {
	return append([]string(nil), targets...)
}

// Locale returns the recognition locale for a source language, falling back to DefaultLocale.
func Locale(source string) string {
	if loc, ok := locales[source]; ok {
		return loc
	}
	return DefaultLocale
}

// BaseLanguage reduces a locale tag such as "pt-PT" to its ISO 639-1 base ("pt").
// Unparseable input is returned lower-cased and unchanged.
func BaseLanguage(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return strings.ToLower(locale)
	}
	base, _ := tag.Base()
	return base.String()
}

// ModelLanguages extracts the source and target codes from an opus-mt
// identifier, e.g. "Helsinki-NLP/opus-mt-en-es" -> ("en", "es").
func ModelLanguages(modelID string) (string, string, error) {
	name := modelID
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	rest, ok := strings.CutPrefix(name, "opus-mt-")
	if !ok {
		return "", "", fmt.Errorf("not an opus-mt model identifier: %q", modelID)
	}

	parts := strings.Split(rest, "-")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("cannot parse language directions from %q", modelID)
	}

	for _, code := range parts {
		if _, err := language.ParseBase(code); err != nil {
			return "", "", fmt.Errorf("unknown language code %q in %q: %w", code, modelID, err)
		}
	}

	return parts[0], parts[1], nil
}

// DisplayName returns the English name of a language code ("es" -> "Spanish").
func DisplayName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}
