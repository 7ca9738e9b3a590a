package translation

import (
	"strings"
	"unicode/utf8"
)

// PieceTokenizer splits text into the longest pieces found in a Marian
// vocabulary. Runes not covered by any piece become single-rune tokens so
// that no input is lost on its way to a remote model.
type PieceTokenizer struct {
	vocab    map[string]int
	maxPiece int // longest vocabulary entry in runes
}

// NewPieceTokenizer builds a tokenizer over vocab (piece -> id).
func NewPieceTokenizer(vocab map[string]int) *PieceTokenizer {
	maxPiece := 1
	for piece := range vocab {
		if n := utf8.RuneCountInString(piece); n > maxPiece {
			maxPiece = n
		}
	}
	return &PieceTokenizer{vocab: vocab, maxPiece: maxPiece}
}

// VocabSize returns the number of vocabulary entries.
func (t *PieceTokenizer) VocabSize() int {
	return len(t.vocab)
}

// Encode implements Tokenizer. The result always ends with EOSToken.
func (t *PieceTokenizer) Encode(text string, maxTokens int) []string {
	var tokens []string
	for _, word := range strings.Fields(text) {
		tokens = append(tokens, t.splitWord([]rune(wordPrefix+word))...)
	}
	return terminate(tokens, maxTokens)
}

func (t *PieceTokenizer) splitWord(runes []rune) []string {
	var pieces []string
	for start := 0; start < len(runes); {
		end := min(len(runes), start+t.maxPiece)
		for ; end > start+1; end-- {
			if _, ok := t.vocab[string(runes[start:end])]; ok {
				break
			}
		}
		pieces = append(pieces, string(runes[start:end]))
		start = end
	}
	return pieces
}

// Decode implements Tokenizer.
func (t *PieceTokenizer) Decode(tokens []string, skipSpecial bool) string {
	return decode(tokens, skipSpecial)
}

// WordTokenizer treats every whitespace-separated word as one token. It is
// used with chat-style backends that take plain text and have no vocabulary.
type WordTokenizer struct{}

// Encode implements Tokenizer. The result always ends with EOSToken.
func (WordTokenizer) Encode(text string, maxTokens int) []string {
	words := strings.Fields(text)
	tokens := make([]string, 0, len(words)+1)
	for _, w := range words {
		tokens = append(tokens, wordPrefix+w)
	}
	return terminate(tokens, maxTokens)
}

// Decode implements Tokenizer.
func (WordTokenizer) Decode(tokens []string, skipSpecial bool) string {
	return decode(tokens, skipSpecial)
}

// terminate truncates tokens so that, together with the trailing EOSToken,
// at most maxTokens remain.
func terminate(tokens []string, maxTokens int) []string {
	if maxTokens <= 0 {
		return nil
	}
	if len(tokens) > maxTokens-1 {
		tokens = tokens[:maxTokens-1]
	}
	return append(tokens, EOSToken)
}

// encodeBounded encodes text into at most maxTokens tokens and reports
// whether anything was dropped. Encoding one token past the limit is enough
// to tell, so the full text is only encoded twice when it overflows.
func encodeBounded(tok Tokenizer, text string, maxTokens int) ([]string, bool) {
	tokens := tok.Encode(text, maxTokens+1)
	if len(tokens) <= maxTokens {
		return tokens, false
	}
	return tok.Encode(text, maxTokens), true
}

func decode(tokens []string, skipSpecial bool) string {
	var b strings.Builder
	for _, tok := range tokens {
		if skipSpecial && isSpecial(tok) {
			continue
		}
		b.WriteString(tok)
	}
	return strings.TrimSpace(strings.ReplaceAll(b.String(), wordPrefix, " "))
}
