package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"codeberg.org/snonux/babelcast/internal/breaker"
)

const (
	// DefaultGoogleURL is the Google Translate speech endpoint.
	DefaultGoogleURL = "https://translate.google.com/translate_tts"

	// maxChunkRunes is the longest text the endpoint accepts per request.
	maxChunkRunes = 100
)

// GoogleProvider implements Provider with the Google Translate speech
// endpoint. Long text is spoken in chunks whose mp3 frames are concatenated.
type GoogleProvider struct {
	endpoint string
	client   *http.Client
	cb       *gobreaker.CircuitBreaker
}

// NewGoogleProvider creates a provider. An empty endpoint selects the public one.
func NewGoogleProvider(endpoint string, log *zap.Logger) *GoogleProvider {
	if endpoint == "" {
		endpoint = DefaultGoogleURL
	}
	return &GoogleProvider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		cb:       breaker.New("google-tts", log),
	}
}

// GenerateAudio implements Provider.
func (p *GoogleProvider) GenerateAudio(ctx context.Context, text, lang, outputFile string) error {
	if err := ValidateText(text); err != nil {
		return err
	}

	chunks := splitText(text, maxChunkRunes)

	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	for i, chunk := range chunks {
		data, err := breaker.Do(p.cb, func() ([]byte, error) {
			return p.fetch(ctx, chunk, lang, i, len(chunks))
		})
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			return fmt.Errorf("failed to write audio file: %w", err)
		}
	}

	return nil
}

func (p *GoogleProvider) fetch(ctx context.Context, chunk, lang string, idx, total int) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", chunk)
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Google TTS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Google TTS returned status %d for language %q", resp.StatusCode, lang)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Google TTS response: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no audio data received from Google TTS")
	}
	return data, nil
}

// Name returns the provider name
func (p *GoogleProvider) Name() string {
	return "google"
}

// IsAvailable always succeeds; the endpoint needs no credentials.
func (p *GoogleProvider) IsAvailable() error {
	return nil
}

// splitText breaks text into chunks of at most limit runes on word
// boundaries. Words longer than limit are cut.
func splitText(text string, limit int) []string {
	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)

	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, word := range strings.Fields(text) {
		runes := []rune(word)
		for len(runes) > limit {
			flush()
			chunks = append(chunks, string(runes[:limit]))
			runes = runes[limit:]
		}

		n := len(runes)
		if curLen > 0 && curLen+1+n > limit {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(string(runes))
		curLen += n
	}
	flush()

	return chunks
}
