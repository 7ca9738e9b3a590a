package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"codeberg.org/snonux/babelcast/internal/breaker"
)

const (
	DefaultDeepgramURL   = "https://api.deepgram.com/v1/listen"
	DefaultDeepgramModel = "nova-2"
)

// DeepgramTranscriber transcribes with the Deepgram pre-recorded audio API.
// The locale is passed through unchanged, so regional models (en-IN, hi)
// are selected by the service.
type DeepgramTranscriber struct {
	apiKey   string
	endpoint string
	model    string
	client   *http.Client
	cb       *gobreaker.CircuitBreaker
}

// NewDeepgramTranscriber creates a transcriber. endpoint is optional.
func NewDeepgramTranscriber(apiKey, endpoint string, log *zap.Logger) (*DeepgramTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Deepgram API key is required")
	}
	if endpoint == "" {
		endpoint = DefaultDeepgramURL
	}

	return &DeepgramTranscriber{
		apiKey:   apiKey,
		endpoint: endpoint,
		model:    DefaultDeepgramModel,
		client:   &http.Client{Timeout: 60 * time.Second},
		cb:       breaker.New("deepgram", log),
	}, nil
}

type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe implements Transcriber.
func (t *DeepgramTranscriber) Transcribe(ctx context.Context, wav []byte, locale string) (string, error) {
	q := url.Values{}
	q.Set("model", t.model)
	q.Set("language", locale)
	q.Set("smart_format", "true")

	resp, err := breaker.Do(t.cb, func() (*deepgramResponse, error) {
		return t.post(ctx, t.endpoint+"?"+q.Encode(), wav)
	})
	if err != nil {
		return "", err
	}

	if len(resp.Results.Channels) == 0 || len(resp.Results.Channels[0].Alternatives) == 0 {
		return "", ErrUnintelligible
	}
	return resp.Results.Channels[0].Alternatives[0].Transcript, nil
}

func (t *DeepgramTranscriber) post(ctx context.Context, endpoint string, wav []byte) (*deepgramResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(wav))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+t.apiKey)
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Deepgram request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("Deepgram returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out deepgramResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode Deepgram response: %w", err)
	}
	return &out, nil
}
