package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"codeberg.org/snonux/babelcast/internal/breaker"
	"codeberg.org/snonux/babelcast/internal/logging"
)

const (
	DefaultHubURL       = "https://huggingface.co"
	DefaultInferenceURL = "https://router.huggingface.co/hf-inference"

	vocabFile = "vocab.json"
	// upper bound on vocab.json, the largest opus-mt vocabularies are ~2 MiB
	maxVocabBytes = 32 << 20
)

// HubLoader loads opus-mt models from the Hugging Face hub. The vocabulary
// is fetched once per model; generation runs on the hosted inference API.
type HubLoader struct {
	hubURL       string
	inferenceURL string
	token        string
	client       *http.Client
	cb           *gobreaker.CircuitBreaker
	log          *zap.Logger
}

// NewHubLoader creates a loader. Empty URLs select the public endpoints.
func NewHubLoader(hubURL, inferenceURL, token string, log *zap.Logger) *HubLoader {
	if hubURL == "" {
		hubURL = DefaultHubURL
	}
	if inferenceURL == "" {
		inferenceURL = DefaultInferenceURL
	}
	log = logging.OrNop(log)

	return &HubLoader{
		hubURL:       strings.TrimRight(hubURL, "/"),
		inferenceURL: strings.TrimRight(inferenceURL, "/"),
		token:        token,
		client:       &http.Client{Timeout: 2 * time.Minute},
		cb:           breaker.New("huggingface", log),
		log:          log,
	}
}

// Load implements Loader.
func (l *HubLoader) Load(ctx context.Context, modelID string) (*LoadedModel, error) {
	if err := l.checkModel(ctx, modelID); err != nil {
		return nil, err
	}

	vocab, err := l.fetchVocab(ctx, modelID)
	if err != nil {
		return nil, err
	}
	tok := NewPieceTokenizer(vocab)
	l.log.Debug("vocabulary loaded", zap.String("model", modelID), zap.Int("pieces", tok.VocabSize()))

	return &LoadedModel{
		ID:        modelID,
		Tokenizer: tok,
		Model: &HubModel{
			id:        modelID,
			endpoint:  l.inferenceURL + "/models/" + modelID,
			tokenizer: tok,
			loader:    l,
		},
	}, nil
}

func (l *HubLoader) checkModel(ctx context.Context, modelID string) error {
	resp, err := l.get(ctx, l.hubURL+"/api/models/"+modelID)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrUnknownModel, modelID)
	case http.StatusUnauthorized:
		// anonymous requests get 401 for repositories that do not exist
		if l.token == "" {
			return fmt.Errorf("%w: %s", ErrUnknownModel, modelID)
		}
		return fmt.Errorf("%w: %s", ErrUnauthorized, modelID)
	default:
		return fmt.Errorf("model lookup failed with status %d", resp.StatusCode)
	}
}

func (l *HubLoader) fetchVocab(ctx context.Context, modelID string) (map[string]int, error) {
	resp, err := l.get(ctx, l.hubURL+"/"+modelID+"/resolve/main/"+vocabFile)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download %s for %s: status %d", vocabFile, modelID, resp.StatusCode)
	}

	var vocab map[string]int
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxVocabBytes)).Decode(&vocab); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", vocabFile, err)
	}
	if len(vocab) == 0 {
		return nil, fmt.Errorf("empty vocabulary for %s", modelID)
	}
	return vocab, nil
}

func (l *HubLoader) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	l.authorize(req)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hub request failed: %w", err)
	}
	return resp, nil
}

func (l *HubLoader) authorize(req *http.Request) {
	if l.token != "" {
		req.Header.Set("Authorization", "Bearer "+l.token)
	}
}

// HubModel generates translations on the hosted inference API.
type HubModel struct {
	id        string
	endpoint  string
	tokenizer Tokenizer
	loader    *HubLoader
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	NumBeams      int  `json:"num_beams"`
	EarlyStopping bool `json:"early_stopping"`
	MaxLength     int  `json:"max_length"`
}

type inferenceResult struct {
	TranslationText string `json:"translation_text"`
}

// Generate implements Model.
func (m *HubModel) Generate(ctx context.Context, input []string, cfg GenerationConfig) ([][]string, error) {
	body, err := json.Marshal(inferenceRequest{
		Inputs: m.tokenizer.Decode(input, true),
		Parameters: inferenceParameters{
			NumBeams:      cfg.NumBeams,
			EarlyStopping: cfg.EarlyStopping,
			MaxLength:     cfg.MaxLength,
		},
	})
	if err != nil {
		return nil, err
	}

	results, err := breaker.Do(m.loader.cb, func() ([]inferenceResult, error) {
		return m.post(ctx, body)
	})
	if err != nil {
		return nil, err
	}

	sequences := make([][]string, 0, len(results))
	for _, r := range results {
		sequences = append(sequences, m.tokenizer.Encode(r.TranslationText, cfg.MaxLength))
	}
	return sequences, nil
}

func (m *HubModel) post(ctx context.Context, body []byte) ([]inferenceResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	m.loader.authorize(req)

	resp, err := m.loader.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("inference for %s failed with status %d: %s", m.id, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var results []inferenceResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode inference response: %w", err)
	}
	return results, nil
}
