package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultHFEndpoint = "https://api-inference.huggingface.co"
	DefaultHFModel    = "SamLowe/roberta-base-go_emotions"
)

// HFService classifies text through the Hugging Face Inference API.
type HFService struct {
	httpClient *http.Client
	endpoint   string
	model      string
	token      string
}

// HFOptions configures an HFService. Zero values fall back to the defaults.
type HFOptions struct {
	Endpoint string
	Model    string
	Token    string
	Timeout  time.Duration
}

func NewHFService(opts HFOptions) *HFService {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultHFEndpoint
	}
	if opts.Model == "" {
		opts.Model = DefaultHFModel
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &HFService{
		httpClient: &http.Client{Timeout: opts.Timeout},
		endpoint:   strings.TrimRight(opts.Endpoint, "/"),
		model:      opts.Model,
		token:      opts.Token,
	}
}

func (s *HFService) Provider() string { return "huggingface" }

func (s *HFService) Model() string { return s.model }

func (s *HFService) Classify(ctx context.Context, text string) (Prediction, error) {
	payload, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: failed to marshal request: %v", ErrClassifier, err)
	}

	url := fmt.Sprintf("%s/models/%s", s.endpoint, s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: failed to create request: %v", ErrClassifier, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "chatmood")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: huggingface request failed: %v", ErrClassifier, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024)) // Limit to 1MB
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: failed to read response: %v", ErrClassifier, err)
	}
	if resp.StatusCode >= 400 {
		return Prediction{}, fmt.Errorf("%w: huggingface returned status %d: %s", ErrClassifier, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	preds, err := decodeHFPredictions(body)
	if err != nil {
		return Prediction{}, err
	}
	top, err := topPrediction(preds)
	if err != nil {
		return Prediction{}, err
	}
	top.Label = normalizeLabel(top.Label)
	top.Score = clampScore(top.Score)
	return top, nil
}

// decodeHFPredictions accepts both [[{label,score}...]] (one list per
// input) and the flat [{label,score}...] shape.
func decodeHFPredictions(body []byte) ([]Prediction, error) {
	var nested [][]Prediction
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) == 0 {
			return nil, fmt.Errorf("%w: empty response", ErrClassifier)
		}
		return nested[0], nil
	}

	var flat []Prediction
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("%w: unexpected response: %.200s", ErrClassifier, body)
	}
	return flat, nil
}
