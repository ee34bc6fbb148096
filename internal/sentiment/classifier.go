// Package sentiment classifies user text and folds the classifier's
// label and confidence into a single signed score.
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Classification is a label with the model's confidence in it.
type Classification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"score"`
}

// Classifier asks an inference endpoint for the sentiment of a text.
type Classifier interface {
	Classify(ctx context.Context, text string) (*Classification, error)
}

// HTTPClassifier calls a hosted inference endpoint that returns ranked
// label candidates. The top candidate wins.
type HTTPClassifier struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPClassifier builds a classifier against the given inference endpoint.
func NewHTTPClassifier(endpoint, apiKey string, timeout time.Duration) *HTTPClassifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClassifier{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

// Classify sends the text to the inference endpoint and returns the
// highest-ranked candidate.
func (h *HTTPClassifier) Classify(ctx context.Context, text string) (*Classification, error) {
	body, err := json.Marshal(inferenceRequest{Inputs: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sentiment request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sentiment endpoint returned status %d", resp.StatusCode)
	}

	// The endpoint nests the candidates one level deep: [[{label, score}, ...]].
	var results [][]Classification
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("sentiment response decode failed: %w", err)
	}
	if len(results) == 0 || len(results[0]) == 0 {
		return nil, fmt.Errorf("sentiment endpoint returned no candidates")
	}

	top := results[0][0]
	for _, cand := range results[0][1:] {
		if cand.Confidence > top.Confidence {
			top = cand
		}
	}
	top.Label = strings.ToUpper(top.Label)
	return &top, nil
}
