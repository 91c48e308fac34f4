package modality

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/carezhou/heartline/backend/internal/model/emotion"
)

// HTTPFaceClassifier posts a frame to a facial-emotion inference
// endpoint and decodes the per-label scores. The endpoint answers
// 204 No Content when it finds no face.
type HTTPFaceClassifier struct {
	url    string
	client *http.Client
}

func NewHTTPFaceClassifier(url string, timeout time.Duration) *HTTPFaceClassifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPFaceClassifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPFaceClassifier) ClassifyFace(ctx context.Context, image []byte) (emotion.Distribution, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(image))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("face inference request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("face inference returned status %d", resp.StatusCode)
	}

	var payload struct {
		Emotions emotion.Distribution `json:"emotions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode face inference response: %w", err)
	}
	if len(payload.Emotions) == 0 {
		return nil, nil
	}
	return payload.Emotions, nil
}

// HTTPAudioClassifier scores a prosodic feature vector through a remote
// tabular model endpoint.
type HTTPAudioClassifier struct {
	url    string
	client *http.Client
}

func NewHTTPAudioClassifier(url string, timeout time.Duration) *HTTPAudioClassifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPAudioClassifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPAudioClassifier) ClassifyAudio(ctx context.Context, features []float64) (emotion.Distribution, error) {
	body, err := json.Marshal(map[string]any{"features": features})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("audio inference request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("audio inference returned status %d", resp.StatusCode)
	}

	var payload struct {
		Scores emotion.Distribution `json:"scores"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode audio inference response: %w", err)
	}
	return payload.Scores, nil
}
