package modality

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// TranscriberConfig carries the connection settings of the speech
// gateway (a WebSocket speech-to-text service).
type TranscriberConfig struct {
	URL      string
	APIKey   string
	Language string
	Timeout  time.Duration
}

// WSTranscriber streams audio to the speech gateway over a WebSocket
// and waits for the final transcript. One connection per request; the
// gateway owns all model state, so the client is safe for concurrent
// use across overlapping turns.
type WSTranscriber struct {
	cfg    TranscriberConfig
	dialer *websocket.Dialer
}

// NewWSTranscriber creates a transcriber client for the gateway at
// cfg.URL.
func NewWSTranscriber(cfg TranscriberConfig) *WSTranscriber {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &WSTranscriber{
		cfg: cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.Timeout,
		},
	}
}

type transcribeRequest struct {
	Type     string `json:"type"`
	Format   string `json:"format,omitempty"`
	Language string `json:"language,omitempty"`
}

type transcribeResponse struct {
	Code       int     `json:"code"`
	Message    string  `json:"message,omitempty"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Transcribe sends the audio and returns the recognized text. Protocol:
// a JSON start frame, the audio as one binary frame, a JSON end frame,
// then the gateway's JSON result.
func (t *WSTranscriber) Transcribe(ctx context.Context, audio []byte, format string) (string, error) {
	header := http.Header{}
	if t.cfg.APIKey != "" {
		header.Set("Authorization", "Bearer "+t.cfg.APIKey)
	}

	conn, resp, err := t.dialer.DialContext(ctx, t.cfg.URL, header)
	if err != nil {
		return "", fmt.Errorf("failed to connect to speech gateway: %w", err)
	}
	defer conn.Close()
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	deadline := time.Now().Add(t.cfg.Timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	conn.SetReadDeadline(deadline)
	conn.SetWriteDeadline(deadline)

	start := transcribeRequest{Type: "start", Format: format, Language: t.cfg.Language}
	if err := conn.WriteJSON(start); err != nil {
		return "", fmt.Errorf("failed to send start frame: %w", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return "", fmt.Errorf("failed to send audio: %w", err)
	}
	if err := conn.WriteJSON(transcribeRequest{Type: "end"}); err != nil {
		return "", fmt.Errorf("failed to send end frame: %w", err)
	}

	var result transcribeResponse
	if err := conn.ReadJSON(&result); err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}
	if result.Code != 0 {
		return "", fmt.Errorf("speech gateway error %d: %s", result.Code, result.Message)
	}

	log.Printf("[asr] transcribed %d bytes, confidence=%.2f", len(audio), result.Confidence)
	return result.Text, nil
}
