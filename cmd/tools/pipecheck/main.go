// pipecheck drives a running backend through a full session over HTTP:
// start, a few text turns, an optional multimodal turn, transcript,
// close. It prints what the pipeline detected at each step.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

var sampleUtterances = []string{
	"I have been feeling really down and empty lately",
	"The exams are coming and I cannot stop worrying",
	"I am so tired, work keeps piling up every single day",
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] could not load .env, using system environment: %v", err)
	}

	baseURL := flag.String("base", "http://localhost:8080", "backend base URL")
	user := flag.String("user", "", "user id, auto-generated when empty")
	audioPath := flag.String("audio", "", "optional wav file for a multimodal turn")
	timeout := flag.Duration("timeout", 60*time.Second, "overall deadline")
	flag.Parse()

	userID := *user
	if userID == "" {
		userID = fmt.Sprintf("pipecheck-%d", time.Now().UnixNano())
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c := &client{base: *baseURL, http: &http.Client{}}

	sessionID, err := c.startSession(ctx, userID)
	if err != nil {
		log.Fatalf("session start failed: %v", err)
	}
	log.Printf("session started: %s (user %s)", sessionID, userID)

	for _, utterance := range sampleUtterances {
		turn, err := c.chat(ctx, sessionID, utterance)
		if err != nil {
			log.Fatalf("chat turn failed: %v", err)
		}
		log.Printf("user  > %s", utterance)
		log.Printf("bot   < %s", turn.Response)
		log.Printf("state = %s, risk = %s (%.2f)", turn.State, turn.RiskLevel, turn.RiskScore)
	}

	if *audioPath != "" {
		turn, err := c.multimodal(ctx, sessionID, *audioPath)
		if err != nil {
			log.Fatalf("multimodal turn failed: %v", err)
		}
		log.Printf("multimodal transcript: %q", turn.Transcription)
		log.Printf("state = %s, risk = %s (%.2f)", turn.State, turn.RiskLevel, turn.RiskScore)
	}

	count, err := c.transcriptLength(ctx, sessionID)
	if err != nil {
		log.Fatalf("transcript fetch failed: %v", err)
	}
	log.Printf("transcript holds %d turns", count)

	summary, err := c.endSession(ctx, sessionID)
	if err != nil {
		log.Fatalf("session end failed: %v", err)
	}
	log.Printf("session closed, summary: %s", summary)
}

type client struct {
	base string
	http *http.Client
}

type turnResult struct {
	Response      string  `json:"response"`
	State         string  `json:"state"`
	RiskLevel     string  `json:"risk_level"`
	RiskScore     float64 `json:"risk_score"`
	Transcription string  `json:"transcription"`
}

func (c *client) startSession(ctx context.Context, userID string) (string, error) {
	var session struct {
		ID string `json:"id"`
	}
	err := c.postJSON(ctx, "/api/session/start", map[string]string{"userId": userID}, &session)
	if err != nil {
		return "", err
	}
	if session.ID == "" {
		return "", fmt.Errorf("backend returned no session id")
	}
	return session.ID, nil
}

func (c *client) chat(ctx context.Context, sessionID, message string) (*turnResult, error) {
	var turn turnResult
	err := c.postJSON(ctx, "/api/chat", map[string]string{
		"sessionId": sessionID,
		"message":   message,
	}, &turn)
	if err != nil {
		return nil, err
	}
	return &turn, nil
}

func (c *client) multimodal(ctx context.Context, sessionID, audioPath string) (*turnResult, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("session_id", sessionID); err != nil {
		return nil, err
	}
	part, err := writer.CreateFormFile("audio", filepath.Base(audioPath))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/multimodal_input", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var turn turnResult
	if err := c.do(req, &turn); err != nil {
		return nil, err
	}
	return &turn, nil
}

func (c *client) transcriptLength(ctx context.Context, sessionID string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/session/"+sessionID+"/transcript", nil)
	if err != nil {
		return 0, err
	}

	var turns []json.RawMessage
	if err := c.do(req, &turns); err != nil {
		return 0, err
	}
	return len(turns), nil
}

func (c *client) endSession(ctx context.Context, sessionID string) (string, error) {
	var result struct {
		Summary string `json:"summary"`
	}
	err := c.postJSON(ctx, "/api/session/end", map[string]string{"sessionId": sessionID}, &result)
	if err != nil {
		return "", err
	}
	return result.Summary, nil
}

func (c *client) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
