package multimodal

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/carezhou/heartline/backend/internal/service/pipeline"
	"github.com/carezhou/heartline/backend/internal/service/session"
)

func setupRouter() (*chi.Mux, *session.Store) {
	store := session.NewStore()
	p := pipeline.New(pipeline.Config{Store: store})
	handler := New(p)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, store
}

func multipartTurn(t *testing.T, sessionID string, audio []byte, frames [][]byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if sessionID != "" {
		if err := writer.WriteField("session_id", sessionID); err != nil {
			t.Fatalf("write session_id: %v", err)
		}
	}
	if audio != nil {
		part, err := writer.CreateFormFile("audio", "turn.wav")
		if err != nil {
			t.Fatalf("create audio part: %v", err)
		}
		part.Write(audio)
	}
	for _, frame := range frames {
		part, err := writer.CreateFormFile("frames", "frame.jpg")
		if err != nil {
			t.Fatalf("create frame part: %v", err)
		}
		part.Write(frame)
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func post(r http.Handler, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/multimodal_input", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestMultimodalTurn(t *testing.T) {
	r, store := setupRouter()
	sess, err := store.Start(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	body, contentType := multipartTurn(t, sess.ID, []byte("not-really-audio"), [][]byte{[]byte("frame")})
	resp := post(r, body, contentType)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var result struct {
		Response  string `json:"response"`
		State     string `json:"state"`
		RiskLevel string `json:"risk_level"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Response == "" || result.State == "" || result.RiskLevel == "" {
		t.Fatalf("incomplete turn result: %s", resp.Body.String())
	}

	turns, err := store.RecentTurns(context.Background(), sess.ID, 2)
	if err != nil {
		t.Fatalf("recent turns: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected the turn to be persisted, got %d turns", len(turns))
	}
}

func TestMultimodalRequiresSessionID(t *testing.T) {
	r, _ := setupRouter()

	body, contentType := multipartTurn(t, "", []byte("audio"), nil)
	resp := post(r, body, contentType)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestMultimodalRequiresAudio(t *testing.T) {
	r, store := setupRouter()
	sess, err := store.Start(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	body, contentType := multipartTurn(t, sess.ID, nil, nil)
	resp := post(r, body, contentType)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestMultimodalUnknownSessionStillResponds(t *testing.T) {
	r, _ := setupRouter()

	// Persistence is best effort; the user still gets an answer even
	// when the session cannot be found.
	body, contentType := multipartTurn(t, "missing", []byte("audio"), nil)
	resp := post(r, body, contentType)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}
