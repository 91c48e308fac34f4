package chat

import (
	"bytes"
	"context"
	"encoding/json"
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
	handler := New(store, p)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, store
}

func postJSON(t *testing.T, r http.Handler, path string, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestStartSession(t *testing.T) {
	r, _ := setupRouter()

	resp := postJSON(t, r, "/session/start", map[string]string{"userId": "user-1"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var sess struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &sess); err != nil || sess.ID == "" {
		t.Fatalf("expected a session id, got %q (err %v)", resp.Body.String(), err)
	}
}

func TestStartSessionRequiresUser(t *testing.T) {
	r, _ := setupRouter()

	resp := postJSON(t, r, "/session/start", map[string]string{})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestChatRespondsAndPersists(t *testing.T) {
	r, store := setupRouter()
	sess, _ := store.Start(context.Background(), "user-1")

	resp := postJSON(t, r, "/chat", map[string]string{
		"sessionId": sess.ID,
		"message":   "everything feels pointless lately",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var result struct {
		Response  string `json:"response"`
		State     string `json:"state"`
		RiskLevel string `json:"risk_level"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if result.Response == "" || result.State == "" || result.RiskLevel == "" {
		t.Fatalf("incomplete payload: %+v", result)
	}

	turns, err := store.Transcript(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Transcript err: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected persisted exchange, got %d turns", len(turns))
	}
}

func TestChatResolvesActiveSession(t *testing.T) {
	r, store := setupRouter()
	store.Start(context.Background(), "user-1")

	resp := postJSON(t, r, "/chat", map[string]string{
		"userId":  "user-1",
		"message": "hello there",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestChatNoOpenSession(t *testing.T) {
	r, _ := setupRouter()

	resp := postJSON(t, r, "/chat", map[string]string{
		"userId":  "nobody",
		"message": "hello",
	})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestEndSessionReturnsSummary(t *testing.T) {
	r, store := setupRouter()
	sess, _ := store.Start(context.Background(), "user-1")

	postJSON(t, r, "/chat", map[string]string{
		"sessionId": sess.ID,
		"message":   "deadlines deadlines deadlines everywhere",
	})

	resp := postJSON(t, r, "/session/end", map[string]string{"sessionId": sess.ID})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload struct {
		Status  string `json:"status"`
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if payload.Status != "ended" || payload.Summary == "" {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	// Ending twice conflicts.
	resp = postJSON(t, r, "/session/end", map[string]string{"sessionId": sess.ID})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestTranscriptUnknownSession(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/session/missing/transcript", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
