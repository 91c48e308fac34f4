package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/carezhou/heartline/backend/internal/model/chat"
	"github.com/carezhou/heartline/backend/internal/model/emotion"
	"github.com/carezhou/heartline/backend/internal/service/session"
)

func setupRouter() (*chi.Mux, *session.Store) {
	store := session.NewStore()
	handler := New(store)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, store
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestListSessionsBackfillsSummaries(t *testing.T) {
	r, store := setupRouter()
	ctx := context.Background()

	sess, err := store.Start(ctx, "user-1")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	userTurn := chat.Turn{SessionID: sess.ID, Sender: chat.SenderUser, Content: "the exams keep piling up"}
	botTurn := chat.Turn{
		SessionID: sess.ID,
		Sender:    chat.SenderBot,
		Content:   "That sounds heavy.",
		Metadata:  &chat.TurnMetadata{State: emotion.StateStress},
	}
	if err := store.AppendExchange(ctx, userTurn, botTurn); err != nil {
		t.Fatalf("append exchange: %v", err)
	}
	// Closed without a summary; the listing must backfill it.
	if _, err := store.Close(ctx, sess.ID, ""); err != nil {
		t.Fatalf("close session: %v", err)
	}

	resp := get(r, "/admin/sessions")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var listing struct {
		Sessions []chat.Session `json:"sessions"`
		Count    int            `json:"count"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if listing.Count != 1 || len(listing.Sessions) != 1 {
		t.Fatalf("expected one session, got %+v", listing)
	}
	got := listing.Sessions[0].Summary
	if !strings.Contains(got, "exams") || !strings.Contains(got, "State: "+emotion.StateStress) {
		t.Fatalf("unexpected backfilled summary %q", got)
	}

	// The backfilled digest is stored, not recomputed per read.
	stored, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if stored.Summary != got {
		t.Fatalf("summary not persisted: stored %q, listed %q", stored.Summary, got)
	}
}

func TestListSessionsLeavesOpenSessionsAlone(t *testing.T) {
	r, store := setupRouter()
	if _, err := store.Start(context.Background(), "user-1"); err != nil {
		t.Fatalf("start session: %v", err)
	}

	resp := get(r, "/admin/sessions")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var listing struct {
		Sessions []chat.Session `json:"sessions"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(listing.Sessions) != 1 || listing.Sessions[0].Summary != "" {
		t.Fatalf("open session should stay unsummarized, got %+v", listing.Sessions)
	}
}

func TestAssessmentsForSession(t *testing.T) {
	r, store := setupRouter()
	ctx := context.Background()

	sess, err := store.Start(ctx, "user-1")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	store.RecordAssessment(ctx, chat.Assessment{
		SessionID: sess.ID,
		UserID:    "user-1",
		State:     emotion.StateSadness,
		RiskLevel: emotion.RiskMedium,
		Score:     0.52,
	})

	resp := get(r, "/admin/sessions/"+sess.ID+"/assessments")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var payload struct {
		Assessments []chat.Assessment `json:"assessments"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode assessments: %v", err)
	}
	if len(payload.Assessments) != 1 || payload.Assessments[0].State != emotion.StateSadness {
		t.Fatalf("unexpected assessments %+v", payload.Assessments)
	}
}

func TestAssessmentsUnknownSession(t *testing.T) {
	r, _ := setupRouter()

	resp := get(r, "/admin/sessions/missing/assessments")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
