package admin

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carezhou/heartline/backend/internal/model/chat"
	"github.com/carezhou/heartline/backend/internal/service/session"
	"github.com/carezhou/heartline/backend/internal/service/summary"
	"github.com/carezhou/heartline/backend/pkg/utils"
)

// Handler serves the reporting surface: session listings with their
// digests, and per-session assessment history.
type Handler struct {
	store *session.Store
}

// New creates the admin handler.
func New(store *session.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the admin routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/sessions", h.handleListSessions)
	r.Get("/admin/sessions/{sessionID}/assessments", h.handleAssessments)
}

// handleListSessions lists every session, oldest first. Sessions that
// ended without a summary get one computed and stored on first read.
func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.store.List(r.Context())

	for i, sess := range sessions {
		if sess.Open() || sess.Summary != "" {
			continue
		}
		digest, err := h.backfillSummary(r, sess)
		if err != nil {
			log.Printf("[admin] summary backfill failed for session=%s: %v", sess.ID, err)
			continue
		}
		sessions[i].Summary = digest
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (h *Handler) backfillSummary(r *http.Request, sess chat.Session) (string, error) {
	turns, err := h.store.Transcript(r.Context(), sess.ID)
	if err != nil {
		return "", err
	}
	digest := summary.Summarize(turns, summary.DetectedState(turns))
	if err := h.store.SetSummary(r.Context(), sess.ID, digest); err != nil {
		return "", err
	}
	return digest, nil
}

func (h *Handler) handleAssessments(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := h.store.Get(r.Context(), sessionID); err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	assessments := h.store.Assessments(r.Context(), sessionID)
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId":   sessionID,
		"assessments": assessments,
	})
}
