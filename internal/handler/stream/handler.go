// Package stream pushes live per-turn assessment updates to clients
// over Server-Sent Events.
package stream

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carezhou/heartline/backend/internal/model/chat"
	"github.com/carezhou/heartline/backend/internal/model/emotion"
	"github.com/carezhou/heartline/backend/internal/service/session"
	"github.com/carezhou/heartline/backend/pkg/utils"
)

const defaultPollInterval = 2 * time.Second

// Handler streams a session's detected state and risk level as they
// evolve turn by turn.
type Handler struct {
	store    *session.Store
	interval time.Duration
}

// New creates the stream handler. A non-positive interval falls back to
// the default poll cadence.
func New(store *session.Store, interval time.Duration) *Handler {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Handler{store: store, interval: interval}
}

// RegisterRoutes mounts the stream routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

// StateUpdate is one streamed assessment snapshot.
type StateUpdate struct {
	SessionID string            `json:"sessionId"`
	State     string            `json:"state"`
	RiskLevel emotion.RiskLevel `json:"riskLevel"`
	Score     float64           `json:"score"`
	At        time.Time         `json:"at"`
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	if _, err := h.store.Get(r.Context(), sessionID); err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	utils.SetupSSEHeaders(w)
	utils.SendSSEEvent(w, flusher, "connected", map[string]string{"sessionId": sessionID})

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	sent := 0
	for {
		sent = h.pushNewAssessments(w, flusher, r, sessionID, sent)

		sess, err := h.store.Get(r.Context(), sessionID)
		if err != nil || !sess.Open() {
			utils.SendSSEEvent(w, flusher, "end", map[string]string{"sessionId": sessionID})
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

// pushNewAssessments emits every assessment recorded since the last
// poll and returns the new high-water mark.
func (h *Handler) pushNewAssessments(w http.ResponseWriter, flusher http.Flusher, r *http.Request, sessionID string, sent int) int {
	assessments := h.store.Assessments(r.Context(), sessionID)
	for _, a := range assessments[min(sent, len(assessments)):] {
		utils.SendSSEEvent(w, flusher, "assessment", updateFromAssessment(a))
	}
	if len(assessments) > sent {
		return len(assessments)
	}
	return sent
}

func updateFromAssessment(a chat.Assessment) StateUpdate {
	return StateUpdate{
		SessionID: a.SessionID,
		State:     a.State,
		RiskLevel: a.RiskLevel,
		Score:     a.Score,
		At:        a.CreatedAt,
	}
}
