package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carezhou/heartline/backend/internal/service/pipeline"
	"github.com/carezhou/heartline/backend/internal/service/session"
	"github.com/carezhou/heartline/backend/pkg/utils"
)

// Handler exposes session lifecycle and text chat over HTTP.
type Handler struct {
	store    *session.Store
	pipeline *pipeline.Pipeline
}

// New creates the chat handler.
func New(store *session.Store, p *pipeline.Pipeline) *Handler {
	return &Handler{store: store, pipeline: p}
}

// RegisterRoutes mounts the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session/start", h.handleStartSession)
	r.Post("/session/end", h.handleEndSession)
	r.Get("/session/{sessionID}/transcript", h.handleTranscript)
	r.Post("/chat", h.handleChat)
}

func (h *Handler) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID string `json:"userId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.UserID == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	sess, err := h.store.Start(r.Context(), payload.UserID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, sess)
}

func (h *Handler) handleEndSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	digest, err := h.pipeline.CloseSession(r.Context(), payload.SessionID)
	if err != nil {
		utils.RespondError(w, statusForStoreError(err), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "ended",
		"summary": digest,
	})
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	turns, err := h.store.Transcript(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, statusForStoreError(err), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, turns)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
		UserID    string `json:"userId"`
		Message   string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	sessionID := payload.SessionID
	if sessionID == "" {
		// Fall back to the user's most recent open session.
		if payload.UserID == "" {
			utils.RespondError(w, http.StatusBadRequest, "sessionId or userId is required")
			return
		}
		active, ok := h.store.Active(r.Context(), payload.UserID)
		if !ok {
			utils.RespondError(w, http.StatusNotFound, "no open session for user")
			return
		}
		sessionID = active.ID
	}

	result, err := h.pipeline.ProcessText(r.Context(), sessionID, payload.Message)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "chat processing failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

func statusForStoreError(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSessionClosed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
