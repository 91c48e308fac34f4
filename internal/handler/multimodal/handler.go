package multimodal

import (
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carezhou/heartline/backend/internal/service/pipeline"
	"github.com/carezhou/heartline/backend/pkg/utils"
)

// Uploads are short voice clips plus a handful of frames; 32 MiB of
// form memory is plenty.
const maxUploadMemory = 32 << 20

// Handler accepts multimodal turns: one audio clip and zero or more
// video frames per request.
type Handler struct {
	pipeline *pipeline.Pipeline
}

// New creates the multimodal handler.
func New(p *pipeline.Pipeline) *Handler {
	return &Handler{pipeline: p}
}

// RegisterRoutes mounts the multimodal routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/multimodal_input", h.handleInput)
}

func (h *Handler) handleInput(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	audioFile, audioHeader, err := r.FormFile("audio")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "no audio file provided")
		return
	}
	defer audioFile.Close()

	audio, err := io.ReadAll(audioFile)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to read audio file")
		return
	}

	var frames [][]byte
	if r.MultipartForm != nil {
		for _, frameHeader := range r.MultipartForm.File["frames"] {
			frame, err := readFormFile(frameHeader)
			if err != nil {
				// A broken frame degrades the video evidence, not the turn.
				log.Printf("[multimodal] skipping unreadable frame: %v", err)
				continue
			}
			frames = append(frames, frame)
		}
	}

	result, err := h.pipeline.ProcessMultimodal(r.Context(), pipeline.TurnInput{
		SessionID:   sessionID,
		Audio:       audio,
		AudioFormat: formatFromFilename(audioHeader.Filename),
		Frames:      frames,
	})
	if err != nil {
		log.Printf("[multimodal] processing failed for session=%s: %v", sessionID, err)
		utils.RespondError(w, http.StatusInternalServerError, "processing failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

func readFormFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func formatFromFilename(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return "wav"
}
