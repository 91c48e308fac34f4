package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/carezhou/heartline/backend/internal/handler/admin"
	"github.com/carezhou/heartline/backend/internal/handler/chat"
	"github.com/carezhou/heartline/backend/internal/handler/multimodal"
	"github.com/carezhou/heartline/backend/internal/handler/stream"
	middlewarePkg "github.com/carezhou/heartline/backend/internal/middleware"
	"github.com/carezhou/heartline/backend/internal/service/pipeline"
	"github.com/carezhou/heartline/backend/internal/service/session"
	"github.com/carezhou/heartline/backend/pkg/utils"
)

// NewRouter wires HTTP routes to the session store and turn pipeline.
func NewRouter(store *session.Store, p *pipeline.Pipeline, streamInterval time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chat.New(store, p)
	multimodalHandler := multimodal.New(p)
	adminHandler := admin.New(store)
	streamHandler := stream.New(store, streamInterval)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
		multimodalHandler.RegisterRoutes(api)
		adminHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
