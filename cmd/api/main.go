package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/carezhou/heartline/backend/internal/adapter/modality"
	"github.com/carezhou/heartline/backend/internal/config"
	"github.com/carezhou/heartline/backend/internal/handler"
	"github.com/carezhou/heartline/backend/internal/service/classifier"
	"github.com/carezhou/heartline/backend/internal/service/pipeline"
	"github.com/carezhou/heartline/backend/internal/service/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	store := session.NewStore()

	p := pipeline.New(pipeline.Config{
		Transcriber:     buildTranscriber(cfg.Modality),
		Faces:           buildFaceClassifier(cfg.Modality),
		AudioModel:      buildAudioClassifier(cfg.Modality),
		TextModel:       buildTextClassifier(ctx, cfg.AI),
		Store:           store,
		ModalityTimeout: cfg.Modality.Timeout,
	})

	router := handler.NewRouter(store, p, 0)

	startServer(ctx, cfg.Server, router)
}

func buildTranscriber(cfg config.ModalityConfig) modality.Transcriber {
	if cfg.ASRURL == "" {
		log.Println("ASR endpoint not configured, audio turns will carry no transcript")
		return nil
	}
	log.Printf("speech recognition via %s", cfg.ASRURL)
	return modality.NewWSTranscriber(modality.TranscriberConfig{
		URL:      cfg.ASRURL,
		APIKey:   cfg.ASRAPIKey,
		Language: cfg.ASRLanguage,
		Timeout:  cfg.Timeout,
	})
}

func buildFaceClassifier(cfg config.ModalityConfig) modality.FaceClassifier {
	if cfg.FaceAPIURL == "" {
		log.Println("face analysis endpoint not configured, video frames will be ignored")
		return nil
	}
	log.Printf("face analysis via %s", cfg.FaceAPIURL)
	return modality.NewHTTPFaceClassifier(cfg.FaceAPIURL, cfg.Timeout)
}

func buildAudioClassifier(cfg config.ModalityConfig) modality.AudioClassifier {
	if cfg.AudioAPIURL == "" {
		log.Println("audio emotion endpoint not configured, using the neutral default")
		return nil
	}
	log.Printf("audio emotion analysis via %s", cfg.AudioAPIURL)
	return modality.NewHTTPAudioClassifier(cfg.AudioAPIURL, cfg.Timeout)
}

// buildTextClassifier assembles the tiered text classifier: the LLM
// tier when credentials are configured, then the keyword tier.
func buildTextClassifier(ctx context.Context, cfg config.AIConfig) *classifier.Chain {
	tiers := []classifier.Classifier{}

	if cfg.Enabled() {
		chatModel, err := cfg.NewChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize chat model: %v", err)
			log.Println("continuing with keyword classification only")
		} else if llm, err := classifier.NewLLMClassifier(ctx, chatModel); err != nil {
			log.Printf("warning: failed to initialize LLM classifier: %v", err)
		} else {
			log.Println("LLM classifier tier enabled")
			tiers = append(tiers, llm)
		}
	} else {
		log.Println("chat model credentials not configured, using keyword classification")
	}

	tiers = append(tiers, classifier.NewKeywordClassifier())
	return classifier.NewChain(tiers...)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Heartline backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
