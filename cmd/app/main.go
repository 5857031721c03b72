package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/local/answerpipe/internal/ai"
	"github.com/local/answerpipe/internal/archive"
	cfgpkg "github.com/local/answerpipe/internal/config"
	"github.com/local/answerpipe/internal/conversation"
	"github.com/local/answerpipe/internal/dispatcher"
	"github.com/local/answerpipe/internal/imaging"
	logpkg "github.com/local/answerpipe/internal/logger"
	"github.com/local/answerpipe/internal/metrics"
	"github.com/local/answerpipe/internal/ocr"
	"github.com/local/answerpipe/internal/parser"
	"github.com/local/answerpipe/internal/pipeline"
	"github.com/local/answerpipe/internal/screens"
)

func main() {
	_ = godotenv.Load()
	cfg := cfgpkg.FromEnv()

	_ = logpkg.Init(logpkg.Options{
		Level:        cfg.Logging.Level,
		Pretty:       cfg.Logging.Pretty,
		File:         cfg.Logging.File,
		MaxSizeMB:    cfg.Logging.MaxSizeMB,
		MaxBackups:   cfg.Logging.MaxBackups,
		MaxAgeDays:   cfg.Logging.MaxAgeDays,
		Compress:     cfg.Logging.Compress,
		SendToAxiom:  cfg.Axiom.Send && cfg.Axiom.APIKey != "",
		AxiomAPIKey:  cfg.Axiom.APIKey,
		AxiomOrgID:   cfg.Axiom.OrgID,
		AxiomDataset: cfg.Axiom.Dataset,
		AxiomFlush:   cfg.Axiom.FlushInterval,
	})
	defer logpkg.Close()

	metrics.Init()

	// Fallback cool-down state: shared via Redis when configured, else in-process.
	var fallback dispatcher.FallbackStore
	if cfg.State.RedisURL != "" {
		rf, err := dispatcher.NewRedisFallback(cfg.State.RedisURL, cfg.Retry.FallbackCooldown)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init redis fallback store")
		}
		defer rf.Close()
		fallback = rf
	} else {
		fallback = dispatcher.NewMemoryFallback(cfg.Retry.FallbackCooldown)
	}

	controller := dispatcher.NewController(
		ai.NewOpenAIClient(cfg.Providers.OpenAIKey),
		ai.NewGeminiClient(cfg.Providers.GeminiKey),
		cfg.Retry,
		fallback,
	)

	deps := pipeline.Dependencies{
		Screens:      screens.NewStore(),
		OCR:          ocr.NewTesseractExtractor(cfg.OCR.Language),
		Compressor:   imaging.NewJPEGCompressor(cfg.Imaging.MaxEdge, cfg.Imaging.JPEGQuality),
		Conversation: conversation.NewStore(),
		Controller:   controller,
		Sink:         pipeline.LogSink{},
		Cfg:          cfg,
	}

	if cfg.Archive.Bucket != "" {
		arch, err := archive.NewS3Archiver(context.Background(), cfg.Archive.Bucket, cfg.Archive.Prefix)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init s3 archiver")
		}
		deps.Archiver = arch
	}

	orch := pipeline.New(deps)

	mux := http.NewServeMux()
	registerRoutes(mux, orch, deps.Screens, cfg)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: mux}

	go func() {
		log.Info().Msgf("HTTP server listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	orch.Cancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	fmt.Println("shutdown complete")
}

type pathReq struct {
	Path string `json:"path"`
}

type processReq struct {
	Mode     string `json:"mode"`
	Language string `json:"language"`
}

func registerRoutes(mux *http.ServeMux, orch *pipeline.Orchestrator, store *screens.Store, cfg cfgpkg.Config) {
	mux.HandleFunc("POST /v1/queue/main", func(w http.ResponseWriter, r *http.Request) {
		addScreenshot(w, r, store.AddMain)
	})
	mux.HandleFunc("POST /v1/queue/extra", func(w http.ResponseWriter, r *http.Request) {
		addScreenshot(w, r, store.AddExtra)
	})
	mux.HandleFunc("POST /v1/process", func(w http.ResponseWriter, r *http.Request) {
		runRequest(w, r, cfg, orch.ProcessInitial)
	})
	mux.HandleFunc("POST /v1/debug", func(w http.ResponseWriter, r *http.Request) {
		runRequest(w, r, cfg, orch.ProcessDebug)
	})
	mux.HandleFunc("POST /v1/cancel", func(w http.ResponseWriter, r *http.Request) {
		orch.Cancel()
		w.WriteHeader(http.StatusAccepted)
	})
}

func addScreenshot(w http.ResponseWriter, r *http.Request, add func(string)) {
	var req pathReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		http.Error(w, "path required", http.StatusBadRequest)
		return
	}
	add(req.Path)
	w.WriteHeader(http.StatusAccepted)
}

func runRequest(w http.ResponseWriter, r *http.Request, cfg cfgpkg.Config,
	process func(context.Context, pipeline.Request) (parser.Solution, error)) {
	var req processReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	mode := cfg.Mode
	if req.Mode != "" {
		mode = cfgpkg.ParseMode(req.Mode)
	}
	language := cfg.Language
	if req.Language != "" {
		language = req.Language
	}

	sol, err := process(r.Context(), pipeline.Request{Mode: mode, Language: language})
	if err != nil {
		status := http.StatusBadGateway
		switch pipeline.Categorize(err) {
		case pipeline.KindNoScreenshots, pipeline.KindConfig:
			status = http.StatusBadRequest
		case pipeline.KindCancelled:
			status = 499
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": err.Error(),
			"kind":  pipeline.Categorize(err),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sol)
}
