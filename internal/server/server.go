// Package server is the HTTP boundary: it validates request shape, invokes
// the core pipeline, stores recent runs, and streams stage progress. The
// core owns no persistence; everything here is caller-side state.
package server

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"principia/internal/config"
	"principia/internal/llmclient"
	"principia/internal/pipeline"
)

type Server struct {
	log  *zap.Logger
	cfg  *config.Config
	llm  llmclient.LLMClient
	runs *RunStore
	hub  *Hub
}

func New(log *zap.Logger, cfg *config.Config, llm llmclient.LLMClient) (*Server, error) {
	runs, err := NewRunStore(256)
	if err != nil {
		return nil, err
	}
	return &Server{
		log:  log,
		cfg:  cfg,
		llm:  llm,
		runs: runs,
		hub:  NewHub(log),
	}, nil
}

// orchestrator builds a per-run orchestrator around the shared injected
// client, with the run's observer attached.
func (s *Server) orchestrator(runID string) *pipeline.Orchestrator {
	return pipeline.New(
		s.llm,
		pipeline.WithLogger(s.log.With(zap.String("run_id", runID))),
		pipeline.WithObserver(runObserver{hub: s.hub, runID: runID}),
		pipeline.WithMaxRetries(s.cfg.MaxRetries),
	)
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/runs/", s.handleGetRun)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/ws", s.hub.HandleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return withCORS(mux)
}

// withCORS mirrors the permissive boundary middleware the frontend expects.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Vary", "Origin")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}

func nowPtr() *time.Time {
	t := time.Now()
	return &t
}
