package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"principia/internal/model"
	"principia/internal/narrative"
	"principia/internal/util/jsonutil"
)

type analyzeRequest struct {
	Concept    string `json:"concept"`
	Domain     string `json:"domain"`
	Depth      string `json:"depth"`
	Audience   string `json:"audience,omitempty"`
	Complexity string `json:"complexity,omitempty"`
}

type renderRequest struct {
	RunID      string `json:"run_id"`
	Audience   string `json:"audience"`
	Complexity string `json:"complexity"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	// Shape validation happens here, before the core pipeline is invoked.
	in, err := model.NewConceptInput(req.Concept, req.Domain, req.Depth)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	audience, err := narrative.ParseAudience(req.Audience)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	complexity, err := narrative.ParseComplexity(req.Complexity)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	run := &Run{
		ID:         uuid.NewString(),
		Input:      in,
		Audience:   audience,
		Complexity: complexity,
		Status:     RunPending,
		CreatedAt:  time.Now(),
	}
	s.runs.Put(run)

	// The run outlives the HTTP request; its lifetime is bounded by the
	// per-stage timeout inside the client, not by the request context.
	go s.execute(context.Background(), run.ID, in, audience, complexity)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{"run_id": run.ID})
}

func (s *Server) execute(ctx context.Context, runID string, in model.ConceptInput, audience narrative.Audience, complexity narrative.Complexity) {
	_ = s.runs.Update(runID, func(r *Run) { r.Status = RunRunning })

	m, err := s.orchestrator(runID).Run(ctx, in)
	if err != nil {
		_ = s.runs.Update(runID, func(r *Run) {
			r.Status = RunFailed
			r.Error = err.Error()
			r.FinishedAt = nowPtr()
		})
		s.hub.Broadcast(Event{Type: EventRunFailed, RunID: runID, Error: err.Error()})
		return
	}

	vm, err := narrative.Render(&m, audience, complexity)
	if err != nil {
		_ = s.runs.Update(runID, func(r *Run) {
			r.Status = RunFailed
			r.Error = err.Error()
			r.FinishedAt = nowPtr()
		})
		s.hub.Broadcast(Event{Type: EventRunFailed, RunID: runID, Error: err.Error()})
		return
	}

	_ = s.runs.Update(runID, func(r *Run) {
		r.Status = RunDone
		r.Model = &m
		r.Narrative = &vm
		r.FinishedAt = nowPtr()
	})
	s.hub.Broadcast(Event{Type: EventRunCompleted, RunID: runID})
	s.log.Info("run completed", zap.String("run_id", runID), zap.String("concept", in.Concept))
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if id == "" {
		http.Error(w, "run id is required", http.StatusBadRequest)
		return
	}
	run, ok := s.runs.Get(id)
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, run)
}

// handleRender re-renders a completed run's internal model for a different
// audience or complexity. The generative service is never touched here.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	audience, err := narrative.ParseAudience(req.Audience)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	complexity, err := narrative.ParseComplexity(req.Complexity)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	run, ok := s.runs.Get(strings.TrimSpace(req.RunID))
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if run.Status != RunDone || run.Model == nil {
		http.Error(w, "run has no internal model", http.StatusConflict)
		return
	}
	vm, err := narrative.Render(run.Model, audience, complexity)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, vm)
}

func writeJSON(w http.ResponseWriter, v any) {
	b, err := jsonutil.MarshalNoEscape(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(b)
}
