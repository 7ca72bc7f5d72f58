// Package pipeline runs the four fixed analysis stages in order, threading
// each stage's validated output into the next stage's template, and
// assembles the anchored internal reasoning model.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"principia/internal/anchor"
	"principia/internal/llmclient"
	"principia/internal/model"
	"principia/internal/prompt"
)

// State is the orchestrator's position in the run. Transitions are strictly
// forward; Failed is terminal and reachable from any stage.
type State string

const (
	StateIdle           State = "idle"
	StateDecomposition  State = "decomposition"
	StateValidation     State = "validation"
	StateReconstruction State = "reconstruction"
	StateApplication    State = "application"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

// StageError is the single aggregated error for a failed run: it names the
// failing stage and wraps the underlying cause.
type StageError struct {
	Step int
	Name string
	Err  error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("Step %d (%s): %v", e.Step, e.Name, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Observer receives stage transition events. Implementations must be cheap;
// they are called synchronously between stages.
type Observer interface {
	StageStarted(step int, name string)
	StageCompleted(step int, name string)
}

// Orchestrator holds the injected generative client and run-independent
// settings. It keeps no state between runs.
type Orchestrator struct {
	llm        llmclient.LLMClient
	log        *zap.Logger
	obs        Observer
	maxRetries int
}

type Option func(*Orchestrator)

func WithLogger(log *zap.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) { o.obs = obs }
}

// WithMaxRetries overrides the per-stage retry budget (default 1).
func WithMaxRetries(n int) Option {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

func New(llm llmclient.LLMClient, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		llm:        llm,
		log:        zap.NewNop(),
		maxRetries: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the full pipeline for one request. On the first unrecoverable
// stage failure it aborts and returns a StageError; partial stage outputs are
// discarded, never surfaced.
func (o *Orchestrator) Run(ctx context.Context, in model.ConceptInput) (model.InternalReasoningModel, error) {
	state := StateIdle
	fail := func(def stageDef, err error) (model.InternalReasoningModel, error) {
		state = StateFailed
		serr := &StageError{Step: def.step, Name: def.name, Err: err}
		o.log.Error("pipeline failed",
			zap.String("state", string(state)),
			zap.Int("step", def.step),
			zap.String("stage", def.name),
			zap.Error(err))
		return model.InternalReasoningModel{}, serr
	}

	// Stage 1: decomposition. The concept enters here and nowhere else;
	// domain and depth thread through all four stages unchanged.
	state = StateDecomposition
	o.stageStarted(stageDecomposition)
	s1Prompt, err := prompt.Build(prompt.Stage1Vars{Concept: in.Concept, Domain: in.Domain, Depth: in.Depth})
	if err != nil {
		return fail(stageDecomposition, err)
	}
	var s1 Stage1Out
	if err := o.runStage(ctx, stageDecomposition, s1Prompt, &s1); err != nil {
		return fail(stageDecomposition, err)
	}
	o.stageCompleted(stageDecomposition)

	// Stage 2: validation.
	state = StateValidation
	o.stageStarted(stageValidation)
	s1JSON, err := encodePromptInput(s1.FirstPrinciples)
	if err != nil {
		return fail(stageValidation, err)
	}
	s2Prompt, err := prompt.Build(prompt.Stage2Vars{Domain: in.Domain, Depth: in.Depth, Principles: s1JSON})
	if err != nil {
		return fail(stageValidation, err)
	}
	var s2 Stage2Out
	if err := o.runStage(ctx, stageValidation, s2Prompt, &s2); err != nil {
		return fail(stageValidation, err)
	}
	o.stageCompleted(stageValidation)

	// Stage 3: reconstruction.
	state = StateReconstruction
	o.stageStarted(stageReconstruction)
	s2JSON, err := encodePromptInput(s2.ValidatedPrinciples)
	if err != nil {
		return fail(stageReconstruction, err)
	}
	s3Prompt, err := prompt.Build(prompt.Stage3Vars{Domain: in.Domain, Depth: in.Depth, ValidatedPrinciples: s2JSON})
	if err != nil {
		return fail(stageReconstruction, err)
	}
	var s3 Stage3Out
	if err := o.runStage(ctx, stageReconstruction, s3Prompt, &s3); err != nil {
		return fail(stageReconstruction, err)
	}
	o.stageCompleted(stageReconstruction)

	// Stage 4: application layer.
	state = StateApplication
	o.stageStarted(stageApplication)
	s3JSON, err := encodePromptInput(s3)
	if err != nil {
		return fail(stageApplication, err)
	}
	s4Prompt, err := prompt.Build(prompt.Stage4Vars{Domain: in.Domain, Depth: in.Depth, Reconstruction: s3JSON})
	if err != nil {
		return fail(stageApplication, err)
	}
	var s4 Stage4Out
	if err := o.runStage(ctx, stageApplication, s4Prompt, &s4); err != nil {
		return fail(stageApplication, err)
	}
	o.stageCompleted(stageApplication)

	// Anchoring: stage 4's raw string arrays joined with stage 2's
	// validated principle list. Failures here are fatal, not retried.
	m, err := anchor.Assemble(anchor.Input{
		Definition: s4.Definition,
		Principles: s2.ValidatedPrinciples,
		Steps:      s4.Reconstruction,
		Examples:   s4.Examples,
		UseCases:   s4.UseCases,
		Scenarios:  s4.Scenarios,
		Challenges: s4.AssumptionChallenges,
	})
	if err != nil {
		return fail(stageApplication, err)
	}

	state = StateDone
	o.log.Info("pipeline done",
		zap.String("state", string(state)),
		zap.String("concept", in.Concept),
		zap.String("domain", string(in.Domain)),
		zap.String("depth", string(in.Depth)),
		zap.Int("principles", len(m.FirstPrinciples)),
		zap.Int("steps", len(m.Reconstruction)))
	return m, nil
}

func (o *Orchestrator) stageStarted(def stageDef) {
	o.log.Info("stage started", zap.Int("step", def.step), zap.String("stage", def.name))
	if o.obs != nil {
		o.obs.StageStarted(def.step, def.name)
	}
}

func (o *Orchestrator) stageCompleted(def stageDef) {
	o.log.Info("stage completed", zap.Int("step", def.step), zap.String("stage", def.name))
	if o.obs != nil {
		o.obs.StageCompleted(def.step, def.name)
	}
}
