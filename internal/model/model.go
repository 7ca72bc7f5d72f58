package model

import (
	"fmt"
)

// FirstPrinciple is an irreducible, necessity-justified statement about the
// concept under analysis. IDs are synthesized as principle_<n> in validated
// order; the order is significant and preserved end to end.
type FirstPrinciple struct {
	ID                     string `json:"id"`
	Statement              string `json:"statement"`
	NecessityJustification string `json:"necessity_justification"`
}

// ReconstructionStep is one step of the rebuild from first principles.
type ReconstructionStep struct {
	ID                    string   `json:"id"`
	StepNumber            int      `json:"step_number"`
	Description           string   `json:"description"`
	PrincipleDependencies []string `json:"principle_dependencies"`
	LogicalProgression    string   `json:"logical_progression"`
}

// AnchoredItem is the shared shape for examples, use cases, scenarios and
// assumption challenges. Every item must reference at least one principle
// that exists in the model's principle list.
type AnchoredItem struct {
	ID                    string   `json:"id"`
	Description           string   `json:"description"`
	PrincipleDependencies []string `json:"principle_dependencies"`
	AnchoringExplanation  string   `json:"anchoring_explanation"`
}

// InternalReasoningModel is the fully structured, anchored representation
// produced by the pipeline, prior to narrative rendering.
type InternalReasoningModel struct {
	Definition           string               `json:"definition"`
	FirstPrinciples      []FirstPrinciple     `json:"first_principles"`
	Reconstruction       []ReconstructionStep `json:"reconstruction"`
	Examples             []AnchoredItem       `json:"examples"`
	UseCases             []AnchoredItem       `json:"use_cases"`
	Scenarios            []AnchoredItem       `json:"scenarios"`
	AssumptionChallenges []AnchoredItem       `json:"assumption_challenges"`
}

// AnchoringError reports a dependency that does not resolve to a principle,
// or an entity with no dependencies at all.
type AnchoringError struct {
	EntityID string
	Ref      string
	Reason   string
}

func (e *AnchoringError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("anchoring: %s references unknown principle %q", e.EntityID, e.Ref)
	}
	return fmt.Sprintf("anchoring: %s: %s", e.EntityID, e.Reason)
}

// Validate checks the model invariants: every non-principle entity's
// dependency set resolves into first_principles, and reconstruction step
// numbers form a contiguous increasing sequence starting at 1.
func (m *InternalReasoningModel) Validate() error {
	if len(m.FirstPrinciples) == 0 {
		return &AnchoringError{EntityID: "model", Reason: "no first principles"}
	}
	known := make(map[string]struct{}, len(m.FirstPrinciples))
	for _, p := range m.FirstPrinciples {
		known[p.ID] = struct{}{}
	}

	for i, s := range m.Reconstruction {
		if s.StepNumber != i+1 {
			return &AnchoringError{
				EntityID: s.ID,
				Reason:   fmt.Sprintf("step_number %d at position %d breaks the contiguous sequence", s.StepNumber, i),
			}
		}
		if err := checkDeps(s.ID, s.PrincipleDependencies, known); err != nil {
			return err
		}
	}
	for _, group := range [][]AnchoredItem{m.Examples, m.UseCases, m.Scenarios, m.AssumptionChallenges} {
		for _, it := range group {
			if err := checkDeps(it.ID, it.PrincipleDependencies, known); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkDeps(entityID string, deps []string, known map[string]struct{}) error {
	if len(deps) == 0 {
		return &AnchoringError{EntityID: entityID, Reason: "empty principle dependency set"}
	}
	for _, ref := range deps {
		if _, ok := known[ref]; !ok {
			return &AnchoringError{EntityID: entityID, Ref: ref}
		}
	}
	return nil
}
