// Package anchor turns the pipeline's validated raw payloads into the typed,
// principle-anchored internal reasoning model.
package anchor

import (
	"fmt"
	"strings"

	"principia/internal/model"
)

// Principle is one validated principle as stage 2 emits it, before an id is
// assigned.
type Principle struct {
	Statement              string `json:"statement"`
	NecessityJustification string `json:"necessity_justification"`
}

// Input carries everything the assembler needs: the validated principle list
// from stage 2 and the raw string arrays from stage 4.
type Input struct {
	Definition string
	Principles []Principle
	Steps      []string
	Examples   []string
	UseCases   []string
	Scenarios  []string
	Challenges []string
}

// Per-category anchoring boilerplate. Fixed text, not derived from content.
const (
	exampleAnchoring   = "This example is grounded in the listed principles: remove any of them and the behavior it illustrates no longer holds."
	useCaseAnchoring   = "This use case applies the listed principles directly; each principle constrains how the concept is employed here."
	scenarioAnchoring  = "This scenario plays out the listed principles in sequence; its outcome is determined by them."
	challengeAnchoring = "This challenge probes the listed principles; answering it requires re-deriving the concept from them."
	stepProgressionOne = "Starts the reconstruction directly from the validated principles."
	stepProgression    = "Builds on the previous step using only the validated principles."
)

// Assemble assigns deterministic ids by array position, anchors every applied
// item, and returns a model that already satisfies the anchoring invariants.
//
// Anchoring policy: every item depends on the entire validated principle set,
// in principle order. Selective per-item anchoring would need the generative
// stage to emit per-item dependency indices; the policy lives only in
// anchorAll so that change stays local.
func Assemble(in Input) (model.InternalReasoningModel, error) {
	if strings.TrimSpace(in.Definition) == "" {
		return model.InternalReasoningModel{}, &model.AnchoringError{EntityID: "definition", Reason: "empty definition"}
	}
	if len(in.Principles) == 0 {
		return model.InternalReasoningModel{}, &model.AnchoringError{EntityID: "model", Reason: "no validated principles"}
	}
	if len(in.Steps) == 0 {
		return model.InternalReasoningModel{}, &model.AnchoringError{EntityID: "reconstruction", Reason: "no reconstruction steps"}
	}

	principles := make([]model.FirstPrinciple, len(in.Principles))
	for i, p := range in.Principles {
		principles[i] = model.FirstPrinciple{
			ID:                     fmt.Sprintf("principle_%d", i+1),
			Statement:              p.Statement,
			NecessityJustification: p.NecessityJustification,
		}
	}

	steps := make([]model.ReconstructionStep, len(in.Steps))
	for i, desc := range in.Steps {
		progression := stepProgression
		if i == 0 {
			progression = stepProgressionOne
		}
		steps[i] = model.ReconstructionStep{
			ID:                    fmt.Sprintf("step_%d", i+1),
			StepNumber:            i + 1,
			Description:           desc,
			PrincipleDependencies: anchorAll(principles),
			LogicalProgression:    progression,
		}
	}

	m := model.InternalReasoningModel{
		Definition:           in.Definition,
		FirstPrinciples:      principles,
		Reconstruction:       steps,
		Examples:             anchorItems("example", in.Examples, exampleAnchoring, principles),
		UseCases:             anchorItems("use_case", in.UseCases, useCaseAnchoring, principles),
		Scenarios:            anchorItems("scenario", in.Scenarios, scenarioAnchoring, principles),
		AssumptionChallenges: anchorItems("challenge", in.Challenges, challengeAnchoring, principles),
	}
	if err := m.Validate(); err != nil {
		return model.InternalReasoningModel{}, err
	}
	return m, nil
}

func anchorItems(category string, descriptions []string, explanation string, principles []model.FirstPrinciple) []model.AnchoredItem {
	items := make([]model.AnchoredItem, len(descriptions))
	for i, desc := range descriptions {
		items[i] = model.AnchoredItem{
			ID:                    fmt.Sprintf("%s_%d", category, i+1),
			Description:           desc,
			PrincipleDependencies: anchorAll(principles),
			AnchoringExplanation:  explanation,
		}
	}
	return items
}

func anchorAll(principles []model.FirstPrinciple) []string {
	ids := make([]string, len(principles))
	for i, p := range principles {
		ids[i] = p.ID
	}
	return ids
}
