package prompt

import (
	"principia/internal/model"
)

// Depth steers how many items each applied section targets. The shape of the
// requested JSON never changes with depth, only the count guidance.
func itemRange(d model.Depth) string {
	if d == model.DepthExhaustive {
		return "4 to 6"
	}
	return "2 to 3"
}

const stage1Template = `You are an expert in {{domain}} performing first-principles decomposition at {{depth}} depth.

Decompose the concept "{{concept}}" into its irreducible first principles:
the smallest set of statements that must hold for the concept to exist at all.
Each principle must be a single declarative sentence.

Return STRICT JSON ONLY:
{
  "first_principles": ["string", "..."]
}

Constraints:
- Keep the list between 3 and 7 principles.
- Order principles from most to least fundamental.
- Each principle must be independently stated; no principle may restate another.`

// Stage1Vars feeds the decomposition template. The concept itself enters the
// pipeline here and nowhere else.
type Stage1Vars struct {
	Concept string
	Domain  model.Domain
	Depth   model.Depth
}

func (v Stage1Vars) Template() string { return stage1Template }
func (v Stage1Vars) Vars() map[string]string {
	return map[string]string{
		"concept": v.Concept,
		"domain":  string(v.Domain),
		"depth":   string(v.Depth),
	}
}

const stage2Template = `You are an expert in {{domain}} validating first-principles candidates at {{depth}} depth.

Candidate principles:
{{principles}}

Validate the candidates: merge duplicates and near-duplicates, discard any
statement that is derivable from the others, and attach to each surviving
principle a one-sentence justification of why it is necessary.

Return STRICT JSON ONLY:
{
  "validated_principles": [
    {"statement": "string", "necessity_justification": "string"}
  ]
}

Constraints:
- Preserve the most-to-least-fundamental ordering of the survivors.
- Every surviving principle must be irreducible.`

// Stage2Vars feeds the validation template. Principles is the stage-1 output
// rendered as a JSON array.
type Stage2Vars struct {
	Domain     model.Domain
	Depth      model.Depth
	Principles string
}

func (v Stage2Vars) Template() string { return stage2Template }
func (v Stage2Vars) Vars() map[string]string {
	return map[string]string{
		"domain":     string(v.Domain),
		"depth":      string(v.Depth),
		"principles": v.Principles,
	}
}

const stage3Template = `You are an expert in {{domain}} rebuilding a concept from validated first principles at {{depth}} depth.

Validated principles:
{{validated_principles}}

Reconstruct the concept bottom-up from these principles: state a precise
definition, then the ordered steps by which the principles combine into the
full concept.

Return STRICT JSON ONLY:
{
  "definition": "string",
  "reconstruction": ["string", "..."]
}

Constraints:
- The definition must be derivable from the principles alone.
- Steps must be ordered; each step may rely only on the principles and on
  earlier steps.`

// Stage3Vars feeds the reconstruction template. ValidatedPrinciples is the
// stage-2 output rendered as a JSON array.
type Stage3Vars struct {
	Domain              model.Domain
	Depth               model.Depth
	ValidatedPrinciples string
}

func (v Stage3Vars) Template() string { return stage3Template }
func (v Stage3Vars) Vars() map[string]string {
	return map[string]string{
		"domain":               string(v.Domain),
		"depth":                string(v.Depth),
		"validated_principles": v.ValidatedPrinciples,
	}
}

const stage4Template = `You are an expert in {{domain}} producing the applied layer of a first-principles analysis at {{depth}} depth.

Reconstructed concept:
{{reconstruction}}

Produce the complete applied analysis.

Return STRICT JSON ONLY:
{
  "definition": "string",
  "first_principles": ["string", "..."],
  "reconstruction": ["string", "..."],
  "examples": ["string", "..."],
  "use_cases": ["string", "..."],
  "scenarios": ["string", "..."],
  "assumption_challenges": ["string", "..."]
}

Constraints:
- All seven sections are required and every array must be non-empty.
- Carry the definition and reconstruction steps through unchanged.
- Provide {{item_range}} items in each of examples, use_cases, scenarios and
  assumption_challenges.
- Every item must follow from the reconstructed concept; leave out anything
  the reconstruction does not support.`

// Stage4Vars feeds the application template. Reconstruction is the stage-3
// output rendered as a JSON object.
type Stage4Vars struct {
	Domain         model.Domain
	Depth          model.Depth
	Reconstruction string
}

func (v Stage4Vars) Template() string { return stage4Template }
func (v Stage4Vars) Vars() map[string]string {
	return map[string]string{
		"domain":         string(v.Domain),
		"depth":          string(v.Depth),
		"reconstruction": v.Reconstruction,
		"item_range":     itemRange(v.Depth),
	}
}
