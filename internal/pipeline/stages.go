package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"

	"principia/internal/anchor"
	"principia/internal/schema"
)

// stageDef binds a stage's step number and name to its declarative schema.
type stageDef struct {
	step int
	name string
	sch  schema.StageSchema
}

var (
	stageDecomposition = stageDef{
		step: 1,
		name: "decomposition",
		sch: schema.StageSchema{Stage: "decomposition", Fields: []schema.FieldRule{
			{Name: "first_principles", Kind: schema.KindArray},
		}},
	}
	stageValidation = stageDef{
		step: 2,
		name: "validation",
		sch: schema.StageSchema{Stage: "validation", Fields: []schema.FieldRule{
			{Name: "validated_principles", Kind: schema.KindArray},
		}},
	}
	stageReconstruction = stageDef{
		step: 3,
		name: "reconstruction",
		sch: schema.StageSchema{Stage: "reconstruction", Fields: []schema.FieldRule{
			{Name: "definition", Kind: schema.KindString},
			{Name: "reconstruction", Kind: schema.KindArray},
		}},
	}
	stageApplication = stageDef{
		step: 4,
		name: "application",
		sch: schema.StageSchema{Stage: "application", Fields: []schema.FieldRule{
			{Name: "definition", Kind: schema.KindString},
			{Name: "first_principles", Kind: schema.KindArray},
			{Name: "reconstruction", Kind: schema.KindArray},
			{Name: "examples", Kind: schema.KindArray},
			{Name: "use_cases", Kind: schema.KindArray},
			{Name: "scenarios", Kind: schema.KindArray},
			{Name: "assumption_challenges", Kind: schema.KindArray},
		}},
	}
)

// Stage payloads. Each stage's validated output is the exclusive input to
// the next stage's template.

type Stage1Out struct {
	FirstPrinciples []string `json:"first_principles"`
}

type Stage2Out struct {
	ValidatedPrinciples []anchor.Principle `json:"validated_principles"`
}

type Stage3Out struct {
	Definition     string   `json:"definition"`
	Reconstruction []string `json:"reconstruction"`
}

type Stage4Out struct {
	Definition           string   `json:"definition"`
	FirstPrinciples      []string `json:"first_principles"`
	Reconstruction       []string `json:"reconstruction"`
	Examples             []string `json:"examples"`
	UseCases             []string `json:"use_cases"`
	Scenarios            []string `json:"scenarios"`
	AssumptionChallenges []string `json:"assumption_challenges"`
}

// decodeInto maps a schema-validated object onto the typed stage payload.
// A type mismatch at this point is still a schema violation and stays
// retryable.
func decodeInto(def stageDef, obj map[string]json.RawMessage, out any) error {
	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		field := "response"
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) && te.Field != "" {
			field = te.Field
		}
		return &schema.SchemaError{Stage: def.name, Field: field, Reason: fmt.Sprintf("does not match the expected type (%v)", err)}
	}
	return nil
}
