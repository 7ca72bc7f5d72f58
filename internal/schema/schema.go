package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is the JSON shape a field must have.
type Kind int

const (
	KindString Kind = iota
	KindArray
)

func (k Kind) String() string {
	if k == KindArray {
		return "non-empty array"
	}
	return "non-empty string"
}

// FieldRule is one required field of a stage response.
type FieldRule struct {
	Name string
	Kind Kind
}

// StageSchema is the declarative rule set for one stage. Rules are checked
// in order; validation reports the first violated rule.
type StageSchema struct {
	Stage  string
	Fields []FieldRule
}

// SchemaError names the first missing or malformed field of a response that
// parsed but does not satisfy its stage schema.
type SchemaError struct {
	Stage  string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: stage %s: field %q %s", e.Stage, e.Field, e.Reason)
}

// Validate checks obj against the schema and returns the first violation.
func (s StageSchema) Validate(obj map[string]json.RawMessage) error {
	for _, f := range s.Fields {
		raw, ok := obj[f.Name]
		if !ok {
			return &SchemaError{Stage: s.Stage, Field: f.Name, Reason: "is missing"}
		}
		switch f.Kind {
		case KindString:
			var v string
			if err := json.Unmarshal(raw, &v); err != nil {
				return &SchemaError{Stage: s.Stage, Field: f.Name, Reason: "is not a string"}
			}
			if strings.TrimSpace(v) == "" {
				return &SchemaError{Stage: s.Stage, Field: f.Name, Reason: "is empty"}
			}
		case KindArray:
			var v []json.RawMessage
			if err := json.Unmarshal(raw, &v); err != nil {
				return &SchemaError{Stage: s.Stage, Field: f.Name, Reason: "is not an array"}
			}
			if len(v) == 0 {
				return &SchemaError{Stage: s.Stage, Field: f.Name, Reason: "is empty"}
			}
		}
	}
	return nil
}

// Describe restates the schema for inclusion in a retry prompt.
func (s StageSchema) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Required fields for stage %s:\n", s.Stage)
	for _, f := range s.Fields {
		fmt.Fprintf(&b, "- %q: %s\n", f.Name, f.Kind)
	}
	return strings.TrimRight(b.String(), "\n")
}
