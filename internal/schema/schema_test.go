package schema

import (
	"errors"
	"strings"
	"testing"
)

func TestStripFences(t *testing.T) {
	cases := []struct{ in, want string }{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  \n```json\n{\"a\":1}\n```\n  ", "{\"a\":1}"},
	}
	for _, c := range cases {
		if got := StripFences(c.in); got != c.want {
			t.Fatalf("StripFences(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParse_FencedJSON(t *testing.T) {
	obj, err := Parse("```json\n{\"first_principles\":[\"a\"]}\n```")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if _, ok := obj["first_principles"]; !ok {
		t.Fatalf("missing key after fence strip")
	}
}

func TestParse_NonJSONIsParseError(t *testing.T) {
	_, err := Parse("Sure! Here are the principles you asked for.")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestValidate_NamesFirstViolation(t *testing.T) {
	sch := StageSchema{Stage: "reconstruction", Fields: []FieldRule{
		{Name: "definition", Kind: KindString},
		{Name: "reconstruction", Kind: KindArray},
	}}

	obj, err := Parse(`{"reconstruction":["x"]}`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	verr := sch.Validate(obj)
	var se *SchemaError
	if !errors.As(verr, &se) {
		t.Fatalf("expected SchemaError, got %v", verr)
	}
	if se.Field != "definition" {
		t.Fatalf("expected first violation on definition, got %q", se.Field)
	}

	obj, err = Parse(`{"definition":"d","reconstruction":[]}`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	verr = sch.Validate(obj)
	if !errors.As(verr, &se) || se.Field != "reconstruction" || se.Reason != "is empty" {
		t.Fatalf("expected empty-array violation on reconstruction, got %v", verr)
	}
}

func TestValidate_TypeMismatch(t *testing.T) {
	sch := StageSchema{Stage: "decomposition", Fields: []FieldRule{
		{Name: "first_principles", Kind: KindArray},
	}}
	obj, err := Parse(`{"first_principles":"not an array"}`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	verr := sch.Validate(obj)
	var se *SchemaError
	if !errors.As(verr, &se) || se.Reason != "is not an array" {
		t.Fatalf("expected array type violation, got %v", verr)
	}
}

func TestDescribe_ListsEveryField(t *testing.T) {
	sch := StageSchema{Stage: "application", Fields: []FieldRule{
		{Name: "definition", Kind: KindString},
		{Name: "scenarios", Kind: KindArray},
	}}
	desc := sch.Describe()
	for _, want := range []string{"definition", "scenarios", "non-empty array", "non-empty string"} {
		if !strings.Contains(desc, want) {
			t.Fatalf("Describe missing %q:\n%s", want, desc)
		}
	}
}
