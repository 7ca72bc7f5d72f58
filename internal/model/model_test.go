package model

import (
	"errors"
	"strings"
	"testing"
)

func TestNewConceptInput_Bounds(t *testing.T) {
	if _, err := NewConceptInput("  Algorithm  ", "computer-science", "short"); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
	if _, err := NewConceptInput("ab", "computer-science", "short"); err == nil {
		t.Fatalf("expected rejection of 2-char concept")
	}
	if _, err := NewConceptInput(strings.Repeat("x", 51), "computer-science", "short"); err == nil {
		t.Fatalf("expected rejection of 51-char concept")
	}
	if _, err := NewConceptInput("Algorithm", "alchemy", "short"); err == nil {
		t.Fatalf("expected rejection of unknown domain")
	}
	if _, err := NewConceptInput("Algorithm", "computer-science", "medium"); err == nil {
		t.Fatalf("expected rejection of unknown depth")
	}

	in, err := NewConceptInput(" Sorting ", "Computer-Science", "SHORT")
	if err != nil {
		t.Fatalf("normalization failed: %v", err)
	}
	if in.Concept != "Sorting" || in.Domain != DomainComputerScience || in.Depth != DepthShort {
		t.Fatalf("unexpected normalized input: %+v", in)
	}
}

func validModel() InternalReasoningModel {
	return InternalReasoningModel{
		Definition: "d",
		FirstPrinciples: []FirstPrinciple{
			{ID: "principle_1", Statement: "s1", NecessityJustification: "j1"},
			{ID: "principle_2", Statement: "s2", NecessityJustification: "j2"},
		},
		Reconstruction: []ReconstructionStep{
			{ID: "step_1", StepNumber: 1, Description: "a", PrincipleDependencies: []string{"principle_1"}, LogicalProgression: "p"},
			{ID: "step_2", StepNumber: 2, Description: "b", PrincipleDependencies: []string{"principle_2"}, LogicalProgression: "p"},
		},
		Examples: []AnchoredItem{
			{ID: "example_1", Description: "e", PrincipleDependencies: []string{"principle_1", "principle_2"}, AnchoringExplanation: "x"},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	m := validModel()
	if err := m.Validate(); err != nil {
		t.Fatalf("valid model rejected: %v", err)
	}
}

func TestValidate_DanglingReference(t *testing.T) {
	m := validModel()
	m.Examples[0].PrincipleDependencies = []string{"principle_1", "principle_9"}
	err := m.Validate()
	var ae *AnchoringError
	if !errors.As(err, &ae) || ae.Ref != "principle_9" {
		t.Fatalf("expected dangling-reference AnchoringError, got %v", err)
	}
}

func TestValidate_EmptyDependencySet(t *testing.T) {
	m := validModel()
	m.Examples[0].PrincipleDependencies = nil
	err := m.Validate()
	var ae *AnchoringError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AnchoringError for empty deps, got %v", err)
	}
}

func TestValidate_NonContiguousSteps(t *testing.T) {
	m := validModel()
	m.Reconstruction[1].StepNumber = 3
	if err := m.Validate(); err == nil {
		t.Fatalf("expected rejection of non-contiguous step numbers")
	}

	m = validModel()
	m.Reconstruction[0].StepNumber = 2
	m.Reconstruction[1].StepNumber = 1
	if err := m.Validate(); err == nil {
		t.Fatalf("expected rejection of out-of-order step numbers")
	}
}
