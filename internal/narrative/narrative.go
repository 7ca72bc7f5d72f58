// Package narrative maps a fully anchored internal reasoning model to a
// presentation-only view model. Rendering is a pure function: no clock, no
// randomness, no content invention.
package narrative

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"principia/internal/model"
)

// Audience selects the phrasing template set. It never changes the facts,
// counts or ordering of entities.
type Audience string

const (
	AudienceStudents      Audience = "students"
	AudienceProfessionals Audience = "professionals"
	AudienceGeneral       Audience = "general"
)

func ParseAudience(s string) (Audience, error) {
	switch Audience(strings.ToLower(strings.TrimSpace(s))) {
	case AudienceStudents:
		return AudienceStudents, nil
	case AudienceProfessionals:
		return AudienceProfessionals, nil
	case AudienceGeneral, "":
		return AudienceGeneral, nil
	default:
		return "", fmt.Errorf("unknown audience %q", s)
	}
}

// Complexity is recorded in the metadata; it does not alter derivation.
type Complexity string

const (
	ComplexityIntroductory Complexity = "introductory"
	ComplexityIntermediate Complexity = "intermediate"
	ComplexityAdvanced     Complexity = "advanced"
)

func ParseComplexity(s string) (Complexity, error) {
	switch Complexity(strings.ToLower(strings.TrimSpace(s))) {
	case ComplexityIntroductory:
		return ComplexityIntroductory, nil
	case ComplexityIntermediate, "":
		return ComplexityIntermediate, nil
	case ComplexityAdvanced:
		return ComplexityAdvanced, nil
	default:
		return "", fmt.Errorf("unknown complexity %q", s)
	}
}

// RenderError covers an absent internal model or a derivation failure that
// cannot be resolved within the closed narrative contract.
type RenderError struct {
	Reason string
}

func (e *RenderError) Error() string { return "render: " + e.Reason }

// Section is one ordered block of the narrative.
type Section struct {
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

// Metadata describes how the narrative was phrased. The two scores come from
// a fixed lookup keyed by audience, not from inspecting content.
type Metadata struct {
	TargetAudience         string  `json:"target_audience"`
	ComplexityLevel        string  `json:"complexity_level"`
	NarrativeStyle         string  `json:"narrative_style"`
	PrincipleFidelityScore float64 `json:"principle_fidelity_score"`
	AccessibilityScore     float64 `json:"accessibility_score"`
}

// ViewModel is the ordered, read-only projection of the internal model. It
// carries no identifiers and no principle references.
type ViewModel struct {
	Sections []Section `json:"sections"`
	Metadata Metadata  `json:"metadata"`
	Warnings []string  `json:"warnings,omitempty"`
}

// phrasing is the closed set of audience-specific templates.
type phrasing struct {
	style          string
	definitionLead string
	principleLead  string
	stepLead       string
	anchorLead     string
	sectionTitles  map[string]string
}

var phrasings = map[Audience]phrasing{
	AudienceStudents: {
		style:          "guided",
		definitionLead: "Let's start with what it is: %s",
		principleLead:  "Core idea %d: %s It matters because %s",
		stepLead:       "Step %d: %s (%s).",
		anchorLead:     "%s This rests on the ideas that %s.",
		sectionTitles:  defaultTitles,
	},
	AudienceProfessionals: {
		style:          "technical",
		definitionLead: "Definition: %s",
		principleLead:  "Principle %d: %s Necessity: %s",
		stepLead:       "%d. %s (%s).",
		anchorLead:     "%s Grounded in: %s.",
		sectionTitles:  defaultTitles,
	},
	AudienceGeneral: {
		style:          "conversational",
		definitionLead: "In plain terms, %s",
		principleLead:  "Fundamental %d: %s This holds because %s",
		stepLead:       "Step %d: %s, relying on %s.",
		anchorLead:     "%s It depends on the facts that %s.",
		sectionTitles:  defaultTitles,
	},
}

var defaultTitles = map[string]string{
	"definition":            "Definition",
	"first_principles":      "First Principles",
	"reconstruction":        "Reconstruction",
	"examples":              "Examples",
	"use_cases":             "Use Cases",
	"scenarios":             "Scenarios",
	"assumption_challenges": "Assumption Challenges",
}

var scores = map[Audience]struct{ fidelity, accessibility float64 }{
	AudienceStudents:      {0.90, 0.95},
	AudienceProfessionals: {0.95, 0.85},
	AudienceGeneral:       {0.85, 0.90},
}

// maxAnchorsNarrated bounds narrative density: each item narrates at most the
// first two dependency principles, in dependency-array order.
const maxAnchorsNarrated = 2

// Render maps the internal model to a view model. Identical arguments always
// yield byte-for-byte identical output.
func Render(m *model.InternalReasoningModel, audience Audience, complexity Complexity) (ViewModel, error) {
	if m == nil {
		return ViewModel{}, &RenderError{Reason: "internal model is absent"}
	}
	ph, ok := phrasings[audience]
	if !ok {
		return ViewModel{}, &RenderError{Reason: fmt.Sprintf("no phrasing set for audience %q", audience)}
	}
	sc := scores[audience]

	statements := make(map[string]string, len(m.FirstPrinciples))
	for _, p := range m.FirstPrinciples {
		statements[p.ID] = p.Statement
	}

	var warnings []string

	principlePara := make([]string, 0, len(m.FirstPrinciples))
	for i, p := range m.FirstPrinciples {
		principlePara = append(principlePara, fmt.Sprintf(ph.principleLead, i+1, sentence(p.Statement), clause(p.NecessityJustification)+"."))
	}

	// Re-sort by step_number: guards against upstream ordering drift. Step
	// numbers are unique per the model invariant, so the order is total.
	steps := make([]model.ReconstructionStep, len(m.Reconstruction))
	copy(steps, m.Reconstruction)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].StepNumber < steps[j].StepNumber })

	stepPara := make([]string, 0, len(steps))
	for _, s := range steps {
		stepPara = append(stepPara, fmt.Sprintf(ph.stepLead, s.StepNumber, trimDot(s.Description), clause(s.LogicalProgression)))
	}

	sections := []Section{
		{Title: ph.sectionTitles["definition"], Paragraphs: []string{fmt.Sprintf(ph.definitionLead, clause(m.Definition)+".")}},
		{Title: ph.sectionTitles["first_principles"], Paragraphs: principlePara},
		{Title: ph.sectionTitles["reconstruction"], Paragraphs: stepPara},
	}

	for _, group := range []struct {
		key   string
		items []model.AnchoredItem
	}{
		{"examples", m.Examples},
		{"use_cases", m.UseCases},
		{"scenarios", m.Scenarios},
		{"assumption_challenges", m.AssumptionChallenges},
	} {
		paras := make([]string, 0, len(group.items))
		for _, it := range group.items {
			anchors := resolveAnchors(it.PrincipleDependencies, statements)
			if anchors == "" {
				// Unrenderable within the closed contract: omit and flag
				// rather than place it somewhere by conjecture.
				warnings = append(warnings, fmt.Sprintf("omitted one %s entry: no resolvable principle statements", group.key))
				continue
			}
			paras = append(paras, fmt.Sprintf(ph.anchorLead, sentence(it.Description), anchors))
		}
		sections = append(sections, Section{Title: ph.sectionTitles[group.key], Paragraphs: paras})
	}

	return ViewModel{
		Sections: sections,
		Metadata: Metadata{
			TargetAudience:         string(audience),
			ComplexityLevel:        string(complexity),
			NarrativeStyle:         ph.style,
			PrincipleFidelityScore: sc.fidelity,
			AccessibilityScore:     sc.accessibility,
		},
		Warnings: warnings,
	}, nil
}

// resolveAnchors joins the statements of at most the first two dependency
// principles, in dependency-array order.
func resolveAnchors(deps []string, statements map[string]string) string {
	resolved := make([]string, 0, maxAnchorsNarrated)
	for _, id := range deps {
		st, ok := statements[id]
		if !ok {
			continue
		}
		resolved = append(resolved, clause(st))
		if len(resolved) == maxAnchorsNarrated {
			break
		}
	}
	return strings.Join(resolved, ", and ")
}

// trimDot trims whitespace and a trailing period without changing case.
func trimDot(s string) string {
	return strings.TrimSuffix(strings.TrimSpace(s), ".")
}

// sentence normalizes text to end with terminal punctuation.
func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return s
	}
	return s + "."
}

// clause normalizes text for embedding mid-sentence: trimmed, no trailing
// period, leading letter lowered unless it looks like a proper noun
// (a second uppercase letter in the first word).
func clause(s string) string {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "."))
	if s == "" {
		return s
	}
	first, rest, _ := strings.Cut(s, " ")
	r := []rune(first)
	tail := string(r[1:])
	if unicode.IsUpper(r[0]) && tail == strings.ToLower(tail) {
		r[0] = unicode.ToLower(r[0])
		first = string(r)
	}
	if rest == "" {
		return first
	}
	return first + " " + rest
}
