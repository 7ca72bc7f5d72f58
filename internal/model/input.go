package model

import (
	"fmt"
	"strings"
)

// Domain is the closed set of knowledge domains the analyzer accepts.
type Domain string

const (
	DomainComputerScience Domain = "computer-science"
	DomainMathematics     Domain = "mathematics"
	DomainPhysics         Domain = "physics"
	DomainBiology         Domain = "biology"
	DomainEconomics       Domain = "economics"
	DomainPhilosophy      Domain = "philosophy"
	DomainEngineering     Domain = "engineering"
	DomainGeneral         Domain = "general"
)

var domains = map[Domain]struct{}{
	DomainComputerScience: {},
	DomainMathematics:     {},
	DomainPhysics:         {},
	DomainBiology:         {},
	DomainEconomics:       {},
	DomainPhilosophy:      {},
	DomainEngineering:     {},
	DomainGeneral:         {},
}

func ParseDomain(s string) (Domain, error) {
	d := Domain(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := domains[d]; !ok {
		return "", fmt.Errorf("unknown domain %q", s)
	}
	return d, nil
}

// Depth controls how many applied items each stage-4 section targets.
type Depth string

const (
	DepthShort      Depth = "short"
	DepthExhaustive Depth = "exhaustive"
)

func ParseDepth(s string) (Depth, error) {
	switch Depth(strings.ToLower(strings.TrimSpace(s))) {
	case DepthShort:
		return DepthShort, nil
	case DepthExhaustive:
		return DepthExhaustive, nil
	default:
		return "", fmt.Errorf("unknown depth %q", s)
	}
}

const (
	minConceptLen = 3
	maxConceptLen = 50
)

// ConceptInput is the immutable request triple. Build it with NewConceptInput
// so every instance has already passed boundary validation.
type ConceptInput struct {
	Concept string `json:"concept"`
	Domain  Domain `json:"domain"`
	Depth   Depth  `json:"depth"`
}

func NewConceptInput(concept, domain, depth string) (ConceptInput, error) {
	c := strings.TrimSpace(concept)
	if len(c) < minConceptLen || len(c) > maxConceptLen {
		return ConceptInput{}, fmt.Errorf("concept must be %d-%d characters, got %d", minConceptLen, maxConceptLen, len(c))
	}
	d, err := ParseDomain(domain)
	if err != nil {
		return ConceptInput{}, err
	}
	dep, err := ParseDepth(depth)
	if err != nil {
		return ConceptInput{}, err
	}
	return ConceptInput{Concept: c, Domain: d, Depth: dep}, nil
}
