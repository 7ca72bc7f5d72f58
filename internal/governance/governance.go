// Package governance prepends the immutable policy preamble to every stage
// prompt and rejects task prompts that contradict the policy.
package governance

import (
	"fmt"
	"regexp"
)

// Preamble is the policy text placed, verbatim, before every task prompt.
// It ends with a blank line so the guarded prompt is exactly
// Preamble + task with nothing inserted between them.
const Preamble = `[POLICY]
You operate under a fixed analysis policy:
- Ground every statement in the concept under analysis and the provided input. Never fabricate facts, sources, or principles.
- If the input is insufficient to support a statement, leave it out rather than speculating.
- First principles must be irreducible and carry an explicit necessity justification.
- Follow the requested output structure exactly. Emit nothing outside it.

`

// GovernanceViolation marks a task prompt that textually contradicts the
// policy. It is fatal and never retried.
type GovernanceViolation struct {
	Rule    string
	Matched string
}

func (e *GovernanceViolation) Error() string {
	return fmt.Sprintf("governance: prompt violates policy rule %q (matched %q)", e.Rule, e.Matched)
}

type rule struct {
	name string
	re   *regexp.Regexp
}

// Task prompts never carry these phrasings; their presence means the prompt
// is trying to steer the service away from the policy.
var rules = []rule{
	{"ignore-constraints", regexp.MustCompile(`(?i)\bignore\b.{0,40}\b(instruction|constraint|rule|polic|preamble)`)},
	{"disregard-policy", regexp.MustCompile(`(?i)\bdisregard\b.{0,40}\b(instruction|constraint|rule|polic)`)},
	{"bypass-guard", regexp.MustCompile(`(?i)\bbypass\b.{0,40}\b(polic|constraint|guard|filter)`)},
	{"fabricate", regexp.MustCompile(`(?i)\b(fabricate|make up|make something up)\b`)},
	{"invent-content", regexp.MustCompile(`(?i)\binvent\b.{0,40}\b(fact|data|principle|source|citation|evidence)`)},
	// Later stage prompts embed model-generated text verbatim, so this rule
	// must match only instruction forms of guessing, never the bare word
	// inside a quoted statement.
	{"guess", regexp.MustCompile(`(?i)\b(just|simply|please)\s+guess\b|\b(make|take)\s+a\s+guess\b|(^|[.!?:]\s+)guess\b`)},
	{"no-rules-roleplay", regexp.MustCompile(`(?i)\bpretend\b.{0,40}\b(no (rules|polic)|unrestricted)`)},
}

// Guard validates the task prompt against the policy rules and, on
// acceptance, returns the preamble concatenated before the exact task
// prompt. It is pure and idempotent with respect to its inputs.
func Guard(taskPrompt string) (string, error) {
	for _, r := range rules {
		if m := r.re.FindString(taskPrompt); m != "" {
			return "", &GovernanceViolation{Rule: r.name, Matched: m}
		}
	}
	return Preamble + taskPrompt, nil
}
