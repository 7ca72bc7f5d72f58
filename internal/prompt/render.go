// Package prompt builds stage-specific task prompts from placeholder
// templates. Placeholders are the only template construct; there is no
// control flow. Each stage's substitution keys are a typed record, so a
// missing key cannot survive to the rendered prompt.
package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{\{([a-z_]+)\}\}`)

// Render substitutes {{key}} placeholders in tmpl from vars. Every
// placeholder must have a value; a leftover placeholder is an error, never
// an artifact in the rendered prompt.
func Render(tmpl string, vars map[string]string) (string, error) {
	var missing []string
	out := placeholderRe.ReplaceAllStringFunc(tmpl, func(ph string) string {
		key := ph[2 : len(ph)-2]
		v, ok := vars[key]
		if !ok {
			missing = append(missing, key)
			return ph
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt: unresolved placeholders: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// StageVars is a typed substitution record for one stage template.
type StageVars interface {
	Template() string
	Vars() map[string]string
}

// Build renders the stage task prompt from its typed record.
func Build(v StageVars) (string, error) {
	return Render(v.Template(), v.Vars())
}
