// Package schema turns raw generative-service text into validated structured
// values. Parsing strips incidental formatting; validation is declarative,
// one rule set per stage.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseError marks text that is not valid structured data after stripping
// incidental formatting. The retry controller retries it once.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// StripFences removes one leading/trailing fenced code block marker
// (``` or ```json) plus surrounding whitespace, if present.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], "{[") {
		// drop the language tag on the fence line
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Parse strips fences and whitespace and decodes the text as a JSON object.
func Parse(raw string) (map[string]json.RawMessage, error) {
	s := StripFences(raw)
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, &ParseError{Err: err}
	}
	return obj, nil
}
