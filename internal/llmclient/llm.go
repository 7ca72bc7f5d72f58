package llmclient

import (
	"context"
	"fmt"
)

// LLMClient is the generative service adapter: one fully assembled prompt in,
// one raw text blob out. No streaming, no multi-turn state.
type LLMClient interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

// ServiceError covers transport failures, empty responses and the service's
// own error signaling. It is fatal for the stage and never retried by the
// pipeline's retry controller.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("service: %s", e.Op)
}

func (e *ServiceError) Unwrap() error { return e.Err }
