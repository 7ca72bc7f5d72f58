package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"principia/internal/governance"
	"principia/internal/schema"
	"principia/internal/util/jsonutil"
)

// retryPrompt computes the second attempt's task prompt as a pure function
// of the original prompt, the violation, and the stage schema. No state is
// carried between attempts besides these three values.
func retryPrompt(original, violation string, sch schema.StageSchema) string {
	return original +
		"\n\n[RETRY]\nYour previous response was rejected: " + violation +
		"\n" + sch.Describe() +
		"\nReturn corrected JSON that satisfies every requirement above."
}

// retryable reports whether a stage failure may be re-attempted. Only parse
// and schema violations qualify; governance and service failures are fatal
// immediately.
func retryable(err error) bool {
	var pe *schema.ParseError
	var se *schema.SchemaError
	return errors.As(err, &pe) || errors.As(err, &se)
}

// runStage executes one stage with the retry-with-feedback contract: the
// first parse or schema violation triggers exactly one more attempt whose
// prompt echoes the violation and restates the schema. A second failure, or
// any non-retryable failure, is fatal for the stage.
func (o *Orchestrator) runStage(ctx context.Context, def stageDef, taskPrompt string, out any) error {
	current := taskPrompt
	var lastErr error
	for n := 0; n <= o.maxRetries; n++ {
		if n > 0 {
			current = retryPrompt(taskPrompt, lastErr.Error(), def.sch)
			o.log.Info("retrying stage",
				zap.Int("step", def.step),
				zap.String("stage", def.name),
				zap.String("violation", lastErr.Error()))
		}
		err := o.attempt(ctx, def, current, out)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

// attempt is one full pass: guard, invoke, parse, validate, decode.
func (o *Orchestrator) attempt(ctx context.Context, def stageDef, taskPrompt string, out any) error {
	governed, err := governance.Guard(taskPrompt)
	if err != nil {
		return err
	}
	raw, err := o.llm.Generate(ctx, governed)
	if err != nil {
		return err
	}
	obj, err := schema.Parse(raw)
	if err != nil {
		return err
	}
	if err := def.sch.Validate(obj); err != nil {
		return err
	}
	return decodeInto(def, obj, out)
}

// encodePromptInput renders a stage output for inclusion in the next stage's
// template.
func encodePromptInput(v any) (string, error) {
	b, err := jsonutil.MarshalNoEscapeIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode stage input: %w", err)
	}
	return string(b), nil
}
