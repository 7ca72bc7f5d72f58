package llmclient

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Middleware decorates an LLMClient with cross-cutting concerns.
type Middleware func(LLMClient) LLMClient

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner)).
func Wrap(inner LLMClient, mws ...Middleware) LLMClient {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// WithTimeout bounds every Generate call. The timeout cancels at the network
// call boundary only; parsing of an already-received response is never cut.
func WithTimeout(d time.Duration) Middleware {
	return func(next LLMClient) LLMClient {
		return &timed{next: next, d: d}
	}
}

type timed struct {
	next LLMClient
	d    time.Duration
}

func (t *timed) Name() string { return t.next.Name() }
func (t *timed) Close() error { return t.next.Close() }

func (t *timed) Generate(ctx context.Context, prompt string) (string, error) {
	if t.d <= 0 {
		return t.next.Generate(ctx, prompt)
	}
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.Generate(ctx, prompt)
}

// WithLogging logs each call's latency and outcome.
func WithLogging(log *zap.Logger) Middleware {
	return func(next LLMClient) LLMClient {
		return &logged{next: next, log: log}
	}
}

type logged struct {
	next LLMClient
	log  *zap.Logger
}

func (l *logged) Name() string { return l.next.Name() }
func (l *logged) Close() error { return l.next.Close() }

func (l *logged) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := l.next.Generate(ctx, prompt)
	fields := []zap.Field{
		zap.String("client", l.next.Name()),
		zap.Int("prompt_chars", len(prompt)),
		zap.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		l.log.Warn("generate failed", append(fields, zap.Error(err))...)
		return "", err
	}
	l.log.Debug("generate ok", append(fields, zap.Int("response_chars", len(out)))...)
	return out, nil
}
