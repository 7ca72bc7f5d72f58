package llmclient

import (
	"context"
	"strings"

	genai "google.golang.org/genai"
)

// formatDirective is appended, never interleaved, after the governed prompt
// so the provenance of every directive in the final prompt is unambiguous.
const formatDirective = "\n\n[OUTPUT_FORMAT]\nRespond with pure JSON only: a single JSON object, no prose before or after it, no markdown fences."

// GeminiClient is a thin wrapper around the official genai client. It only
// covers the API call itself; cross-cutting concerns (logging, timeouts) are
// applied via Middleware.
type GeminiClient struct {
	cli         *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

// NewGeminiClient constructs the one process-wide client. The genai SDK reads
// GEMINI_API_KEY from the environment.
func NewGeminiClient(ctx context.Context, modelID string, temperature float64, maxOutputTokens int) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, &ServiceError{Op: "create client", Err: err}
	}
	if maxOutputTokens <= 0 {
		maxOutputTokens = 8192
	}
	return &GeminiClient{
		cli:         cli,
		model:       modelID,
		temperature: float32(temperature),
		maxTokens:   int32(maxOutputTokens),
	}, nil
}

func (g *GeminiClient) Name() string { return "gemini:" + g.model }
func (g *GeminiClient) Close() error { return nil }

// Generate sends prompt + the strict output-format directive and returns the
// raw response text.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	full := prompt + formatDirective

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			Temperature:      genai.Ptr(g.temperature),
			MaxOutputTokens:  g.maxTokens,
		},
	)
	if err != nil {
		return "", &ServiceError{Op: "generate", Err: err}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &ServiceError{Op: "empty response"}
	}
	txt := resp.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(txt) == "" {
		return "", &ServiceError{Op: "empty response"}
	}
	return txt, nil
}
