package oracle

import (
	"context"
	"fmt"
	"time"

	genai "google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

// Gemini is a thin wrapper around the official genai client with bounded
// retries. One request is in flight per file at a time; serialization is the
// caller's job.
type Gemini struct {
	cli   *genai.Client
	model string
}

// NewGemini creates a client for the given API key. An empty model selects
// the default.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if model == "" {
		model = defaultModel
	}
	return &Gemini{cli: cli, model: model}, nil
}

// Complete sends the prompt and returns the model's text. Transient failures
// are retried up to three times with exponential backoff; ctx cancellation
// stops retrying immediately.
func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			case <-time.After(time.Duration(300*(1<<attempt)) * time.Millisecond):
			}
		}

		resp, err := g.cli.Models.GenerateContent(ctx, g.model,
			[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
			nil,
		)
		if err != nil {
			lastErr = err
			continue
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			lastErr = ErrBadResponse
			continue
		}
		return resp.Candidates[0].Content.Parts[0].Text, nil
	}
	return "", fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}
