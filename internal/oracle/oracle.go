// Package oracle is the boundary to the hosted language model. The rest of
// the pipeline treats it as an untrusted, fallible capability: every response
// goes through a schema validator or code extractor, and malformed output
// degrades to a fallback value instead of propagating a parse failure.
package oracle

import (
	"context"
	"errors"
)

// ErrBadResponse marks a response that did not conform to any expected shape.
var ErrBadResponse = errors.New("oracle: response did not match expected schema")

// ErrUnavailable marks a transport-level failure (network, timeout, quota).
var ErrUnavailable = errors.New("oracle: service unavailable")

// Client is the capability injected into planners and the fixer. Implementors
// must honor ctx cancellation; callers bound each request with a timeout.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Stub is a deterministic Client for tests and dry runs.
type Stub struct {
	Response string
	Err      error

	// Prompts records everything the stub was asked, in order.
	Prompts []string
}

func (s *Stub) Complete(_ context.Context, prompt string) (string, error) {
	s.Prompts = append(s.Prompts, prompt)
	if s.Err != nil {
		return "", s.Err
	}
	return s.Response, nil
}
