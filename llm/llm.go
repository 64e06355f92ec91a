// Package llm talks to the hosted language model that writes SQL and
// summarizes query results.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the model answered without any text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// ErrNotConfigured is returned by Unconfigured for every call.
var ErrNotConfigured = errors.New("GEMINI_API_KEY is not set")

// Model turns a prompt into text. Implementations must be safe for
// concurrent use.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Unconfigured stands in for the model when no API key is available, so the
// server still starts and the failure surfaces per request.
type Unconfigured struct{}

func (Unconfigured) Generate(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

// Func adapts a plain function to the Model interface.
type Func func(ctx context.Context, prompt string) (string, error)

func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
