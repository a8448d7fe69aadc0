// Package llm talks to hosted language models. Every provider returns JSON
// that has been checked against the caller's schema, and NewProvider wraps
// the chosen backend with retries and request recording.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one completion.
type Provider interface {
	// Generate sends req and returns the model output. When req.Schema is
	// set the output has already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the model the provider was configured with.
	ModelID() string
}

// Request is a single completion request.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, asks the backend for structured output and
	// validates the reply.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the sender of a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema document.
type Schema struct {
	// Name is kebab-case. Backends use it as the tool or schema name.
	Name        string
	Description string
	Definition  map[string]any
}

// Stop reasons reported in Response.StopReason.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Response is the model output.
type Response struct {
	// Content is the JSON document, or the raw text when no schema was sent.
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string
}

// Usage counts tokens for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserPrompt builds a single-turn request.
func UserPrompt(system, prompt string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}
}

// finish validates content against req.Schema and assembles the Response.
func finish(req Request, content json.RawMessage, usage Usage, model, stop string) (*Response, error) {
	if stop == StopMaxTokens && req.Schema != nil {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}
	if err := validateResponse(req.Schema, content); err != nil {
		return nil, err
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return &Response{Content: content, Usage: usage, Model: model, StopReason: stop}, nil
}
