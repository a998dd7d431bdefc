package llm

import (
	"context"
	"encoding/json"
)

// Provider generates text or schema-checked JSON. Implementations wrap one
// vendor API; RetryProvider, LoggingProvider and TimeoutProvider decorate
// them.
type Provider interface {
	// Generate returns validated JSON in Content when req.Schema is set,
	// raw text otherwise.
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
	// Name labels logs, metrics and audit events.
	Name() string
}

// Request is a single-turn prompt. Temperature 0 means the provider default
// is left alone.
type Request struct {
	System      string
	Messages    []Message
	Schema      *Schema // nil asks for plain text
	MaxTokens   int
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a JSON Schema the reply must satisfy. Name is kebab-case, e.g.
// "quiz-questions"; it is sent as the OpenAI schema name and keys the
// compiled-schema cache together with Definition.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a provider reply. Content holds the extracted JSON object for
// schema requests and the model's text otherwise.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string // model that actually served the call
	StopReason string // StopEnd or StopMaxTokens
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// finish turns a provider's raw output into a Response. Output cut off
// by the token limit cannot be valid JSON for a schema request, so it is
// reported as ErrMaxTokensExceeded instead of a validation failure.
func finish(req Request, raw json.RawMessage, usage Usage, model, stop string) (*Response, error) {
	if req.Schema != nil && stop == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: raw}
	}
	content, err := validateResponse(req.Schema, raw)
	if err != nil {
		return nil, err
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return &Response{Content: content, Usage: usage, Model: model, StopReason: stop}, nil
}
