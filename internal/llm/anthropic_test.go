package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "test-key", Model: "claude-sonnet", BaseURL: server.URL})
	require.NoError(t, err)
	return p
}

func anthropicReply(text, stop string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"content":     []map[string]any{{"type": "text", "text": text}},
			"model":       "claude-sonnet-4-20250514",
			"stop_reason": stop,
			"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
		})
	}
}

func anthropicFailure(status int, kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": kind, "message": kind},
		})
	}
}

var summaryRequest = Request{
	System:    "You summarise course material for students.",
	Messages:  []Message{{Role: RoleUser, Content: "Summarise photosynthesis."}},
	MaxTokens: 256,
}

func TestAnthropicProvider_HappyPath(t *testing.T) {
	p := newTestAnthropicProvider(t, anthropicReply("Plants turn light into sugar.", "end_turn"))

	resp, err := p.Generate(context.Background(), summaryRequest)
	require.NoError(t, err)
	assert.Equal(t, "Plants turn light into sugar.", string(resp.Content))
	assert.Equal(t, 50, resp.Usage.InputTokens)
	assert.Equal(t, 80, resp.Usage.TotalTokens)
	assert.Equal(t, StopEnd, resp.StopReason)
	assert.Equal(t, "claude-sonnet-4-20250514", resp.Model)
}

func TestAnthropicProvider_SendsPrompt(t *testing.T) {
	var body map[string]any
	reply := anthropicReply(`{"concepts":[]}`, "end_turn")
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		reply(w, r)
	})

	req := summaryRequest
	req.Schema = &Schema{Name: "concepts", Definition: map[string]any{"type": "object"}}
	_, err := p.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "claude-sonnet-4-20250514", body["model"])
	assert.EqualValues(t, 256, body["max_tokens"])
	system := body["system"].([]any)
	assert.Equal(t, summaryRequest.System, system[0].(map[string]any)["text"])
	assert.Contains(t, body, "output_config")
}

func TestAnthropicProvider_TruncatedStructuredOutput(t *testing.T) {
	p := newTestAnthropicProvider(t, anthropicReply(`{"questions":[{"question":"Which pigment`, "max_tokens"))

	req := summaryRequest
	req.Schema = &Schema{Name: "quiz-questions", Definition: map[string]any{"type": "object"}}
	_, err := p.Generate(context.Background(), req)

	var maxTok *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &maxTok)
	assert.Contains(t, string(maxTok.Content), "Which pigment")
}

func TestAnthropicProvider_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   string
		check  func(error) bool
	}{
		{"rate limit", http.StatusTooManyRequests, "rate_limit_error", func(err error) bool {
			var e *ErrRateLimit
			return errors.As(err, &e)
		}},
		{"server error", http.StatusInternalServerError, "api_error", func(err error) bool {
			var e *ErrProviderUnavailable
			return errors.As(err, &e)
		}},
		{"bad key", http.StatusUnauthorized, "authentication_error", func(err error) bool {
			var e *ErrRequestRejected
			return errors.As(err, &e) && e.StatusCode == http.StatusUnauthorized
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestAnthropicProvider(t, anthropicFailure(tt.status, tt.kind))
			_, err := p.Generate(context.Background(), summaryRequest)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %T: %v", err, err)
		})
	}
}

func TestAnthropicModelMapping(t *testing.T) {
	assert.Equal(t, "claude-sonnet-4-20250514", resolveModel("claude-sonnet", anthropicModels))
	assert.Equal(t, "claude-haiku-4-5-20251001", resolveModel("claude-haiku", anthropicModels))
	assert.Equal(t, "claude-opus-4-1", resolveModel("claude-opus-4-1", anthropicModels))
}

func TestAnthropicProvider_RequiresKey(t *testing.T) {
	_, err := NewAnthropicProvider(AnthropicConfig{Model: "claude-sonnet"})
	assert.Error(t, err)
}
