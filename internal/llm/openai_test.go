package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)
	return p
}

func openaiReply(content, finish string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": finish,
			}},
			"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
		})
	}
}

var conceptSchema = &Schema{
	Name: "concepts",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"concepts"},
		"properties": map[string]any{
			"concepts": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
	},
}

func TestOpenAIProvider_StructuredOutput(t *testing.T) {
	var sent struct {
		Messages       []openai.ChatCompletionMessage `json:"messages"`
		ResponseFormat *struct {
			Type       string `json:"type"`
			JSONSchema struct {
				Name   string          `json:"name"`
				Schema json.RawMessage `json:"schema"`
				Strict bool            `json:"strict"`
			} `json:"json_schema"`
		} `json:"response_format"`
	}
	reply := openaiReply(`{"concepts":["osmosis","diffusion"]}`, "stop")
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		reply(w, r)
	})

	resp, err := p.Generate(context.Background(), Request{
		System:    "You extract concepts from lecture notes.",
		Messages:  []Message{{Role: RoleUser, Content: "Cells move water by osmosis."}},
		Schema:    conceptSchema,
		MaxTokens: 256,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"concepts":["osmosis","diffusion"]}`, string(resp.Content))
	assert.Equal(t, 40, resp.Usage.InputTokens)
	assert.Equal(t, 65, resp.Usage.TotalTokens)
	assert.Equal(t, StopEnd, resp.StopReason)

	require.Len(t, sent.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, sent.Messages[0].Role)
	require.NotNil(t, sent.ResponseFormat)
	assert.Equal(t, "concepts", sent.ResponseFormat.JSONSchema.Name)
	assert.True(t, sent.ResponseFormat.JSONSchema.Strict)
	assert.Contains(t, string(sent.ResponseFormat.JSONSchema.Schema), `"concepts"`)
}

func TestOpenAIProvider_SchemaViolation(t *testing.T) {
	p := newTestOpenAIProvider(t, openaiReply(`{"topics":[]}`, "stop"))

	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "extract"}},
		Schema:    conceptSchema,
		MaxTokens: 64,
	})
	var invalid *ErrInvalidResponse
	assert.ErrorAs(t, err, &invalid)
}

func TestOpenAIProvider_LengthCutoff(t *testing.T) {
	p := newTestOpenAIProvider(t, openaiReply(`{"concepts":["osmo`, "length"))

	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "extract"}},
		Schema:    conceptSchema,
		MaxTokens: 8,
	})
	var maxTok *ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &maxTok)
}

func TestOpenAIProvider_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"rate limit", http.StatusTooManyRequests, `{"error":{"type":"tokens","message":"slow down","code":"rate_limit_exceeded"}}`, func(err error) bool {
			var e *ErrRateLimit
			return errors.As(err, &e)
		}},
		{"server error", http.StatusInternalServerError, `{"error":{"type":"server_error","message":"boom"}}`, func(err error) bool {
			var e *ErrProviderUnavailable
			return errors.As(err, &e)
		}},
		{"unknown model", http.StatusNotFound, `{"error":{"type":"invalid_request_error","message":"no such model"}}`, func(err error) bool {
			var e *ErrRequestRejected
			return errors.As(err, &e) && e.StatusCode == http.StatusNotFound
		}},
		{"proxy html page", http.StatusBadGateway, `<html>bad gateway</html>`, func(err error) bool {
			var e *ErrProviderUnavailable
			return errors.As(err, &e)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := p.Generate(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "test"}},
				MaxTokens: 100,
			})
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %T: %v", err, err)
		})
	}
}

func TestOpenAIProvider_Names(t *testing.T) {
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4o", BaseURL: "https://openrouter.ai/api/v1"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", p.ModelID())
	assert.Equal(t, "openai", p.Name())

	p.name = "groq"
	assert.Equal(t, "groq", p.Name())
}
