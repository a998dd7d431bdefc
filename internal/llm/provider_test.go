package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProvider_ReplaysScript(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"concepts":["mitosis"]}`), Usage: Usage{InputTokens: 10, OutputTokens: 5}},
		MockResponse{Err: &ErrRateLimit{}},
	)
	ctx := WithPurpose(context.Background(), PurposeConceptExtract)

	resp, err := mock.Generate(ctx, Request{System: "extract", Messages: []Message{{Role: RoleUser, Content: "chapter 1"}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"concepts":["mitosis"]}`, string(resp.Content))
	assert.Equal(t, 10, resp.Usage.InputTokens)
	assert.Equal(t, StopEnd, resp.StopReason)

	_, err = mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)

	_, err = mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	require.ErrorAs(t, err, &unavail)
	assert.ErrorIs(t, err, errScriptExhausted)

	require.Equal(t, 3, mock.CallCount())
	assert.Equal(t, "extract", mock.Calls[0].System)
	assert.Equal(t, PurposeConceptExtract, mock.Calls[0].Purpose)
	assert.Equal(t, PurposeUnknown, mock.Calls[1].Purpose)
}

func TestMockProvider_AddResponse(t *testing.T) {
	mock := NewMockProvider()
	mock.AddResponse(MockResponse{Content: json.RawMessage(`"ok"`)})
	resp, err := mock.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, `"ok"`, string(resp.Content))
}

func TestPurposeFrom(t *testing.T) {
	assert.Equal(t, PurposeUnknown, PurposeFrom(context.Background()))
	assert.Equal(t, PurposeUnknown, PurposeFrom(WithPurpose(context.Background(), "")))
	assert.Equal(t, PurposeSummary, PurposeFrom(WithPurpose(context.Background(), PurposeSummary)))
}

func TestFinish(t *testing.T) {
	schema := &Schema{Name: "summary", Definition: map[string]any{
		"type":       "object",
		"required":   []any{"summary"},
		"properties": map[string]any{"summary": map[string]any{"type": "string"}},
	}}

	t.Run("plain text passes through", func(t *testing.T) {
		resp, err := finish(Request{}, json.RawMessage("Osmosis moves water."), Usage{InputTokens: 3, OutputTokens: 4}, "m", StopMaxTokens)
		require.NoError(t, err)
		assert.Equal(t, "Osmosis moves water.", string(resp.Content))
		assert.Equal(t, 7, resp.Usage.TotalTokens)
		assert.Equal(t, StopMaxTokens, resp.StopReason)
	})
	t.Run("provider total kept", func(t *testing.T) {
		resp, err := finish(Request{}, json.RawMessage("x"), Usage{InputTokens: 3, OutputTokens: 4, TotalTokens: 9}, "m", StopEnd)
		require.NoError(t, err)
		assert.Equal(t, 9, resp.Usage.TotalTokens)
	})
	t.Run("structured output validated", func(t *testing.T) {
		resp, err := finish(Request{Schema: schema}, json.RawMessage("```json\n{\"summary\":\"cells divide\"}\n```"), Usage{}, "m", StopEnd)
		require.NoError(t, err)
		assert.JSONEq(t, `{"summary":"cells divide"}`, string(resp.Content))
	})
	t.Run("truncated structured output", func(t *testing.T) {
		_, err := finish(Request{Schema: schema}, json.RawMessage(`{"summary":"cel`), Usage{}, "m", StopMaxTokens)
		var maxTok *ErrMaxTokensExceeded
		assert.ErrorAs(t, err, &maxTok)
	})
	t.Run("schema mismatch", func(t *testing.T) {
		_, err := finish(Request{Schema: schema}, json.RawMessage(`{"text":"x"}`), Usage{}, "m", StopEnd)
		var invalid *ErrInvalidResponse
		assert.ErrorAs(t, err, &invalid)
	})
}

func TestClassifyStatus(t *testing.T) {
	cause := errors.New("upstream")
	tests := []struct {
		status int
		want   any
	}{
		{0, &ErrProviderUnavailable{}},
		{http.StatusBadRequest, &ErrRequestRejected{}},
		{http.StatusForbidden, &ErrRequestRejected{}},
		{http.StatusTooManyRequests, &ErrRateLimit{}},
		{http.StatusInternalServerError, &ErrProviderUnavailable{}},
		{http.StatusGatewayTimeout, &ErrProviderUnavailable{}},
	}
	for _, tt := range tests {
		err := classifyStatus(tt.status, cause)
		assert.IsType(t, tt.want, err, "status %d", tt.status)
		assert.ErrorIs(t, err, cause, "status %d", tt.status)
	}
}

func TestClassifyRetry(t *testing.T) {
	tests := []struct {
		err     error
		verdict retryVerdict
		reason  string
	}{
		{context.Canceled, giveUp, "context"},
		{&ErrProviderUnavailable{Err: context.DeadlineExceeded}, giveUp, "context"},
		{&ErrMaxTokensExceeded{}, giveUp, "max_tokens"},
		{&ErrRequestRejected{StatusCode: 400}, giveUp, "rejected"},
		{&ErrInvalidResponse{}, retryOnce, "invalid_response"},
		{&ErrRateLimit{}, retryTransient, "rate_limit"},
		{&ErrProviderUnavailable{Err: errors.New("reset")}, retryTransient, "unavailable"},
	}
	for _, tt := range tests {
		verdict, reason := classifyRetry(tt.err)
		assert.Equal(t, tt.verdict, verdict, "%v", tt.err)
		assert.Equal(t, tt.reason, reason, "%v", tt.err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"gemini with key", Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "g"}}, false},
		{"groq without key", Config{Provider: "groq"}, true},
		{"openrouter with key", Config{Provider: "openrouter", OpenRouter: CompatConfig{APIKey: "sk-or"}}, false},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "llama"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() = %v", err)
		})
	}
}

func TestUnavailableProvider(t *testing.T) {
	cause := errors.New("no api key")
	p := Unavailable(cause)
	_, err := p.Generate(context.Background(), Request{})
	var unavailable *ErrProviderUnavailable
	require.ErrorAs(t, err, &unavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "unavailable", p.Name())
}
