package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studypath/internal/store"
)

func TestUsageByPurpose(t *testing.T) {
	events := []store.LLMRequestEvent{
		{LLMRequestEventData: store.LLMRequestEventData{Purpose: "summary", InputTokens: 10, OutputTokens: 5, LatencyMs: 100, Success: true}},
		{LLMRequestEventData: store.LLMRequestEventData{Purpose: "quiz-generate", Model: "gpt-4o-mini", InputTokens: 20, OutputTokens: 40, LatencyMs: 300, Success: true}},
		{LLMRequestEventData: store.LLMRequestEventData{Purpose: "summary", InputTokens: 30, LatencyMs: 200}},
	}
	got := usageByPurpose(events)
	require.Len(t, got, 2)

	assert.Equal(t, "quiz-generate", got[0].Purpose)
	assert.Equal(t, 1, got[0].Calls)
	assert.Equal(t, int64(300), got[0].AvgLatencyMs())
	assert.InDelta(t, (20*0.15+40*0.6)/1e6, got[0].CostUSD, 1e-12)
	assert.Zero(t, got[0].Unpriced)

	s := got[1]
	assert.Equal(t, "summary", s.Purpose)
	assert.Equal(t, 2, s.Calls)
	assert.Equal(t, 1, s.Failures)
	assert.Equal(t, 40, s.InputTokens)
	assert.Equal(t, 5, s.OutputTokens)
	assert.Equal(t, int64(150), s.AvgLatencyMs())
	assert.Equal(t, 2, s.Unpriced)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", truncate("héllo", 4))
	assert.Equal(t, "hi", truncate("hi", 4))
}
