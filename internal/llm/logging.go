package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/studypath/internal/logger"
	"github.com/abhisek/studypath/internal/metrics"
	"github.com/abhisek/studypath/internal/store"
)

// maxAuditBody caps each stored prompt and reply. Retrieval context can
// make prompts large and the audit log only needs enough to debug them.
const maxAuditBody = 32 << 10

// LoggingProvider records every call in the audit log, the request
// metrics and the structured log.
type LoggingProvider struct {
	inner  Provider
	events store.EventRepo
	log    *logger.Logger
}

// WithLogging wraps p. A nil events repo skips the audit log.
func WithLogging(p Provider, events store.EventRepo, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingProvider{inner: p, events: events, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	elapsed := time.Since(start)

	ev := store.LLMRequestEventData{
		Provider:    l.inner.Name(),
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   elapsed.Milliseconds(),
		Success:     err == nil,
		RequestBody: clip(renderRequest(req)),
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = clip(string(resp.Content))
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	metrics.RecordLLMRequest(ev.Provider, ev.Purpose, ev.Success, elapsed, ev.InputTokens, ev.OutputTokens)
	fields := []any{"provider", ev.Provider, "model", ev.Model, "purpose", ev.Purpose, "latency_ms", ev.LatencyMs}
	if err != nil {
		l.log.Warn("llm request failed", append(fields, "error", err)...)
	} else {
		l.log.Debug("llm request", append(fields, "input_tokens", ev.InputTokens, "output_tokens", ev.OutputTokens)...)
	}

	if l.events != nil {
		// The audit write never fails the call.
		if aerr := l.events.AppendLLMRequest(ctx, ev); aerr != nil {
			l.log.Warn("record llm request event", "error", aerr)
		}
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }

func (l *LoggingProvider) Name() string { return l.inner.Name() }

// renderRequest lays the request out as labelled sections for the
// "llm view" command.
func renderRequest(req Request) string {
	var b strings.Builder
	section := func(label, body string) {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", label, body)
	}
	if req.System != "" {
		section("system", req.System)
	}
	for _, m := range req.Messages {
		section(string(m.Role), m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			section("schema: "+req.Schema.Name, string(def))
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func clip(s string) string {
	if len(s) <= maxAuditBody {
		return s
	}
	return s[:maxAuditBody] + "\n[truncated]"
}
