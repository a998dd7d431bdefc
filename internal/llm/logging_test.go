package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/studypath/internal/store"
)

type recordingEventRepo struct {
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingEventRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.events = append(r.events, data)
	return r.err
}

func (r *recordingEventRepo) QueryLLMEvents(context.Context, store.QueryOpts) ([]store.LLMRequestEvent, error) {
	return nil, nil
}

func (r *recordingEventRepo) GetLLMEvent(context.Context, string) (*store.LLMRequestEvent, error) {
	return nil, store.ErrNotFound
}

func TestLogging_RecordsSuccess(t *testing.T) {
	repo := &recordingEventRepo{}
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"questions":[]}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 3},
	})
	p := WithLogging(mock, repo, nil)

	ctx := WithPurpose(context.Background(), PurposeQuizGenerate)
	_, err := p.Generate(ctx, Request{
		System:   "be terse",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
		Schema:   &Schema{Name: "s", Definition: map[string]any{"type": "object"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	ev := repo.events[0]
	if ev.Provider != "mock" || ev.Purpose != "quiz-generate" || !ev.Success {
		t.Errorf("event = %+v", ev)
	}
	if ev.InputTokens != 12 || ev.OutputTokens != 3 {
		t.Errorf("tokens = %d/%d, want 12/3", ev.InputTokens, ev.OutputTokens)
	}
	for _, want := range []string{"[system]", "be terse", "[user]", "hello", "[schema: s]"} {
		if !strings.Contains(ev.RequestBody, want) {
			t.Errorf("request body missing %q:\n%s", want, ev.RequestBody)
		}
	}
	if ev.ResponseBody != `{"questions":[]}` {
		t.Errorf("response body = %q", ev.ResponseBody)
	}
}

func TestLogging_RecordsFailureAndIgnoresRepoErrors(t *testing.T) {
	repo := &recordingEventRepo{err: errors.New("disk full")}
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	p := WithLogging(mock, repo, nil)

	_, err := p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if len(repo.events) != 1 || repo.events[0].Success || repo.events[0].ErrorMessage == "" {
		t.Errorf("events = %+v", repo.events)
	}
}

func TestLogging_NilRepo(t *testing.T) {
	p := WithLogging(NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)}), nil, nil)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "mock" || p.ModelID() != "mock" {
		t.Errorf("name/model = %q/%q", p.Name(), p.ModelID())
	}
}

type slowProvider struct{ MockProvider }

func (s *slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(time.Second):
		return &Response{}, nil
	}
}

func TestWithTimeout(t *testing.T) {
	p := WithTimeout(&slowProvider{}, 10*time.Millisecond)
	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if WithTimeout(NewMockProvider(), 0) == nil {
		t.Fatal("zero timeout should return the inner provider")
	}
}

func TestLogging_ClipsLargeBodies(t *testing.T) {
	repo := &recordingEventRepo{}
	big := strings.Repeat("passage ", maxAuditBody/4)
	p := WithLogging(NewMockProvider(MockResponse{Content: json.RawMessage(`"ok"`)}), repo, nil)

	if _, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: big}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := repo.events[0].RequestBody
	if len(body) > maxAuditBody+len("\n[truncated]") {
		t.Errorf("request body not clipped: %d bytes", len(body))
	}
	if !strings.HasSuffix(body, "[truncated]") {
		t.Errorf("missing truncation marker")
	}
}
