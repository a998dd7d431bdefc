package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studypath/internal/llm"
	"github.com/abhisek/studypath/internal/mastery"
	"github.com/abhisek/studypath/internal/progress"
	"github.com/abhisek/studypath/internal/retrieval"
	"github.com/abhisek/studypath/internal/store"
	"github.com/abhisek/studypath/internal/store/storetest"
)

const epsilon = 0.001

func almostEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < epsilon
}

type fakeRetriever struct {
	passages []retrieval.Passage
	err      error
	queries  []string
	ks       []int
}

func (f *fakeRetriever) Search(_ context.Context, query, _ string, k int) ([]retrieval.Passage, error) {
	f.queries = append(f.queries, query)
	f.ks = append(f.ks, k)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.passages) > k {
		return f.passages[:k], nil
	}
	return f.passages, nil
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls []string
}

func (c *countingInvalidator) Invalidate(_ context.Context, student string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, student)
}

type fixture struct {
	svc       *Service
	st        *store.Store
	mock      *llm.MockProvider
	retriever *fakeRetriever
	cache     *countingInvalidator
	concepts  []store.Concept
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := storetest.Open(t)
	f := &fixture{
		st:   st,
		mock: llm.NewMockProvider(),
		retriever: &fakeRetriever{passages: []retrieval.Passage{
			{ChunkID: "ch1", Text: "Madrid is the capital of Spain.", SourceName: "geo.txt"},
			{ChunkID: "ch2", Text: "Lisbon is the capital of Portugal.", SourceName: "geo.txt"},
		}},
		cache:    &countingInvalidator{},
		concepts: storetest.Course(t, st, "geo", "capitals", "rivers"),
	}
	f.svc = NewService(Deps{
		Store:     st,
		Provider:  f.mock,
		Retriever: f.retriever,
		Mastery:   mastery.NewService(mastery.NewEngine(), nil),
		Progress:  progress.NewService(st, nil),
		Cache:     f.cache,
	}, DefaultConfig())
	return f
}

func questionsJSON(n int) json.RawMessage {
	var qs []string
	for i := 0; i < n; i++ {
		qs = append(qs, `{"question":"Which city is the capital of Spain?","options":["A) Lisbon","B) Madrid","C) Paris","D) Rome"],"correct":"B","explanation":"Madrid.","bloom_level":"Remember"}`)
	}
	return json.RawMessage(`{"questions":[` + strings.Join(qs, ",") + `]}`)
}

func TestGenerate_PersistsAtMostN(t *testing.T) {
	f := newFixture(t)
	f.mock.AddResponse(llm.MockResponse{Content: questionsJSON(4)})
	ctx := context.Background()

	views, err := f.svc.Generate(ctx, GenerateRequest{CourseID: "geo", ConceptID: f.concepts[0].ID, N: 3, Difficulty: DifficultyEasy})
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.Equal(t, []string{"capitals"}, f.retriever.queries)
	assert.Equal(t, []int{6}, f.retriever.ks)

	req := f.mock.Calls[0]
	assert.Equal(t, llm.PurposeQuizGenerate, req.Purpose)
	assert.Equal(t, quizSystemPrompt, req.System)
	user := req.Messages[0].Content
	assert.Contains(t, user, "Generate 3 multiple-choice questions.")
	assert.Contains(t, user, "Topic: capitals")
	assert.Contains(t, user, "Difficulty: easy")
	assert.Contains(t, user, "Madrid is the capital of Spain.\n\nLisbon is the capital of Portugal.")

	v := views[0]
	assert.Equal(t, "mcq", v.Type)
	assert.Equal(t, f.concepts[0].ID, v.ConceptID)
	assert.Equal(t, "easy", v.Difficulty)
	assert.Len(t, v.Options, 4)

	stored, err := f.st.Repos().Questions.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", stored.CorrectAnswer)
	assert.Equal(t, "Madrid.", stored.Explanation)
	assert.Equal(t, "Remember", stored.BloomLevel)
}

func TestGenerate_Defaults(t *testing.T) {
	f := newFixture(t)
	f.mock.AddResponse(llm.MockResponse{Content: questionsJSON(5)})

	views, err := f.svc.Generate(context.Background(), GenerateRequest{CourseID: "geo"})
	require.NoError(t, err)
	assert.Len(t, views, 5)
	assert.Equal(t, []string{generalTopic}, f.retriever.queries)
	assert.Equal(t, DifficultyMedium, views[0].Difficulty)
	assert.Empty(t, views[0].ConceptID)
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(f *fixture)
		reason string
	}{
		{"no passages", func(f *fixture) { f.retriever.passages = nil }, ReasonNoPassages},
		{"vector store down", func(f *fixture) {
			f.retriever.err = errors.New("qdrant: circuit breaker is open")
		}, ReasonRetrievalUnavailable},
		{"llm down", func(f *fixture) {}, ReasonLLMUnavailable},
		{"schema rejected", func(f *fixture) {
			f.mock.AddResponse(llm.MockResponse{Err: &llm.ErrInvalidResponse{Err: errors.New("bad")}})
		}, ReasonMalformed},
		{"truncated", func(f *fixture) {
			f.mock.AddResponse(llm.MockResponse{Err: &llm.ErrMaxTokensExceeded{}})
		}, ReasonMalformed},
		{"malformed", func(f *fixture) {
			f.mock.AddResponse(llm.MockResponse{Content: json.RawMessage(`{"questions":[]}`)})
		}, ReasonMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)
			views, err := f.svc.Generate(context.Background(), GenerateRequest{CourseID: "geo"})
			require.Error(t, err)
			assert.Nil(t, views)
			assert.ErrorIs(t, err, ErrGenerationFailed)
			var ge *GenerationError
			require.True(t, errors.As(err, &ge))
			assert.Equal(t, tt.reason, ge.Reason)
		})
	}
}

func TestGenerate_UnknownConcept(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Generate(context.Background(), GenerateRequest{CourseID: "geo", ConceptID: "nope"})
	assert.ErrorIs(t, err, ErrConceptNotFound)
	assert.Zero(t, f.mock.CallCount())
}

func intp(v int) *int { return &v }

func TestSubmit_GradesAndUpdatesMastery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.concepts[0]
	var qs []store.Question
	for i := 0; i < 5; i++ {
		qs = append(qs, storetest.Question(t, f.st, c))
	}
	selected := []string{"B", "b) two", "B) two", "A", "C"}
	var answers []Answer
	for i, q := range qs {
		answers = append(answers, Answer{QuestionID: q.ID, Selected: selected[i], ResponseTimeMs: intp(10000)})
	}
	answers = append(answers, Answer{QuestionID: "missing", Selected: "B"})

	res, err := f.svc.Submit(ctx, "alice", answers)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Score)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 60.0, res.Percentage)
	require.Len(t, res.Results, 5)
	assert.True(t, res.Results[1].Correct)
	assert.False(t, res.Results[3].Correct)
	assert.Equal(t, "B) two", res.Results[3].CorrectAnswer)

	require.Len(t, res.MasteryUpdates, 1)
	assert.Equal(t, "capitals", res.MasteryUpdates[0].ConceptName)
	assert.True(t, almostEqual(res.MasteryUpdates[0].NewScore, 0.602), "score = %v", res.MasteryUpdates[0].NewScore)

	row, err := f.st.Repos().Mastery.GetForUpdate(ctx, "alice", c.ID)
	require.NoError(t, err)
	assert.True(t, almostEqual(row.Accuracy, 0.6))
	assert.Equal(t, 5, row.ExposureCount)
	assert.True(t, almostEqual(row.Stability, 0.6))

	attempts, err := f.st.Repos().Attempts.List(ctx, "alice", c.ID)
	require.NoError(t, err)
	assert.Len(t, attempts, 5)

	assert.Equal(t, []string{"alice"}, f.cache.calls)
}

func TestSubmit_PercentageAndConceptless(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q1 := storetest.Question(t, f.st, f.concepts[0])
	q2 := storetest.Question(t, f.st, f.concepts[1])
	general := storetest.Question(t, f.st, store.Concept{CourseID: "geo", Name: "general"})

	res, err := f.svc.Submit(ctx, "bob", []Answer{
		{QuestionID: q1.ID, Selected: "B"},
		{QuestionID: q2.ID, Selected: "D"},
		{QuestionID: general.ID, Selected: "B"},
	})
	require.NoError(t, err)
	assert.Equal(t, 66.7, res.Percentage)
	require.Len(t, res.MasteryUpdates, 2)
	assert.Equal(t, f.concepts[0].ID, res.MasteryUpdates[0].ConceptID)
	assert.Equal(t, f.concepts[1].ID, res.MasteryUpdates[1].ConceptID)
}

func TestSubmit_Empty(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Submit(context.Background(), "bob", []Answer{{QuestionID: "missing", Selected: "A"}})
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Zero(t, res.Percentage)
	assert.Empty(t, res.MasteryUpdates)
}

func TestSubmit_ConcurrentSameConcept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.concepts[0]

	const workers = 4
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		q := storetest.Question(t, f.st, c)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Submit(ctx, "carol", []Answer{{QuestionID: q.ID, Selected: "B"}})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	row, err := f.st.Repos().Mastery.GetForUpdate(ctx, "carol", c.ID)
	require.NoError(t, err)
	assert.Equal(t, workers, row.ExposureCount)
	assert.True(t, almostEqual(row.Accuracy, 1))
}

func TestVerification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.concepts[0]

	f.mock.AddResponse(llm.MockResponse{Content: questionsJSON(3)})
	vq, err := f.svc.GenerateVerification(ctx, "geo", c.ID, ModeQuick)
	require.NoError(t, err)
	require.Len(t, vq.Questions, 3)
	assert.Equal(t, "easy", vq.Questions[0].Difficulty)
	assert.Contains(t, f.mock.Calls[0].Messages[0].Content, "Generate 3 multiple-choice questions.")

	answers := []Answer{
		{QuestionID: vq.Questions[0].ID, Selected: "B"},
		{QuestionID: vq.Questions[1].ID, Selected: "B) Madrid"},
		{QuestionID: vq.Questions[2].ID, Selected: "A"},
	}
	res, err := f.svc.SubmitVerification(ctx, "dana", "geo", c.ID, ModeQuick, answers)
	require.NoError(t, err)
	assert.Equal(t, 66.7, res.Percentage)
	assert.True(t, res.Passed)
	assert.Equal(t, 66.0, res.PassThreshold)
	assert.Equal(t, "Concept completed!", res.Message)

	res, err = f.svc.SubmitVerification(ctx, "erin", "geo", c.ID, ModeComprehensive, answers)
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Equal(t, "You need 80% to pass. You scored 66.7%. Try again!", res.Message)

	statuses, err := f.svc.progress.Statuses(ctx, f.st.Repos(), "dana", []string{c.ID})
	require.NoError(t, err)
	assert.Equal(t, "completed", statuses[c.ID].Status())

	statuses, err = f.svc.progress.Statuses(ctx, f.st.Repos(), "erin", []string{c.ID})
	require.NoError(t, err)
	assert.Equal(t, "attempted", statuses[c.ID].Status())
	assert.True(t, almostEqual(statuses[c.ID].Score, 66.7))
}

func TestVerification_UnknownConcept(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SubmitVerification(context.Background(), "dana", "geo", "nope", ModeQuick, nil)
	assert.ErrorIs(t, err, ErrConceptNotFound)

	other := storetest.Course(t, f.st, "history", "romans")
	_, err = f.svc.GenerateVerification(context.Background(), "geo", other[0].ID, ModeQuick)
	assert.ErrorIs(t, err, ErrConceptNotFound)
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()

	t.Run("quick", func(t *testing.T) {
		f := newFixture(t)
		f.retriever.passages = append(f.retriever.passages, retrieval.Passage{ChunkID: "ch3", Text: strings.Repeat("é", 300), SourceName: "long.txt"})
		f.retriever.passages = append(f.retriever.passages, retrieval.Passage{ChunkID: "ch4", Text: "extra"})
		f.mock.AddResponse(llm.MockResponse{Content: json.RawMessage(`"- Madrid is the capital"`)})

		s, err := f.svc.Summarize(ctx, "geo", f.concepts[0].ID, ModeQuick)
		require.NoError(t, err)
		assert.Equal(t, "- Madrid is the capital", s.Summary)
		assert.Equal(t, ModeQuick, s.Mode)
		assert.Equal(t, []int{3}, f.retriever.ks)
		require.Len(t, s.Sources, 3)
		assert.Equal(t, 200, len([]rune(s.Sources[2].Text)))
		assert.Equal(t, "geo.txt", s.Sources[0].Source)

		req := f.mock.Calls[0]
		assert.Equal(t, summaryQuickSystemPrompt, req.System)
		assert.True(t, strings.HasPrefix(req.Messages[0].Content, "Explain the concept: \"capitals\"\n\nSource material:\n"))
		assert.Nil(t, req.Schema)
	})

	t.Run("no material", func(t *testing.T) {
		f := newFixture(t)
		f.retriever.passages = nil
		s, err := f.svc.Summarize(ctx, "geo", f.concepts[0].ID, ModeComprehensive)
		require.NoError(t, err)
		assert.Equal(t, noMaterialSummary, s.Summary)
		assert.Empty(t, s.Sources)
		assert.Equal(t, []int{6}, f.retriever.ks)
		assert.Zero(t, f.mock.CallCount())
	})

	t.Run("retrieval failure", func(t *testing.T) {
		f := newFixture(t)
		f.retriever.err = errors.New("qdrant: circuit breaker is open")
		s, err := f.svc.Summarize(ctx, "geo", f.concepts[0].ID, ModeQuick)
		require.NoError(t, err)
		assert.Equal(t, failedSummary, s.Summary)
		assert.Empty(t, s.Sources)
		assert.Zero(t, f.mock.CallCount())
	})

	t.Run("llm failure", func(t *testing.T) {
		f := newFixture(t)
		s, err := f.svc.Summarize(ctx, "geo", f.concepts[0].ID, ModeComprehensive)
		require.NoError(t, err)
		assert.Equal(t, failedSummary, s.Summary)
		assert.Len(t, s.Sources, 2)
	})
}

func TestGenerationError(t *testing.T) {
	cause := errors.New("timeout")
	err := error(&GenerationError{Reason: ReasonLLMUnavailable, Topic: "x", Err: cause})
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, `quiz generation failed for "x": llm_unavailable: timeout`, err.Error())
}
