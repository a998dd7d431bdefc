package quiz

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/studypath/internal/conceptgraph"
	"github.com/abhisek/studypath/internal/llm"
	"github.com/abhisek/studypath/internal/metrics"
	"github.com/abhisek/studypath/internal/retrieval"
	"github.com/abhisek/studypath/internal/store"
)

const generalTopic = "general course content"

// Generate creates up to req.N questions grounded in retrieved course
// material and stores them. Failures to produce any question are returned
// as *GenerationError.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) ([]QuestionView, error) {
	if req.N <= 0 {
		req.N = 5
	}
	if req.Difficulty == "" {
		req.Difficulty = DifficultyMedium
	}

	topic := generalTopic
	if req.ConceptID != "" {
		c, err := conceptgraph.LookupConcept(ctx, s.uow.Repos(), req.CourseID, req.ConceptID)
		if err != nil {
			return nil, err
		}
		topic = c.Name
	}

	questions, err := s.generate(ctx, req, topic)
	if err != nil {
		metrics.QuizGenerations.WithLabelValues(generationStatus(err)).Inc()
		return nil, err
	}
	if len(questions) > req.N {
		questions = questions[:req.N]
	}

	views := make([]QuestionView, 0, len(questions))
	err = s.uow.InTx(ctx, func(r store.Repos) error {
		for _, g := range questions {
			q := store.Question{
				CourseID:      req.CourseID,
				ConceptID:     req.ConceptID,
				QuestionType:  "mcq",
				Text:          g.Question,
				Options:       g.Options,
				CorrectAnswer: g.Correct,
				Explanation:   g.Explanation,
				Difficulty:    req.Difficulty,
				BloomLevel:    g.BloomLevel,
				CreatedAt:     s.now().UTC(),
			}
			if err := r.Questions.Create(ctx, &q); err != nil {
				return err
			}
			views = append(views, viewOf(q))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store questions: %w", err)
	}

	metrics.QuizGenerations.WithLabelValues("ok").Inc()
	s.log.Info("generated quiz", "course", req.CourseID, "topic", topic, "questions", len(views))
	return views, nil
}

func (s *Service) generate(ctx context.Context, req GenerateRequest, topic string) ([]GeneratedQuestion, error) {
	passages, err := s.retriever.Search(ctx, topic, req.CourseID, s.cfg.Passages)
	if err != nil {
		s.log.Error("quiz passage retrieval failed", "topic", topic, "error", err)
		return nil, &GenerationError{Reason: ReasonRetrievalUnavailable, Topic: topic, Err: err}
	}
	if len(passages) == 0 {
		return nil, &GenerationError{Reason: ReasonNoPassages, Topic: topic}
	}
	material := retrieval.JoinPassages(passages, s.cfg.MaxContextChars)

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, llm.PurposeQuizGenerate), llm.Request{
		System: quizSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildQuizUserMessage(req.N, topic, req.Difficulty, material)},
		},
		Schema:      QuestionsSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		var (
			invalid   *llm.ErrInvalidResponse
			truncated *llm.ErrMaxTokensExceeded
		)
		if errors.As(err, &invalid) || errors.As(err, &truncated) {
			return nil, &GenerationError{Reason: ReasonMalformed, Topic: topic, Err: err}
		}
		s.log.Error("quiz generation LLM call failed", "topic", topic, "error", err)
		return nil, &GenerationError{Reason: ReasonLLMUnavailable, Topic: topic, Err: err}
	}

	switch out := parseQuestions(resp.Content, s.cfg.Validators).(type) {
	case parsedQuestions:
		for _, d := range out.dropped {
			s.log.Debug("dropped generated question", "topic", topic, "reason", d.Error())
		}
		return out.questions, nil
	case emptyOrMalformed:
		s.log.Warn("LLM returned no usable questions", "topic", topic, "error", out.err)
		return nil, &GenerationError{Reason: ReasonMalformed, Topic: topic, Err: out.err}
	default:
		return nil, fmt.Errorf("unexpected parse outcome %T", out)
	}
}

func generationStatus(err error) string {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Reason
	}
	return "error"
}
