package quiz

import (
	"context"
	"fmt"

	"github.com/abhisek/studypath/internal/conceptgraph"
	"github.com/abhisek/studypath/internal/store"
)

// verifyPlan is the quiz shape and pass mark for a mode.
type verifyPlan struct {
	questions  int
	difficulty string
	threshold  float64
}

func planFor(mode Mode) verifyPlan {
	if mode == ModeQuick {
		return verifyPlan{questions: 3, difficulty: DifficultyEasy, threshold: 66}
	}
	return verifyPlan{questions: 5, difficulty: DifficultyMedium, threshold: 80}
}

// PassThreshold returns the percentage needed to complete a concept.
func PassThreshold(mode Mode) float64 {
	return planFor(mode).threshold
}

// VerifyQuiz is a concept verification quiz.
type VerifyQuiz struct {
	ConceptID   string         `json:"concept_id"`
	ConceptName string         `json:"concept_name"`
	Mode        Mode           `json:"mode"`
	Questions   []QuestionView `json:"questions"`
}

// GenerateVerification builds a verification quiz for one concept: 3 easy
// questions in quick mode, 5 medium ones otherwise.
func (s *Service) GenerateVerification(ctx context.Context, courseID, conceptID string, mode Mode) (*VerifyQuiz, error) {
	c, err := conceptgraph.LookupConcept(ctx, s.uow.Repos(), courseID, conceptID)
	if err != nil {
		return nil, err
	}
	plan := planFor(mode)
	views, err := s.Generate(ctx, GenerateRequest{
		CourseID:   courseID,
		ConceptID:  conceptID,
		N:          plan.questions,
		Difficulty: plan.difficulty,
	})
	if err != nil {
		return nil, err
	}
	return &VerifyQuiz{ConceptID: c.ID, ConceptName: c.Name, Mode: mode, Questions: views}, nil
}

// CompletionResult is the outcome of a verification submission.
type CompletionResult struct {
	ConceptID     string           `json:"concept_id"`
	ConceptName   string           `json:"concept_name"`
	Score         int              `json:"score"`
	Total         int              `json:"total"`
	Percentage    float64          `json:"percentage"`
	Passed        bool             `json:"passed"`
	PassThreshold float64          `json:"pass_threshold"`
	Mode          Mode             `json:"mode"`
	Results       []QuestionResult `json:"results"`
	Message       string           `json:"message"`
}

// SubmitVerification grades a verification quiz through the normal
// submission path and records the pass/fail attempt for the concept.
func (s *Service) SubmitVerification(ctx context.Context, studentID, courseID, conceptID string, mode Mode, answers []Answer) (*CompletionResult, error) {
	c, err := conceptgraph.LookupConcept(ctx, s.uow.Repos(), courseID, conceptID)
	if err != nil {
		return nil, err
	}
	threshold := PassThreshold(mode)

	var out *CompletionResult
	err = s.submit(ctx, studentID, answers, func(r store.Repos, res *SubmitResult) error {
		passed := res.Percentage >= threshold
		if err := s.progress.RecordAttempt(ctx, r, studentID, conceptID, res.Percentage, passed); err != nil {
			return err
		}
		out = &CompletionResult{
			ConceptID:     c.ID,
			ConceptName:   c.Name,
			Score:         res.Score,
			Total:         res.Total,
			Percentage:    res.Percentage,
			Passed:        passed,
			PassThreshold: threshold,
			Mode:          mode,
			Results:       res.Results,
			Message:       "Concept completed!",
		}
		if !passed {
			out.Message = fmt.Sprintf("You need %.0f%% to pass. You scored %.1f%%. Try again!", threshold, res.Percentage)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("verification submitted", "student", studentID, "concept", conceptID, "mode", string(mode), "passed", out.Passed)
	return out, nil
}
