package progress

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/abhisek/studypath/internal/conceptgraph"
	"github.com/abhisek/studypath/internal/logger"
	"github.com/abhisek/studypath/internal/store"
)

// Service records and reports completion progress.
type Service struct {
	uow store.UnitOfWork
	log *logger.Logger
	now func() time.Time
}

// NewService creates a progress service.
func NewService(uow store.UnitOfWork, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{uow: uow, log: log, now: time.Now}
}

// Statuses returns the completion of each concept for the student.
// Concepts without records are NotStarted.
func (s *Service) Statuses(ctx context.Context, repos store.Repos, studentID string, conceptIDs []string) (map[string]Completion, error) {
	latest, err := repos.Completions.Latest(ctx, studentID, conceptIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Completion, len(conceptIDs))
	for _, id := range conceptIDs {
		if rec, ok := latest[id]; ok {
			out[id] = FromRecord(&rec)
		} else {
			out[id] = FromRecord(nil)
		}
	}
	return out, nil
}

// RecordAttempt stores a verification attempt.
func (s *Service) RecordAttempt(ctx context.Context, repos store.Repos, studentID, conceptID string, percentage float64, passed bool) error {
	score := percentage
	err := repos.Completions.Append(ctx, &store.Completion{
		StudentID:   studentID,
		ConceptID:   conceptID,
		Kind:        store.CompletionAttempted,
		QuizScore:   &score,
		Passed:      passed,
		CompletedAt: s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// SkimResult is returned by MarkSkimmed.
type SkimResult struct {
	ConceptID   string `json:"concept_id"`
	ConceptName string `json:"concept_name"`
	Status      string `json:"status"`
	// NextConcept is the most important concept with no completion record,
	// or empty when every concept has one.
	NextConcept string `json:"next_concept,omitempty"`
	Message     string `json:"message"`
}

// MarkSkimmed records that the student read the concept without a quiz.
func (s *Service) MarkSkimmed(ctx context.Context, studentID, courseID, conceptID string) (*SkimResult, error) {
	var res *SkimResult
	err := s.uow.InTx(ctx, func(r store.Repos) error {
		c, err := conceptgraph.LookupConcept(ctx, r, courseID, conceptID)
		if err != nil {
			return err
		}
		err = r.Completions.Append(ctx, &store.Completion{
			StudentID:   studentID,
			ConceptID:   conceptID,
			Kind:        store.CompletionSkimmed,
			CompletedAt: s.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("record skim: %w", err)
		}

		concepts, err := byImportance(ctx, r, courseID)
		if err != nil {
			return err
		}
		statuses, err := s.Statuses(ctx, r, studentID, ids(concepts))
		if err != nil {
			return err
		}
		res = &SkimResult{
			ConceptID:   c.ID,
			ConceptName: c.Name,
			Status:      Skimmed.String(),
			Message:     "Concept marked as skimmed. Moving to next!",
		}
		for _, cc := range concepts {
			if statuses[cc.ID].State == NotStarted {
				res.NextConcept = cc.ID
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("concept skimmed", "student", studentID, "concept", conceptID, "next", res.NextConcept)
	return res, nil
}

// ConceptProgress is one row of QuickProgress.
type ConceptProgress struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Importance  float64 `json:"importance"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status"`
}

// Summary counts progress over a course.
type Summary struct {
	Total      int     `json:"total"`
	Skimmed    int     `json:"skimmed"`
	Completed  int     `json:"completed"`
	Percentage float64 `json:"percentage"`
}

// QuickProgress is the reading-order view of a course.
type QuickProgress struct {
	CourseID    string            `json:"course_id"`
	Concepts    []ConceptProgress `json:"concepts"`
	Progress    Summary           `json:"progress"`
	NextConcept string            `json:"next_concept,omitempty"`
}

// Quick lists the course's concepts by importance with their status.
func (s *Service) Quick(ctx context.Context, studentID, courseID string) (*QuickProgress, error) {
	r := s.uow.Repos()
	concepts, err := byImportance(ctx, r, courseID)
	if err != nil {
		return nil, err
	}
	statuses, err := s.Statuses(ctx, r, studentID, ids(concepts))
	if err != nil {
		return nil, err
	}

	out := &QuickProgress{CourseID: courseID, Concepts: make([]ConceptProgress, 0, len(concepts))}
	for _, c := range concepts {
		st := statuses[c.ID]
		switch {
		case st.Completed():
			out.Progress.Completed++
		case st.State == Skimmed:
			out.Progress.Skimmed++
		case st.State == NotStarted && out.NextConcept == "":
			out.NextConcept = c.ID
		}
		out.Concepts = append(out.Concepts, ConceptProgress{
			ID:          c.ID,
			Name:        c.Name,
			Importance:  c.Importance,
			Description: c.Description,
			Status:      st.Status(),
		})
	}
	out.Progress.Total = len(concepts)
	if out.Progress.Total > 0 {
		pct := float64(out.Progress.Skimmed+out.Progress.Completed) / float64(out.Progress.Total) * 100
		out.Progress.Percentage = math.Round(pct*10) / 10
	}
	return out, nil
}

// byImportance lists the course's concepts, most important first. Equal
// importance keeps name order.
func byImportance(ctx context.Context, r store.Repos, courseID string) ([]store.Concept, error) {
	concepts, err := r.Concepts.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list concepts: %w", err)
	}
	sort.SliceStable(concepts, func(i, j int) bool {
		return concepts[i].Importance > concepts[j].Importance
	})
	return concepts, nil
}

func ids(concepts []store.Concept) []string {
	out := make([]string, len(concepts))
	for i, c := range concepts {
		out[i] = c.ID
	}
	return out
}
