package recommend

import (
	"context"
	"sort"
	"time"

	"github.com/abhisek/studypath/internal/progress"
	"github.com/abhisek/studypath/internal/spacedrep"
)

// Concept statuses in a mastery overview.
const (
	StatusCompleted  = "completed"
	StatusMastered   = "mastered"
	StatusWeak       = "weak"
	StatusInProgress = "in_progress"
	StatusNotStarted = "not_started"
)

// ConceptMastery is one row of the overview.
type ConceptMastery struct {
	ConceptID     string     `json:"concept_id"`
	ConceptName   string     `json:"concept_name"`
	MasteryScore  float64    `json:"mastery_score"`
	Accuracy      float64    `json:"accuracy"`
	ExposureCount int        `json:"exposure_count"`
	Completed     bool       `json:"completed"`
	Status        string     `json:"status"`
	NextReviewDue *time.Time `json:"next_review_due,omitempty"`
	DueInDays     int        `json:"due_in_days"`
}

// Overview reports every concept of a course for one student.
type Overview struct {
	StudentID      string           `json:"student_id"`
	CourseID       string           `json:"course_id"`
	OverallMastery float64          `json:"overall_mastery"`
	CompletedCount int              `json:"completed_count"`
	TotalConcepts  int              `json:"total_concepts"`
	Concepts       []ConceptMastery `json:"concepts"`
}

// MasteryOverview lists all concepts with scores and statuses, weakest
// first. A concept counts as completed when its latest verification
// attempt passed.
func (s *Service) MasteryOverview(ctx context.Context, completions *progress.Service, studentID, courseID string) (*Overview, error) {
	st, err := s.load(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	concepts := st.graph.Concepts()
	ids := make([]string, len(concepts))
	for i, c := range concepts {
		ids[i] = c.ID
	}
	statuses, err := completions.Statuses(ctx, s.uow.Repos(), studentID, ids)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	out := &Overview{
		StudentID:     studentID,
		CourseID:      courseID,
		TotalConcepts: len(concepts),
		Concepts:      make([]ConceptMastery, 0, len(concepts)),
	}
	var total float64
	for _, c := range concepts {
		row := ConceptMastery{ConceptID: c.ID, ConceptName: c.Name}
		ms, attempted := st.scores[c.ID]
		if attempted {
			row.MasteryScore = round3(ms.Score)
			row.Accuracy = round3(ms.Accuracy)
			row.ExposureCount = ms.ExposureCount
			if !ms.NextReviewDue.IsZero() {
				due := ms.NextReviewDue
				row.NextReviewDue = &due
				row.DueInDays = (&spacedrep.ReviewState{NextReviewDue: due}).DaysUntilReview(now)
			}
		}
		row.Completed = statuses[c.ID].Completed()
		switch {
		case row.Completed:
			row.Status = StatusCompleted
			out.CompletedCount++
		case attempted && ms.Score >= MasteredThreshold:
			row.Status = StatusMastered
		case attempted && ms.Score < WeakThreshold:
			row.Status = StatusWeak
		case attempted:
			row.Status = StatusInProgress
		default:
			row.Status = StatusNotStarted
		}
		total += row.MasteryScore
		out.Concepts = append(out.Concepts, row)
	}

	sort.SliceStable(out.Concepts, func(i, j int) bool {
		return out.Concepts[i].MasteryScore < out.Concepts[j].MasteryScore
	})
	if len(concepts) > 0 {
		out.OverallMastery = round3(total / float64(len(concepts)))
	}
	return out, nil
}
