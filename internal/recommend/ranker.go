// Package recommend ranks what a student should study next from mastery
// rows and the prerequisite graph.
package recommend

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/abhisek/studypath/internal/spacedrep"
	"github.com/abhisek/studypath/internal/store"
)

const (
	// WeakThreshold is the score below which a topic is weak.
	WeakThreshold = 0.4
	// MasteredThreshold is the score at or above which a topic is mastered.
	MasteredThreshold = 0.75
	// MaxRecommendations caps the ranked list.
	MaxRecommendations = 10
)

// Action is what the student should do with a recommended concept.
type Action string

const (
	ActionReview Action = "review"
	ActionQuiz   Action = "quiz"
)

// Recommendation is one ranked entry.
type Recommendation struct {
	Priority        int     `json:"priority"`
	ConceptID       string  `json:"concept_id"`
	ConceptName     string  `json:"concept_name"`
	MasteryScore    float64 `json:"mastery_score"`
	DependencyCount int     `json:"dependency_count"`
	Reason          string  `json:"reason"`
	Action          Action  `json:"suggested_action"`
}

// Result is the ranked list for one student and course.
type Result struct {
	StudentID       string           `json:"student_id"`
	CourseID        string           `json:"course_id"`
	OverallMastery  float64          `json:"overall_mastery"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Rank classifies every concept, sorts weakest first and returns at most
// MaxRecommendations entries. scores holds the student's mastery rows keyed
// by concept id; deps holds prerequisite dependency counts.
func Rank(concepts []store.Concept, scores map[string]store.MasteryScore, deps map[string]int, now time.Time) ([]Recommendation, float64) {
	ordered := make([]store.Concept, len(concepts))
	copy(ordered, concepts)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })

	recs := make([]Recommendation, 0, len(ordered))
	var total float64
	for _, c := range ordered {
		ms, attempted := scores[c.ID]
		if attempted {
			total += ms.Score
		}
		rec, ok := classify(c, ms, attempted, deps[c.ID], now)
		if ok {
			recs = append(recs, rec)
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].MasteryScore != recs[j].MasteryScore {
			return recs[i].MasteryScore < recs[j].MasteryScore
		}
		return recs[i].DependencyCount > recs[j].DependencyCount
	})
	for i := range recs {
		recs[i].Priority = i + 1
	}
	if len(recs) > MaxRecommendations {
		recs = recs[:MaxRecommendations]
	}

	var overall float64
	if len(concepts) > 0 {
		overall = round3(total / float64(len(concepts)))
	}
	return recs, overall
}

// classify returns the recommendation for one concept, or false when a
// mastered concept is not yet due.
func classify(c store.Concept, ms store.MasteryScore, attempted bool, deps int, now time.Time) (Recommendation, bool) {
	rec := Recommendation{
		ConceptID:       c.ID,
		ConceptName:     c.Name,
		DependencyCount: deps,
	}

	if !attempted {
		rec.Action = ActionReview
		rec.Reason = "Not yet studied."
		if deps > 0 {
			rec.Reason = fmt.Sprintf("Not yet studied. Prerequisite for %d other topic(s).", deps)
		}
		return rec, true
	}

	rec.MasteryScore = round3(ms.Score)
	pct := int(math.Round(ms.Accuracy * 100))

	switch {
	case ms.Score >= MasteredThreshold:
		review := spacedrep.ReviewState{NextReviewDue: ms.NextReviewDue}
		if !review.IsOverdue(now) {
			return Recommendation{}, false
		}
		rec.Action = ActionQuiz
		rec.Reason = fmt.Sprintf("Mastered but due for review (%dd overdue). Prevent forgetting.", review.OverdueDays(now))
	case ms.Score < WeakThreshold:
		rec.Action = ActionReview
		rec.Reason = fmt.Sprintf("Weak topic: %d%% accuracy across %d attempts.", pct, ms.ExposureCount)
		if deps > 0 {
			rec.Reason += fmt.Sprintf(" Prerequisite for %d other topic(s).", deps)
		}
	default:
		rec.Action = ActionQuiz
		rec.Reason = fmt.Sprintf("In progress: %d%% accuracy. Needs more practice.", pct)
	}
	return rec, true
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
