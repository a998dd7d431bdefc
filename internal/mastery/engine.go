// Package mastery turns graded attempts into bounded per-concept mastery
// scores and review schedules.
package mastery

import (
	"time"

	"github.com/abhisek/studypath/internal/spacedrep"
	"github.com/abhisek/studypath/internal/store"
)

// Observation is one graded answer in a submission batch.
type Observation struct {
	IsCorrect  bool
	TimeMs     *int
	Confidence *int // 1-5, nil when not reported
}

// Engine computes mastery updates. The zero value is not usable; call
// NewEngine.
type Engine struct {
	// SimilaritySignal is the value of the similarity input, in [0, 1].
	SimilaritySignal float64
}

// NewEngine returns an engine with the default similarity signal.
func NewEngine() *Engine {
	return &Engine{SimilaritySignal: DefaultSimilaritySignal}
}

// Update returns the mastery row after applying batch. prev is the stored
// row, or nil if the pair has never been scored. history summarizes the
// full attempt log for the pair and should already include the batch; the
// attempt service always passes it that way. A zero history makes accuracy
// come from the batch alone, which lets callers score a batch without a
// store.
//
// An empty batch returns prev unchanged (or a fresh row when prev is nil).
func (e *Engine) Update(prev *store.MasteryScore, studentID, conceptID string, batch []Observation, history store.AttemptSummary, now time.Time) store.MasteryScore {
	row := newRow(studentID, conceptID)
	if prev != nil {
		row = *prev
	}
	if len(batch) == 0 {
		return row
	}

	row.ExposureCount += len(batch)
	row.Accuracy = accuracy(history, batch)

	conf := resolveConfidence(batch, row.Confidence)
	row.Confidence = conf / MaxConfidence

	score := AccuracyWeight*row.Accuracy +
		TimeWeight*TimeSignal(batch) +
		ExposureWeight*ExposureSignal(row.ExposureCount) +
		ConfidenceWeight*row.Confidence +
		SimilarityWeight*clamp(e.SimilaritySignal, 0, 1)
	row.Score = round3(clamp(score, 0, 1))

	row.Stability, row.NextReviewDue = spacedrep.Schedule(row.Stability, row.Accuracy, now)
	row.LastReviewed = now
	return row
}

func newRow(studentID, conceptID string) store.MasteryScore {
	return store.MasteryScore{
		StudentID: studentID,
		ConceptID: conceptID,
		Score:     0,
		Stability: spacedrep.InitialStability,
	}
}

// accuracy is the history's correct ratio, or the batch's when history is
// empty.
func accuracy(history store.AttemptSummary, batch []Observation) float64 {
	if history.Total > 0 {
		return clamp(float64(history.Correct)/float64(history.Total), 0, 1)
	}
	correct := 0
	for _, o := range batch {
		if o.IsCorrect {
			correct++
		}
	}
	return float64(correct) / float64(len(batch))
}
