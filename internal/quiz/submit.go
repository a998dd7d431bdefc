package quiz

import (
	"context"
	"math"
	"sort"

	"github.com/abhisek/studypath/internal/mastery"
	"github.com/abhisek/studypath/internal/metrics"
	"github.com/abhisek/studypath/internal/store"
)

// Submit grades answers, appends one attempt per known question and
// updates mastery once per concept touched, all in one transaction.
// Answers to unknown questions are skipped.
func (s *Service) Submit(ctx context.Context, studentID string, answers []Answer) (*SubmitResult, error) {
	var res *SubmitResult
	err := s.submit(ctx, studentID, answers, func(r store.Repos, sr *SubmitResult) error {
		res = sr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// submit runs the grading transaction and calls then with the result
// inside the same transaction.
func (s *Service) submit(ctx context.Context, studentID string, answers []Answer, then func(store.Repos, *SubmitResult) error) error {
	ids := make([]string, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.QuestionID)
	}
	questions, err := s.uow.Repos().Questions.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[string]store.Question, len(questions))
	keys := map[string]bool{}
	for _, q := range questions {
		byID[q.ID] = q
		if q.ConceptID != "" {
			keys[store.MasteryKey(studentID, q.ConceptID)] = true
		}
	}
	lockKeys := make([]string, 0, len(keys))
	for k := range keys {
		lockKeys = append(lockKeys, k)
	}
	sort.Strings(lockKeys)
	unlock := s.uow.Lock(lockKeys...)
	defer unlock()

	err = s.uow.InTx(ctx, func(r store.Repos) error {
		res := &SubmitResult{Results: []QuestionResult{}, MasteryUpdates: []MasteryUpdate{}}
		batches := map[string][]mastery.Observation{}
		var order []string

		for _, a := range answers {
			q, ok := byID[a.QuestionID]
			if !ok {
				continue
			}
			correct := Matches(a.Selected, q.CorrectAnswer)
			if err := r.Attempts.Append(ctx, &store.Attempt{
				StudentID:      studentID,
				QuestionID:     q.ID,
				ConceptID:      q.ConceptID,
				SelectedAnswer: a.Selected,
				IsCorrect:      correct,
				ResponseTimeMs: a.ResponseTimeMs,
				Confidence:     a.Confidence,
				CreatedAt:      s.now().UTC(),
			}); err != nil {
				return err
			}
			res.Results = append(res.Results, QuestionResult{
				QuestionID:    q.ID,
				Correct:       correct,
				CorrectAnswer: q.CorrectAnswer,
				Explanation:   q.Explanation,
			})
			res.Total++
			if correct {
				res.Score++
				metrics.QuizAnswers.WithLabelValues("correct").Inc()
			} else {
				metrics.QuizAnswers.WithLabelValues("incorrect").Inc()
			}

			if q.ConceptID == "" {
				continue
			}
			if _, seen := batches[q.ConceptID]; !seen {
				order = append(order, q.ConceptID)
			}
			batches[q.ConceptID] = append(batches[q.ConceptID], mastery.Observation{
				IsCorrect:  correct,
				TimeMs:     a.ResponseTimeMs,
				Confidence: a.Confidence,
			})
		}

		if len(order) > 0 {
			concepts, err := r.Concepts.ListByIDs(ctx, order)
			if err != nil {
				return err
			}
			names := make(map[string]string, len(concepts))
			for _, c := range concepts {
				names[c.ID] = c.Name
			}
			for _, cid := range order {
				row, err := s.mastery.ApplyBatch(ctx, r, studentID, cid, batches[cid])
				if err != nil {
					return err
				}
				name, ok := names[cid]
				if !ok {
					name = "unknown"
				}
				res.MasteryUpdates = append(res.MasteryUpdates, MasteryUpdate{
					ConceptID:   cid,
					ConceptName: name,
					NewScore:    row.Score,
				})
			}
		}

		if res.Total > 0 {
			res.Percentage = math.Round(float64(res.Score)/float64(res.Total)*1000) / 10
		}
		return then(r, res)
	})
	if err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, studentID)
	}
	return nil
}
