package mastery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/studypath/internal/logger"
	"github.com/abhisek/studypath/internal/metrics"
	"github.com/abhisek/studypath/internal/store"
)

// Service persists engine updates through the repositories of the
// caller's unit of work.
type Service struct {
	engine *Engine
	log    *logger.Logger
	now    func() time.Time
}

// NewService creates a mastery service.
func NewService(engine *Engine, log *logger.Logger) *Service {
	if engine == nil {
		engine = NewEngine()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{engine: engine, log: log, now: time.Now}
}

// ApplyBatch updates the mastery row for (studentID, conceptID) with the
// given observations. The attempts for the batch must already be recorded
// in repos.Attempts. Callers serialize per key (see store.MasteryKey) and
// run this inside a transaction.
//
// For an empty batch nothing is written and the existing row (or nil) is
// returned.
func (s *Service) ApplyBatch(ctx context.Context, repos store.Repos, studentID, conceptID string, batch []Observation) (*store.MasteryScore, error) {
	prev, err := repos.Mastery.GetForUpdate(ctx, studentID, conceptID)
	if errors.Is(err, store.ErrNotFound) {
		prev = nil
	} else if err != nil {
		return nil, fmt.Errorf("load mastery: %w", err)
	}

	if len(batch) == 0 {
		return prev, nil
	}

	history, err := repos.Attempts.Summary(ctx, studentID, conceptID)
	if err != nil {
		return nil, fmt.Errorf("summarize attempts: %w", err)
	}

	next := s.engine.Update(prev, studentID, conceptID, batch, history, s.now().UTC())
	kind := "update"
	if next.ID == "" {
		kind = "insert"
	}
	if err := repos.Mastery.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("save mastery: %w", err)
	}

	metrics.MasteryUpdates.WithLabelValues(kind).Inc()
	metrics.MasteryScore.Observe(next.Score)
	s.log.Debug("mastery updated",
		"student", studentID,
		"concept", conceptID,
		"score", next.Score,
		"accuracy", next.Accuracy,
		"exposure", next.ExposureCount,
		"stability", next.Stability,
	)
	return &next, nil
}
