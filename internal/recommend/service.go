package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/studypath/internal/conceptgraph"
	"github.com/abhisek/studypath/internal/logger"
	"github.com/abhisek/studypath/internal/metrics"
	"github.com/abhisek/studypath/internal/store"
)

// Service serves recommendations, weak topics and mastery overviews.
type Service struct {
	uow   store.UnitOfWork
	cache Cache
	log   *logger.Logger
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables result caching.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// NewService creates a recommendation service.
func NewService(uow store.UnitOfWork, log *logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{uow: uow, log: log, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// courseState is everything the read paths need for one student and course.
type courseState struct {
	graph  *conceptgraph.Graph
	scores map[string]store.MasteryScore
}

func (s *Service) load(ctx context.Context, studentID, courseID string) (*courseState, error) {
	r := s.uow.Repos()
	g, err := conceptgraph.Load(ctx, r, courseID)
	if err != nil {
		return nil, err
	}
	concepts := g.Concepts()
	ids := make([]string, len(concepts))
	for i, c := range concepts {
		ids[i] = c.ID
	}
	rows, err := r.Mastery.ListByStudent(ctx, studentID, ids)
	if err != nil {
		return nil, fmt.Errorf("list mastery: %w", err)
	}
	scores := make(map[string]store.MasteryScore, len(rows))
	for _, m := range rows {
		scores[m.ConceptID] = m
	}
	return &courseState{graph: g, scores: scores}, nil
}

// Recommend returns the ranked study list for the student in the course.
// An unknown course or a course without concepts yields an empty list.
func (s *Service) Recommend(ctx context.Context, studentID, courseID string) (*Result, error) {
	if s.cache != nil {
		res, ok, err := s.cache.Get(ctx, studentID, courseID)
		switch {
		case err != nil:
			s.log.Warn("recommendation cache read failed", "error", err)
		case ok:
			metrics.RecommendationCacheHits.Inc()
			return res, nil
		default:
			metrics.RecommendationCacheMisses.Inc()
		}
	}

	st, err := s.load(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	recs, overall := Rank(st.graph.Concepts(), st.scores, st.graph.DependencyCounts(), s.now().UTC())
	res := &Result{
		StudentID:       studentID,
		CourseID:        courseID,
		OverallMastery:  overall,
		Recommendations: recs,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, res); err != nil {
			s.log.Warn("recommendation cache write failed", "error", err)
		}
	}
	return res, nil
}

// Invalidate drops cached results for the student. It is called after
// every submission that changes mastery.
func (s *Service) Invalidate(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, studentID); err != nil {
		s.log.Warn("recommendation cache invalidation failed", "student", studentID, "error", err)
	}
}
