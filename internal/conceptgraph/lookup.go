package conceptgraph

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/studypath/internal/store"
)

// ErrConceptNotFound is returned when a concept does not exist in the
// requested course.
var ErrConceptNotFound = errors.New("concept not found")

// LookupConcept returns the concept if it belongs to courseID.
func LookupConcept(ctx context.Context, repos store.Repos, courseID, conceptID string) (*store.Concept, error) {
	c, err := repos.Concepts.Get(ctx, conceptID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrConceptNotFound, conceptID)
	}
	if err != nil {
		return nil, fmt.Errorf("get concept: %w", err)
	}
	if c.CourseID != courseID {
		return nil, fmt.Errorf("%w: %s not in course %s", ErrConceptNotFound, conceptID, courseID)
	}
	return c, nil
}
