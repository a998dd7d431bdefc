// Package storetest provides in-memory stores and fixtures for tests.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/abhisek/studypath/internal/store"
)

// Open returns an in-memory SQLite store private to the test.
func Open(t testing.TB) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	s, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// Course creates a course with the named concepts, all at importance 0.5.
// Concepts are returned in the order given.
func Course(t testing.TB, s *store.Store, courseID string, names ...string) []store.Concept {
	t.Helper()
	ctx := context.Background()
	r := s.Repos()
	if _, err := r.Courses.Ensure(ctx, courseID, courseID); err != nil {
		t.Fatalf("ensure course: %v", err)
	}
	concepts := make([]store.Concept, 0, len(names))
	for _, n := range names {
		c, err := r.Concepts.Upsert(ctx, store.Concept{CourseID: courseID, Name: n, Importance: 0.5})
		if err != nil {
			t.Fatalf("upsert concept %q: %v", n, err)
		}
		concepts = append(concepts, *c)
	}
	return concepts
}

// Prerequisite stores a prerequisite edge src -> tgt.
func Prerequisite(t testing.TB, s *store.Store, src, tgt store.Concept) {
	t.Helper()
	_, err := s.Repos().Concepts.AddEdge(context.Background(), store.ConceptEdge{
		SourceID: src.ID, TargetID: tgt.ID, Relation: store.RelationPrerequisite, Confidence: 0.7,
	})
	if err != nil {
		t.Fatalf("add edge: %v", err)
	}
}

// Question stores a question for the concept with options A-D and "B) ..."
// as the correct answer.
func Question(t testing.TB, s *store.Store, c store.Concept) store.Question {
	t.Helper()
	q := store.Question{
		CourseID:      c.CourseID,
		ConceptID:     c.ID,
		Text:          "Which statement about " + c.Name + " is true?",
		Options:       []string{"A) one", "B) two", "C) three", "D) four"},
		CorrectAnswer: "B) two",
		Explanation:   "Two is right.",
		Difficulty:    "medium",
		BloomLevel:    "Remember",
	}
	if err := s.Repos().Questions.Create(context.Background(), &q); err != nil {
		t.Fatalf("create question: %v", err)
	}
	return q
}
