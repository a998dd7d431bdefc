package conceptgraph

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/studypath/internal/store"
	"github.com/abhisek/studypath/internal/store/storetest"
)

func concept(id, name string) store.Concept {
	return store.Concept{ID: id, CourseID: "c1", Name: name}
}

func prereq(src, tgt string) store.ConceptEdge {
	return store.ConceptEdge{SourceID: src, TargetID: tgt, Relation: store.RelationPrerequisite, Confidence: 0.7}
}

func names(cs []store.Concept) string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return strings.Join(out, ",")
}

func biologyGraph() *Graph {
	return New(
		[]store.Concept{
			concept("p", "photosynthesis"),
			concept("c", "cells"),
			concept("r", "respiration"),
			concept("e", "ecosystems"),
		},
		[]store.ConceptEdge{
			prereq("c", "p"),
			prereq("c", "r"),
			prereq("p", "e"),
			{SourceID: "p", TargetID: "r", Relation: store.RelationRelated},
		},
	)
}

func TestDependencyCount(t *testing.T) {
	g := biologyGraph()
	tests := []struct {
		id   string
		want int
	}{
		{"c", 2},
		{"p", 1}, // related edges don't count
		{"r", 0},
		{"missing", 0},
	}
	for _, tt := range tests {
		if got := g.DependencyCount(tt.id); got != tt.want {
			t.Errorf("DependencyCount(%q) = %d, want %d", tt.id, got, tt.want)
		}
	}
	counts := g.DependencyCounts()
	if len(counts) != 4 || counts["c"] != 2 || counts["e"] != 0 {
		t.Errorf("DependencyCounts = %v", counts)
	}
}

func TestPrerequisitesAndDependents(t *testing.T) {
	g := biologyGraph()
	if got := names(g.Dependents("c")); got != "photosynthesis,respiration" {
		t.Errorf("Dependents(c) = %s", got)
	}
	if got := names(g.Prerequisites("e")); got != "photosynthesis" {
		t.Errorf("Prerequisites(e) = %s", got)
	}
	if got := names(g.Roots()); got != "cells" {
		t.Errorf("Roots = %s", got)
	}
}

func TestTopoOrder(t *testing.T) {
	g := biologyGraph()
	if got := names(g.TopoOrder()); got != "cells,photosynthesis,respiration,ecosystems" {
		t.Errorf("TopoOrder = %s", got)
	}
}

func TestCyclicGraphIsAccepted(t *testing.T) {
	g := New(
		[]store.Concept{concept("a", "alpha"), concept("b", "beta"), concept("z", "zeta")},
		[]store.ConceptEdge{prereq("a", "b"), prereq("b", "a"), prereq("z", "a")},
	)
	// Each member of the cycle still counts its outgoing edges.
	if g.DependencyCount("a") != 1 || g.DependencyCount("b") != 1 || g.DependencyCount("z") != 1 {
		t.Errorf("counts = %v", g.DependencyCounts())
	}
	if got := names(g.TopoOrder()); got != "zeta,alpha,beta" {
		t.Errorf("TopoOrder = %s", got)
	}
}

func TestLoad(t *testing.T) {
	s := storetest.Open(t)
	cs := storetest.Course(t, s, "bio", "cells", "photosynthesis", "respiration")
	storetest.Prerequisite(t, s, cs[0], cs[1])
	storetest.Prerequisite(t, s, cs[0], cs[2])
	other := storetest.Course(t, s, "chem", "atoms", "bonds")
	storetest.Prerequisite(t, s, other[0], other[1])

	g, err := Load(context.Background(), s.Repos(), "bio")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(g.Concepts()) != 3 || len(g.Edges()) != 2 {
		t.Fatalf("loaded %d concepts, %d edges", len(g.Concepts()), len(g.Edges()))
	}
	if g.DependencyCount(cs[0].ID) != 2 {
		t.Errorf("DependencyCount(cells) = %d, want 2", g.DependencyCount(cs[0].ID))
	}
	if c, ok := g.Concept(cs[1].ID); !ok || c.Name != "photosynthesis" {
		t.Errorf("Concept = %+v, %v", c, ok)
	}
}

func TestLookupConcept(t *testing.T) {
	s := storetest.Open(t)
	bio := storetest.Course(t, s, "bio", "cells")
	storetest.Course(t, s, "chem", "atoms")
	ctx := context.Background()

	c, err := LookupConcept(ctx, s.Repos(), "bio", bio[0].ID)
	if err != nil || c.Name != "cells" {
		t.Fatalf("LookupConcept = %+v, %v", c, err)
	}
	if _, err := LookupConcept(ctx, s.Repos(), "chem", bio[0].ID); !errors.Is(err, ErrConceptNotFound) {
		t.Errorf("other course: err = %v, want ErrConceptNotFound", err)
	}
	if _, err := LookupConcept(ctx, s.Repos(), "bio", "missing"); !errors.Is(err, ErrConceptNotFound) {
		t.Errorf("missing: err = %v, want ErrConceptNotFound", err)
	}
}
