// Package conceptgraph builds per-course concept graphs from stored edges
// and extracts concepts and relations from course material.
package conceptgraph

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/abhisek/studypath/internal/store"
)

// Graph is an immutable view over a course's concepts and edges. Dependency
// queries only consider prerequisite edges, read as "source must be learned
// before target".
type Graph struct {
	concepts      []store.Concept
	byID          map[string]*store.Concept
	edges         []store.ConceptEdge
	prerequisites map[string][]string // target -> sources
	dependents    map[string][]string // source -> targets
	topoOrder     []string
}

// Load builds the graph for a course.
func Load(ctx context.Context, repos store.Repos, courseID string) (*Graph, error) {
	concepts, err := repos.Concepts.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list concepts: %w", err)
	}
	edges, err := repos.Concepts.ListEdges(ctx, courseID, "")
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	return New(concepts, edges), nil
}

// New builds a graph from concepts and edges of any relation.
func New(concepts []store.Concept, edges []store.ConceptEdge) *Graph {
	g := &Graph{
		concepts:      slices.Clone(concepts),
		byID:          make(map[string]*store.Concept, len(concepts)),
		edges:         slices.Clone(edges),
		prerequisites: make(map[string][]string),
		dependents:    make(map[string][]string),
	}
	for i := range g.concepts {
		g.byID[g.concepts[i].ID] = &g.concepts[i]
	}
	for _, e := range g.edges {
		if e.Relation != store.RelationPrerequisite {
			continue
		}
		g.dependents[e.SourceID] = append(g.dependents[e.SourceID], e.TargetID)
		g.prerequisites[e.TargetID] = append(g.prerequisites[e.TargetID], e.SourceID)
	}
	g.topoOrder = g.kahn()
	return g
}

// kahn returns the acyclic part of the graph in topological order. Ties are
// broken by concept name. Concepts on or behind a cycle are left out.
func (g *Graph) kahn() []string {
	inDegree := make(map[string]int, len(g.concepts))
	for _, c := range g.concepts {
		for _, src := range g.prerequisites[c.ID] {
			if _, ok := g.byID[src]; ok {
				inDegree[c.ID]++
			}
		}
	}

	var queue []string
	for _, c := range g.sortedByName() {
		if inDegree[c.ID] == 0 {
			queue = append(queue, c.ID)
		}
	}

	var order []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		next := g.conceptsFor(g.dependents[id])
		for _, dep := range next {
			inDegree[dep.ID]--
			if inDegree[dep.ID] == 0 {
				queue = append(queue, dep.ID)
			}
		}
	}
	return order
}

func (g *Graph) sortedByName() []store.Concept {
	out := slices.Clone(g.concepts)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// conceptsFor resolves ids to concepts sorted by name, skipping unknown ids.
func (g *Graph) conceptsFor(ids []string) []store.Concept {
	out := make([]store.Concept, 0, len(ids))
	for _, id := range ids {
		if c, ok := g.byID[id]; ok {
			out = append(out, *c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Concept returns a concept by id.
func (g *Graph) Concept(id string) (store.Concept, bool) {
	c, ok := g.byID[id]
	if !ok {
		return store.Concept{}, false
	}
	return *c, true
}

// Concepts returns all concepts in the order they were loaded.
func (g *Graph) Concepts() []store.Concept {
	return slices.Clone(g.concepts)
}

// Edges returns all edges, of every relation.
func (g *Graph) Edges() []store.ConceptEdge {
	return slices.Clone(g.edges)
}

// DependencyCount is the number of prerequisite edges whose source is id,
// i.e. how many topics list id as a prerequisite. On a cyclic graph every
// member still counts its outgoing edges.
func (g *Graph) DependencyCount(id string) int {
	return len(g.dependents[id])
}

// DependencyCounts returns DependencyCount for every concept in the graph.
func (g *Graph) DependencyCounts() map[string]int {
	out := make(map[string]int, len(g.concepts))
	for _, c := range g.concepts {
		out[c.ID] = len(g.dependents[c.ID])
	}
	return out
}

// Prerequisites returns the direct prerequisites of id, sorted by name.
func (g *Graph) Prerequisites(id string) []store.Concept {
	return g.conceptsFor(g.prerequisites[id])
}

// Dependents returns the concepts that list id as a prerequisite, sorted by
// name.
func (g *Graph) Dependents(id string) []store.Concept {
	return g.conceptsFor(g.dependents[id])
}

// Roots returns concepts with no prerequisites, sorted by name.
func (g *Graph) Roots() []store.Concept {
	var out []store.Concept
	for _, c := range g.sortedByName() {
		if len(g.prerequisites[c.ID]) == 0 {
			out = append(out, c)
		}
	}
	return out
}

// TopoOrder returns concepts so that prerequisites come before the topics
// that need them. Concepts caught in a cycle follow at the end, by name.
func (g *Graph) TopoOrder() []store.Concept {
	out := make([]store.Concept, 0, len(g.concepts))
	placed := make(map[string]bool, len(g.topoOrder))
	for _, id := range g.topoOrder {
		out = append(out, *g.byID[id])
		placed[id] = true
	}
	for _, c := range g.sortedByName() {
		if !placed[c.ID] {
			out = append(out, c)
		}
	}
	return out
}
