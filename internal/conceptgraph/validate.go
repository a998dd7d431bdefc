package conceptgraph

import (
	"fmt"
	"strings"
)

// Report lists structural problems in a graph. A graph with problems is
// still usable; dependency counts treat cycles as plain edges.
type Report struct {
	// Cycle holds the names of concepts on or behind a prerequisite cycle.
	Cycle []string
	// Dangling describes edges whose endpoints are not in the graph.
	Dangling []string
	// SelfEdges describes edges from a concept to itself.
	SelfEdges []string
}

// OK reports whether no problems were found.
func (r *Report) OK() bool {
	return len(r.Cycle) == 0 && len(r.Dangling) == 0 && len(r.SelfEdges) == 0
}

// Err returns the problems as a single error, or nil.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	var errs []string
	if len(r.Cycle) > 0 {
		errs = append(errs, fmt.Sprintf("cycle detected involving concepts: %s", strings.Join(r.Cycle, ", ")))
	}
	errs = append(errs, r.Dangling...)
	errs = append(errs, r.SelfEdges...)
	return fmt.Errorf("concept graph validation failed:\n  %s", strings.Join(errs, "\n  "))
}

// Validate checks the graph for cycles (Kahn's algorithm), dangling and
// self edges.
func (g *Graph) Validate() *Report {
	r := &Report{}

	placed := make(map[string]bool, len(g.topoOrder))
	for _, id := range g.topoOrder {
		placed[id] = true
	}
	for _, c := range g.sortedByName() {
		if !placed[c.ID] {
			r.Cycle = append(r.Cycle, c.Name)
		}
	}

	for _, e := range g.edges {
		if e.SourceID == e.TargetID {
			r.SelfEdges = append(r.SelfEdges, fmt.Sprintf("%s edge from %q to itself", e.Relation, g.name(e.SourceID)))
			continue
		}
		if _, ok := g.byID[e.SourceID]; !ok {
			r.Dangling = append(r.Dangling, fmt.Sprintf("%s edge references nonexistent source %q", e.Relation, e.SourceID))
		}
		if _, ok := g.byID[e.TargetID]; !ok {
			r.Dangling = append(r.Dangling, fmt.Sprintf("%s edge references nonexistent target %q", e.Relation, e.TargetID))
		}
	}
	return r
}

func (g *Graph) name(id string) string {
	if c, ok := g.byID[id]; ok {
		return c.Name
	}
	return id
}
