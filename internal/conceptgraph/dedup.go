package conceptgraph

import (
	"context"
	"fmt"

	"github.com/abhisek/studypath/internal/llm"
)

// DefaultMergeThreshold is the cosine similarity above which two concept
// names are merged.
const DefaultMergeThreshold = 0.85

// groupSimilar clusters names greedily: each unvisited name starts a group
// and absorbs every later unvisited name whose similarity exceeds
// threshold. The first name of a group is its canonical name.
func groupSimilar(ctx context.Context, emb llm.Embedder, names []string, threshold float64) ([][]string, error) {
	if len(names) <= 1 {
		groups := make([][]string, len(names))
		for i, n := range names {
			groups[i] = []string{n}
		}
		return groups, nil
	}

	vecs, err := emb.Embed(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("embed concept names: %w", err)
	}
	if len(vecs) != len(names) {
		return nil, fmt.Errorf("embed concept names: got %d vectors for %d names", len(vecs), len(names))
	}

	visited := make([]bool, len(names))
	var groups [][]string
	for i := range names {
		if visited[i] {
			continue
		}
		visited[i] = true
		group := []string{names[i]}
		for j := i + 1; j < len(names); j++ {
			if visited[j] {
				continue
			}
			if llm.Cosine(vecs[i], vecs[j]) > threshold {
				group = append(group, names[j])
				visited[j] = true
			}
		}
		groups = append(groups, group)
	}
	return groups, nil
}
