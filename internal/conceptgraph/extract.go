package conceptgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/studypath/internal/llm"
	"github.com/abhisek/studypath/internal/logger"
	"github.com/abhisek/studypath/internal/store"
)

const (
	// batchChars is the size after which accumulated chunk text is sent.
	batchChars = 1500
	// maxBatchChars caps the text of a single extraction request.
	maxBatchChars = 3000

	edgeConfidence = 0.7
)

// ExtractResult summarizes one extraction run.
type ExtractResult struct {
	Concepts    []string `json:"concepts"`
	NumConcepts int      `json:"num_concepts"`
	NumEdges    int      `json:"num_edges"`
	// FailedBatches counts batches skipped because the LLM call or its
	// output failed.
	FailedBatches int `json:"failed_batches"`
}

// Extractor derives concepts and relations from a course's chunks.
type Extractor struct {
	provider  llm.Provider
	embedder  llm.Embedder
	log       *logger.Logger
	threshold float64
}

// NewExtractor creates an Extractor.
func NewExtractor(provider llm.Provider, embedder llm.Embedder, log *logger.Logger) *Extractor {
	if log == nil {
		log = logger.Nop()
	}
	return &Extractor{provider: provider, embedder: embedder, log: log, threshold: DefaultMergeThreshold}
}

type extractionOutput struct {
	Concepts      []string `json:"concepts"`
	Relationships []struct {
		Source   string `json:"source"`
		Target   string `json:"target"`
		Relation string `json:"relation"`
	} `json:"relationships"`
}

type relationship struct {
	source, target string
	relation       store.Relation
}

// collected accumulates batch results, keeping first-seen order of names.
type collected struct {
	names []string
	seen  map[string]bool
	rels  []relationship
}

func (c *collected) addName(n string) {
	if !c.seen[n] {
		c.seen[n] = true
		c.names = append(c.names, n)
	}
}

// Extract reads every chunk of the course, asks the LLM for concepts in
// batches, merges near-duplicate names and stores concepts and edges in one
// transaction. Re-running it updates importance and adds new edges.
func (x *Extractor) Extract(ctx context.Context, uow store.UnitOfWork, courseID string) (*ExtractResult, error) {
	chunks, err := uow.Repos().Chunks.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	res := &ExtractResult{Concepts: []string{}}
	if len(chunks) == 0 {
		return res, nil
	}

	acc := &collected{seen: make(map[string]bool)}
	var batch strings.Builder
	for _, ch := range chunks {
		batch.WriteString(ch.Text)
		batch.WriteString("\n\n")
		if batch.Len() > batchChars {
			if !x.extractBatch(ctx, batch.String(), acc) {
				res.FailedBatches++
			}
			batch.Reset()
		}
	}
	if strings.TrimSpace(batch.String()) != "" {
		if !x.extractBatch(ctx, batch.String(), acc) {
			res.FailedBatches++
		}
	}
	if len(acc.names) == 0 {
		return res, nil
	}

	groups, err := groupSimilar(ctx, x.embedder, acc.names, x.threshold)
	if err != nil {
		return nil, err
	}

	canonical := make(map[string]string, len(acc.names))
	for _, g := range groups {
		for _, n := range g {
			canonical[n] = g[0]
		}
	}

	err = uow.InTx(ctx, func(r store.Repos) error {
		ids := make(map[string]string, len(groups))
		for _, g := range groups {
			c, err := r.Concepts.Upsert(ctx, store.Concept{
				CourseID:   courseID,
				Name:       g[0],
				Importance: importance(len(g)),
			})
			if err != nil {
				return fmt.Errorf("store concept %q: %w", g[0], err)
			}
			ids[g[0]] = c.ID
			res.Concepts = append(res.Concepts, g[0])
		}

		type edgeKey struct {
			src, tgt string
			rel      store.Relation
		}
		seen := make(map[edgeKey]bool)
		for _, rel := range acc.rels {
			src, ok1 := ids[canonicalName(canonical, rel.source)]
			tgt, ok2 := ids[canonicalName(canonical, rel.target)]
			if !ok1 || !ok2 || src == tgt {
				continue
			}
			k := edgeKey{src, tgt, rel.relation}
			if seen[k] {
				continue
			}
			seen[k] = true
			added, err := r.Concepts.AddEdge(ctx, store.ConceptEdge{
				SourceID: src, TargetID: tgt, Relation: rel.relation, Confidence: edgeConfidence,
			})
			if err != nil {
				return fmt.Errorf("store edge: %w", err)
			}
			if added {
				res.NumEdges++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.NumConcepts = len(res.Concepts)
	x.log.Info("concepts extracted",
		"course", courseID,
		"concepts", res.NumConcepts,
		"edges", res.NumEdges,
		"failed_batches", res.FailedBatches,
	)
	return res, nil
}

// extractBatch sends one batch to the LLM and merges the result into acc.
// It reports false when the batch had to be skipped.
func (x *Extractor) extractBatch(ctx context.Context, text string, acc *collected) bool {
	ctx = llm.WithPurpose(ctx, llm.PurposeConceptExtract)
	resp, err := x.provider.Generate(ctx, llm.Request{
		System:    extractSystemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: extractUserPrompt + truncate(text, maxBatchChars)}},
		Schema:    ExtractionSchema,
		MaxTokens: 1024,
	})
	if err != nil {
		x.log.Warn("concept extraction batch failed", "error", err)
		return false
	}
	raw, err := llm.ExtractJSON(resp.Content)
	if err != nil {
		x.log.Warn("concept extraction batch unparseable", "error", err)
		return false
	}
	var out extractionOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		x.log.Warn("concept extraction batch unparseable", "error", err)
		return false
	}

	for _, c := range out.Concepts {
		if n := normalizeName(c); len(n) > 1 {
			acc.addName(n)
		}
	}
	for _, r := range out.Relationships {
		rel := store.Relation(strings.TrimSpace(r.Relation))
		if !rel.Valid() {
			continue
		}
		acc.rels = append(acc.rels, relationship{
			source:   normalizeName(r.Source),
			target:   normalizeName(r.Target),
			relation: rel,
		})
	}
	return true
}

func canonicalName(canonical map[string]string, name string) string {
	if c, ok := canonical[name]; ok {
		return c
	}
	return name
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// importance grows with the number of merged mentions, saturating at 3.
func importance(groupSize int) float64 {
	return min(float64(groupSize)/3.0, 1.0)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
