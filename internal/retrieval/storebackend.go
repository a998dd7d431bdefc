package retrieval

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/abhisek/studypath/internal/llm"
	"github.com/abhisek/studypath/internal/metrics"
	"github.com/abhisek/studypath/internal/store"
)

// StoreBackend ranks a course's stored chunk embeddings by cosine
// similarity to the query.
type StoreBackend struct {
	uow store.UnitOfWork
	emb llm.Embedder
}

// NewStoreBackend creates a brute-force backend over the chunk table.
func NewStoreBackend(uow store.UnitOfWork, emb llm.Embedder) *StoreBackend {
	return &StoreBackend{uow: uow, emb: emb}
}

func (b *StoreBackend) Name() string { return BackendStore }

// Index is a no-op: embeddings are stored alongside the chunks.
func (b *StoreBackend) Index(context.Context, []store.Chunk) error { return nil }

func (b *StoreBackend) Search(ctx context.Context, query, courseID string, k int) (passages []Passage, err error) {
	start := time.Now()
	defer func() { metrics.RecordRetrieval(BackendStore, err, time.Since(start)) }()

	chunks, err := b.uow.Repos().Chunks.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 || k <= 0 {
		return nil, nil
	}
	vecs, err := b.emb.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	q := vecs[0]

	for _, c := range chunks {
		if c.Embedding == nil {
			continue
		}
		passages = append(passages, Passage{
			ChunkID:    c.ID,
			CourseID:   c.CourseID,
			Text:       c.Text,
			SourceName: c.SourceName,
			Score:      llm.Cosine(q, c.Embedding),
		})
	}
	sort.SliceStable(passages, func(i, j int) bool { return passages[i].Score > passages[j].Score })
	if len(passages) > k {
		passages = passages[:k]
	}
	return passages, nil
}
