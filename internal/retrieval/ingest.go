package retrieval

import (
	"context"
	"fmt"

	"github.com/abhisek/studypath/internal/llm"
	"github.com/abhisek/studypath/internal/logger"
	"github.com/abhisek/studypath/internal/store"
)

// Ingester turns raw course material into stored, embedded and indexed
// chunks.
type Ingester struct {
	uow     store.UnitOfWork
	emb     llm.Embedder
	backend Backend
	chunker Chunker
	log     *logger.Logger
}

// IngestResult summarizes one ingestion.
type IngestResult struct {
	CourseID   string `json:"course_id"`
	SourceName string `json:"source_name"`
	Chunks     int    `json:"chunks"`
}

// NewIngester creates an ingester using the default chunker.
func NewIngester(uow store.UnitOfWork, emb llm.Embedder, backend Backend, log *logger.Logger) *Ingester {
	if log == nil {
		log = logger.Nop()
	}
	return &Ingester{uow: uow, emb: emb, backend: backend, chunker: NewChunker(), log: log}
}

// Ingest chunks text, embeds every chunk, stores the chunks under the
// course (creating it when absent) and indexes them in the backend.
func (in *Ingester) Ingest(ctx context.Context, courseID, courseName, sourceName, text string) (*IngestResult, error) {
	res := &IngestResult{CourseID: courseID, SourceName: sourceName}
	texts := in.chunker.Split(text)
	if len(texts) == 0 {
		return res, nil
	}

	vecs, err := in.emb.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vecs), len(texts))
	}

	chunks := make([]store.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = store.Chunk{CourseID: courseID, Text: t, SourceName: sourceName, Embedding: vecs[i]}
	}

	var stored []store.Chunk
	err = in.uow.InTx(ctx, func(r store.Repos) error {
		if courseName == "" {
			courseName = courseID
		}
		if _, err := r.Courses.Ensure(ctx, courseID, courseName); err != nil {
			return fmt.Errorf("ensure course: %w", err)
		}
		var err error
		stored, err = r.Chunks.Append(ctx, chunks)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := in.backend.Index(ctx, stored); err != nil {
		return nil, fmt.Errorf("index chunks: %w", err)
	}
	res.Chunks = len(stored)
	in.log.Info("ingested source", "course", courseID, "source", sourceName, "chunks", len(stored), "backend", in.backend.Name())
	return res, nil
}
