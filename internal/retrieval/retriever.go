// Package retrieval chunks course material, indexes it and finds the
// passages most similar to a query.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/studypath/internal/llm"
	"github.com/abhisek/studypath/internal/logger"
	"github.com/abhisek/studypath/internal/store"
)

// Passage is a retrieved chunk with its similarity to the query.
type Passage struct {
	ChunkID    string  `json:"chunk_id"`
	CourseID   string  `json:"course_id"`
	Text       string  `json:"text"`
	SourceName string  `json:"source_name"`
	Score      float64 `json:"score"`
}

// Retriever finds the k passages of a course closest to query.
type Retriever interface {
	Search(ctx context.Context, query, courseID string, k int) ([]Passage, error)
}

// Backend is a Retriever that can also index newly stored chunks.
type Backend interface {
	Retriever
	Index(ctx context.Context, chunks []store.Chunk) error
	Name() string
}

// Backends.
const (
	BackendStore  = "store"
	BackendQdrant = "qdrant"
)

// Config selects and configures the retrieval backend.
type Config struct {
	Backend    string        `koanf:"backend"`
	QdrantURL  string        `koanf:"qdrant_url"`
	Collection string        `koanf:"collection"`
	Breaker    BreakerConfig `koanf:"breaker"`
}

// BreakerConfig tunes the circuit breaker around remote backends.
type BreakerConfig struct {
	FailureThreshold uint32        `koanf:"failure_threshold"`
	MaxRequests      uint32        `koanf:"max_requests"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout"`
}

// DefaultConfig searches embeddings stored in the database.
func DefaultConfig() Config {
	return Config{
		Backend:    BackendStore,
		Collection: "studypath_chunks",
		Breaker: BreakerConfig{
			FailureThreshold: 5,
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
		},
	}
}

// Validate checks the backend selection.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendStore, "":
		return nil
	case BackendQdrant:
		if c.QdrantURL == "" {
			return fmt.Errorf("retrieval.qdrant_url is required for the qdrant backend")
		}
		if c.Collection == "" {
			return fmt.Errorf("retrieval.collection is required for the qdrant backend")
		}
		return nil
	default:
		return fmt.Errorf("unknown retrieval backend: %q", c.Backend)
	}
}

// New builds the configured backend.
func New(cfg Config, uow store.UnitOfWork, emb llm.Embedder, log *logger.Logger) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Backend == BackendQdrant {
		return NewQdrant(cfg, emb, log), nil
	}
	return NewStoreBackend(uow, emb), nil
}

// JoinPassages concatenates passage texts with blank lines and truncates
// the result to maxChars characters.
func JoinPassages(passages []Passage, maxChars int) string {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}
	return truncate(strings.Join(texts, "\n\n"), maxChars)
}

func truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i]
		}
		n++
	}
	return s
}
