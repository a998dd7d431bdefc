package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/abhisek/studypath/internal/llm"
	"github.com/abhisek/studypath/internal/logger"
	"github.com/abhisek/studypath/internal/metrics"
	"github.com/abhisek/studypath/internal/store"
)

const maxErrorBodyBytes = 1024

var pointIDNamespace = uuid.MustParse("6d4b6f5e-2f0a-4c55-9a43-1f7c2c8de0b1")

// QdrantBackend stores chunk vectors in a Qdrant collection over its REST
// API. Every call runs through a circuit breaker.
type QdrantBackend struct {
	baseURL    string
	collection string
	http       *http.Client
	breaker    *gobreaker.CircuitBreaker[any]
	emb        llm.Embedder
	log        *logger.Logger

	ensureMu sync.Mutex
	ensured    bool
}

type qdrantEnvelope struct {
	Result json.RawMessage `json:"result"`
	Status json.RawMessage `json:"status"`
}

type qdrantHit struct {
	Score   float64        `json:"score"`
	Payload qdrantPayload `json:"payload"`
}

type qdrantPayload struct {
	ChunkID    string `json:"chunk_id"`
	CourseID   string `json:"course_id"`
	Text       string `json:"text"`
	SourceName string `json:"source_name"`
}

// StatusError is a non-2xx Qdrant response.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("qdrant %s: http status=%d body=%q", e.Op, e.StatusCode, e.Body)
}

// NewQdrant creates a Qdrant backend. The collection is created on the
// first Index call when it does not exist.
func NewQdrant(cfg Config, emb llm.Embedder, log *logger.Logger) *QdrantBackend {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("backend", BackendQdrant, "collection", cfg.Collection)
	return &QdrantBackend{
		baseURL:    strings.TrimRight(cfg.QdrantURL, "/"),
		collection: cfg.Collection,
		http:       &http.Client{Timeout: 10 * time.Second},
		breaker:    newBreaker("qdrant", cfg.Breaker, log),
		emb:        emb,
		log:        log,
	}
}

func newBreaker(name string, cfg BreakerConfig, log *logger.Logger) *gobreaker.CircuitBreaker[any] {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerGauge(to))
			log.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
}

func breakerGauge(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func (q *QdrantBackend) Name() string { return BackendQdrant }

// BreakerState reports the breaker state as a string.
func (q *QdrantBackend) BreakerState() string {
	return q.breaker.State().String()
}

// Index upserts one point per chunk. Chunks without embeddings are skipped.
func (q *QdrantBackend) Index(ctx context.Context, chunks []store.Chunk) error {
	points := make([]map[string]any, 0, len(chunks))
	dims := 0
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		dims = len(c.Embedding)
		points = append(points, map[string]any{
			"id":     uuid.NewSHA1(pointIDNamespace, []byte(c.ID)).String(),
			"vector": c.Embedding,
			"payload": qdrantPayload{
				ChunkID:    c.ID,
				CourseID:   c.CourseID,
				Text:       c.Text,
				SourceName: c.SourceName,
			},
		})
	}
	if len(points) == 0 {
		return nil
	}
	if err := q.ensureCollection(ctx, dims); err != nil {
		return err
	}
	return q.call(ctx, "upsert", http.MethodPut, q.collectionPath("/points?wait=true"), map[string]any{"points": points}, nil)
}

func (q *QdrantBackend) Search(ctx context.Context, query, courseID string, k int) (passages []Passage, err error) {
	start := time.Now()
	defer func() { metrics.RecordRetrieval(BackendQdrant, err, time.Since(start)) }()

	if k <= 0 {
		return nil, nil
	}
	vecs, err := q.emb.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	req := map[string]any{
		"vector":       vecs[0],
		"limit":        k,
		"with_payload": true,
		"filter": map[string]any{
			"must": []map[string]any{
				{"key": "course_id", "match": map[string]any{"value": courseID}},
			},
		},
	}
	var hits []qdrantHit
	if err := q.call(ctx, "search", http.MethodPost, q.collectionPath("/points/search"), req, &hits); err != nil {
		return nil, err
	}
	passages = make([]Passage, 0, len(hits))
	for _, h := range hits {
		passages = append(passages, Passage{
			ChunkID:    h.Payload.ChunkID,
			CourseID:   h.Payload.CourseID,
			Text:       h.Payload.Text,
			SourceName: h.Payload.SourceName,
			Score:      h.Score,
		})
	}
	return passages, nil
}

func (q *QdrantBackend) ensureCollection(ctx context.Context, dims int) error {
	q.ensureMu.Lock()
	defer q.ensureMu.Unlock()
	if q.ensured {
		return nil
	}
	err := q.call(ctx, "get_collection", http.MethodGet, q.collectionPath(""), nil, nil)
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		body := map[string]any{"vectors": map[string]any{"size": dims, "distance": "Cosine"}}
		err = q.call(ctx, "create_collection", http.MethodPut, q.collectionPath(""), body, nil)
		if err == nil {
			q.log.Info("created qdrant collection", "dimensions", dims)
		}
	}
	if err != nil {
		return err
	}
	q.ensured = true
	return nil
}

func (q *QdrantBackend) collectionPath(suffix string) string {
	return "/collections/" + q.collection + suffix
}

// call runs one request through the breaker. A 404 does not count as a
// breaker failure.
func (q *QdrantBackend) call(ctx context.Context, op, method, path string, in, out any) error {
	var callErr error
	_, err := q.breaker.Execute(func() (any, error) {
		callErr = q.doJSON(ctx, op, method, path, in, out)
		var se *StatusError
		if errors.As(callErr, &se) && se.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, callErr
	})
	if err != nil {
		return fmt.Errorf("qdrant %s: %w", op, err)
	}
	return callErr
}

func (q *QdrantBackend) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		body = &buf
	}
	req, err := http.NewRequestWithContext(ctx, method, q.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := q.http.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(raw) > maxErrorBodyBytes {
			raw = raw[:maxErrorBodyBytes]
		}
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	var env qdrantEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode %s envelope: %w", op, err)
	}
	if len(env.Result) == 0 || string(env.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("decode %s result: %w", op, err)
	}
	return nil
}
