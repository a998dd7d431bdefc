package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder(64)
	a, err := e.Embed(context.Background(), []string{"Cell membrane", "cell membrane"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a) != 2 || len(a[0]) != 64 {
		t.Fatalf("shape = %d x %d, want 2 x 64", len(a), len(a[0]))
	}
	if sim := Cosine(a[0], a[1]); sim < 0.999 {
		t.Errorf("case-only difference similarity = %v, want ~1", sim)
	}
}

func TestHashEmbedder_SimilarTextsCloser(t *testing.T) {
	e := NewHashEmbedder(256)
	v, _ := e.Embed(context.Background(), []string{"photosynthesis", "photosynthesis process", "tax law"})
	near := Cosine(v[0], v[1])
	far := Cosine(v[0], v[2])
	if near <= far {
		t.Errorf("near = %v, far = %v; want near > far", near, far)
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2}, []float32{1, 2}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1}, []float32{1, 2}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 2}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); got < tt.want-1e-9 || got > tt.want+1e-9 {
				t.Errorf("Cosine = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOpenAIEmbedder_OrdersByIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.EmbeddingResponse{
			Object: "list",
			Data: []openai.Embedding{
				{Object: "embedding", Index: 1, Embedding: []float32{0, 1}},
				{Object: "embedding", Index: 0, Embedding: []float32{1, 0}},
			},
			Model: openai.SmallEmbedding3,
		})
	}))
	t.Cleanup(server.Close)

	e, err := NewOpenAIEmbedder(EmbeddingConfig{APIKey: "test-key", BaseURL: server.URL + "/v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := e.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0][0] != 1 || got[1][1] != 1 {
		t.Errorf("embeddings not in input order: %v", got)
	}
}

func TestNewEmbedder_UnknownProvider(t *testing.T) {
	if _, err := NewEmbedder(context.Background(), EmbeddingConfig{Provider: "nope"}); err == nil {
		t.Fatal("expected error")
	}
}
