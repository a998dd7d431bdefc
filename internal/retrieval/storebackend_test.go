package retrieval

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studypath/internal/llm"
	"github.com/abhisek/studypath/internal/store/storetest"
)

const biology = `Photosynthesis takes place in the chloroplast. Light reactions split water and release oxygen.

The Calvin cycle fixes carbon dioxide into sugars using ATP and NADPH.

Cellular respiration breaks glucose down in the mitochondria to produce ATP.`

func TestIngestAndSearch_StoreBackend(t *testing.T) {
	st := storetest.Open(t)
	emb := llm.NewHashEmbedder(128)
	backend := NewStoreBackend(st, emb)
	ing := NewIngester(st, emb, backend, nil)
	ing.chunker = Chunker{Size: 120, Overlap: 0, Separators: DefaultSeparators}
	ctx := context.Background()

	res, err := ing.Ingest(ctx, "bio", "Biology", "notes.txt", biology)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Chunks)

	course, err := st.Repos().Courses.Get(ctx, "bio")
	require.NoError(t, err)
	assert.Equal(t, "Biology", course.Name)

	passages, err := backend.Search(ctx, "mitochondria glucose respiration", "bio", 2)
	require.NoError(t, err)
	require.Len(t, passages, 2)
	assert.True(t, strings.Contains(passages[0].Text, "mitochondria"), "top passage: %q", passages[0].Text)
	assert.Equal(t, "notes.txt", passages[0].SourceName)
	assert.GreaterOrEqual(t, passages[0].Score, passages[1].Score)

	other, err := backend.Search(ctx, "mitochondria", "chemistry", 6)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestIngest_Blank(t *testing.T) {
	st := storetest.Open(t)
	emb := llm.NewHashEmbedder(64)
	ing := NewIngester(st, emb, NewStoreBackend(st, emb), nil)

	res, err := ing.Ingest(context.Background(), "bio", "", "empty.txt", "  ")
	require.NoError(t, err)
	assert.Zero(t, res.Chunks)
}

func TestIngest_AppendsOrdinals(t *testing.T) {
	st := storetest.Open(t)
	emb := llm.NewHashEmbedder(64)
	ing := NewIngester(st, emb, NewStoreBackend(st, emb), nil)
	ctx := context.Background()

	_, err := ing.Ingest(ctx, "bio", "", "a.txt", "first source")
	require.NoError(t, err)
	_, err = ing.Ingest(ctx, "bio", "", "b.txt", "second source")
	require.NoError(t, err)

	chunks, err := st.Repos().Chunks.ListByCourse(ctx, "bio")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 0, chunks[0].Ordinal)
	assert.Equal(t, 1, chunks[1].Ordinal)
	assert.Equal(t, "b.txt", chunks[1].SourceName)
	assert.Len(t, chunks[1].Embedding, 64)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"qdrant ok", Config{Backend: BackendQdrant, QdrantURL: "http://localhost:6333", Collection: "c"}, false},
		{"qdrant no url", Config{Backend: BackendQdrant, Collection: "c"}, true},
		{"unknown", Config{Backend: "pinecone"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
