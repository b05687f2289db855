package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors[text], nil
}

func (s *stubEmbedder) Model() string {
	return "stub-embedder"
}

func (s *stubEmbedder) Dimensions() int {
	return 2
}

func TestSimilarityIdenticalText(t *testing.T) {
	scorer := NewSimilarityService(NewLocalEmbedder())
	text := "Senior Go engineer with Kubernetes, PostgreSQL and gRPC experience"

	result := scorer.Score(context.Background(), text, text)

	require.NoError(t, result.Err)
	assert.InDelta(t, 1.0, result.Score, 0.0005)
}

func TestSimilarityUnrelatedText(t *testing.T) {
	scorer := NewSimilarityService(NewLocalEmbedder())

	result := scorer.Score(context.Background(),
		"Pastry chef specialised in croissants and sourdough",
		"Backend engineer: Go, Kafka, Terraform",
	)

	require.NoError(t, result.Err)
	assert.Less(t, result.Score, 1.0)
}

func TestSimilarityPartialOverlapRanksBetween(t *testing.T) {
	scorer := NewSimilarityService(NewLocalEmbedder())
	job := "golang developer postgres kubernetes"

	near := scorer.Score(context.Background(), "golang developer postgres", job)
	far := scorer.Score(context.Background(), "florist weddings bouquets", job)

	assert.Greater(t, near.Score, far.Score)
	assert.Less(t, near.Score, 1.0)
}

func TestSimilarityEmptyTextScoresZero(t *testing.T) {
	result := NewSimilarityService(NewLocalEmbedder()).Score(context.Background(), "", "anything")

	require.NoError(t, result.Err)
	assert.Equal(t, 0.0, result.Score)
}

func TestSimilarityRoundsToThreeDecimals(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"a": {1, 0},
		"b": {1, 1},
	}}

	result := NewSimilarityService(embedder).Score(context.Background(), "a", "b")

	require.NoError(t, result.Err)
	assert.Equal(t, 0.707, result.Score)
}

func TestSimilarityEmbedderFailure(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("quota exceeded")}

	result := NewSimilarityService(embedder).Score(context.Background(), "a", "b")

	assert.True(t, result.Degraded())
	assert.ErrorContains(t, result.Err, "quota exceeded")
}

func TestSimilaritySizeMismatch(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"a": {1, 0},
		"b": {1, 0, 1},
	}}

	result := NewSimilarityService(embedder).Score(context.Background(), "a", "b")

	assert.ErrorContains(t, result.Err, "size mismatch")
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1}, []float32{1, 1}))
}

func TestLocalEmbedderDeterministic(t *testing.T) {
	e := NewLocalEmbedder()

	a, err := e.Embed(context.Background(), "C++ and C# developer")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "c++ AND c# Developer!")
	require.NoError(t, err)

	assert.Len(t, a, LocalEmbeddingDims)
	assert.Equal(t, LocalEmbeddingDims, e.Dimensions())
	assert.Equal(t, a, b)
}

func TestTruncateUTF8KeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "short", truncateUTF8("short", 10))
	assert.Equal(t, "abc", truncateUTF8("abcdef", 3))

	// "é" is two bytes, a cut at byte 3 would split it
	got := truncateUTF8("abé", 3)
	assert.Equal(t, "ab", got)
	assert.True(t, utf8.ValidString(got))

	long := strings.Repeat("José ", maxEmbeddingBytes/5) + "é"
	got = truncateUTF8(long, maxEmbeddingBytes)
	assert.LessOrEqual(t, len(got), maxEmbeddingBytes)
	assert.True(t, utf8.ValidString(got))
}

func TestCheckVectorSize(t *testing.T) {
	info := func(size uint64) *qdrant.CollectionInfo {
		return &qdrant.CollectionInfo{Config: &qdrant.CollectionConfig{
			Params: &qdrant.CollectionParams{
				VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{Size: size, Distance: qdrant.Distance_Cosine}),
			},
		}}
	}

	assert.NoError(t, checkVectorSize(info(768), 768))
	assert.ErrorIs(t, checkVectorSize(info(768), 3072), ErrVectorSizeMismatch)
}

type memoryCache struct {
	points      map[string][]float32
	lookupErr   error
	storeErr    error
	storedCount int
}

func (m *memoryCache) InitCollection(context.Context) error { return nil }

func (m *memoryCache) Lookup(_ context.Context, model, text string) ([]float32, bool, error) {
	if m.lookupErr != nil {
		return nil, false, m.lookupErr
	}
	v, ok := m.points[CachePointID(model, text)]
	return v, ok, nil
}

func (m *memoryCache) Store(_ context.Context, model, text string, embedding []float32) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	m.storedCount++
	m.points[CachePointID(model, text)] = embedding
	return nil
}

func TestCachingEmbedderReusesVectors(t *testing.T) {
	inner := &stubEmbedder{vectors: map[string][]float32{"job": {0.5, 0.5}}}
	cache := &memoryCache{points: map[string][]float32{}}
	e := NewCachingEmbedder(inner, cache, zap.NewNop())

	first, err := e.Embed(context.Background(), "job")
	require.NoError(t, err)
	second, err := e.Embed(context.Background(), "job")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, cache.storedCount)
	assert.Equal(t, "stub-embedder", e.Model())
}

func TestCachingEmbedderIgnoresCacheErrors(t *testing.T) {
	inner := &stubEmbedder{vectors: map[string][]float32{"job": {1}}}
	cache := &memoryCache{
		points:    map[string][]float32{},
		lookupErr: errors.New("qdrant down"),
		storeErr:  errors.New("qdrant down"),
	}

	v, err := NewCachingEmbedder(inner, cache, zap.NewNop()).Embed(context.Background(), "job")

	require.NoError(t, err)
	assert.Equal(t, []float32{1}, v)
}

func TestCachePointIDDependsOnModel(t *testing.T) {
	assert.Equal(t, CachePointID("m", "text"), CachePointID("m", "text"))
	assert.NotEqual(t, CachePointID("m1", "text"), CachePointID("m2", "text"))
}
