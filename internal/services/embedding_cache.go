package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// embeddingNamespace scopes cache point ids so the same text embedded by two
// models never collides.
var embeddingNamespace = uuid.MustParse("4f2b8c1e-6b7a-4d59-9a36-2f0f8c5d7e11")

var ErrVectorSizeMismatch = errors.New("qdrant collection vector size does not match the embedder")

type EmbeddingCache interface {
	InitCollection(ctx context.Context) error
	Lookup(ctx context.Context, model, text string) ([]float32, bool, error)
	Store(ctx context.Context, model, text string, embedding []float32) error
}

type qdrantEmbeddingCache struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantEmbeddingCache(urlStr, apiKey, collectionName string, vectorSize uint64) (EmbeddingCache, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantEmbeddingCache{
		client:         client,
		collectionName: collectionName,
		vectorSize:     vectorSize,
	}, nil
}

// CachePointID is the deterministic point id for a model/text pair.
func CachePointID(model, text string) string {
	return uuid.NewSHA1(embeddingNamespace, []byte(model+"\x00"+text)).String()
}

// InitCollection implements EmbeddingCache.
func (q *qdrantEmbeddingCache) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		info, err := q.client.GetCollectionInfo(ctx, q.collectionName)
		if err != nil {
			return fmt.Errorf("failed to get collection info: %w", err)
		}
		return checkVectorSize(info, q.vectorSize)
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// checkVectorSize rejects an existing collection built for another embedding
// size, since every upsert into it would fail.
func checkVectorSize(info *qdrant.CollectionInfo, want uint64) error {
	got := info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
	if got != want {
		return fmt.Errorf("%w: collection has %d, embedder produces %d", ErrVectorSizeMismatch, got, want)
	}
	return nil
}

// Lookup implements EmbeddingCache.
func (q *qdrantEmbeddingCache) Lookup(ctx context.Context, model, text string) ([]float32, bool, error) {
	points, err := q.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: q.collectionName,
		Ids:            []*qdrant.PointId{qdrant.NewID(CachePointID(model, text))},
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached embedding: %w", err)
	}

	if len(points) == 0 {
		return nil, false, nil
	}

	data := points[0].GetVectors().GetVector().GetData()
	if len(data) == 0 {
		return nil, false, nil
	}

	return data, true, nil
}

// Store implements EmbeddingCache.
func (q *qdrantEmbeddingCache) Store(ctx context.Context, model, text string, embedding []float32) error {
	if uint64(len(embedding)) != q.vectorSize {
		return fmt.Errorf("%w: got %d values, collection holds %d", ErrVectorSizeMismatch, len(embedding), q.vectorSize)
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(CachePointID(model, text)),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]any{
			"model":      model,
			"text_chars": len(text),
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// cachingEmbedder consults the cache before calling the wrapped embedder.
// Cache errors are logged and never fail an embedding.
type cachingEmbedder struct {
	next  Embedder
	cache EmbeddingCache
	log   *zap.Logger
}

func NewCachingEmbedder(next Embedder, cache EmbeddingCache, log *zap.Logger) Embedder {
	return &cachingEmbedder{next: next, cache: cache, log: log}
}

func (c *cachingEmbedder) Model() string {
	return c.next.Model()
}

func (c *cachingEmbedder) Dimensions() int {
	return c.next.Dimensions()
}

// Embed implements Embedder.
func (c *cachingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	model := c.next.Model()

	cached, ok, err := c.cache.Lookup(ctx, model, text)
	if err != nil {
		c.log.Warn("⚠️ Embedding cache lookup failed", zap.Error(err))
	}
	if ok {
		c.log.Debug("Embedding cache hit", zap.String("model", model))
		return cached, nil
	}

	embedding, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Store(ctx, model, text, embedding); err != nil {
		c.log.Warn("⚠️ Embedding cache store failed", zap.Error(err))
	}

	return embedding, nil
}
