package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"
	"unicode/utf8"

	"google.golang.org/genai"
)

// LocalEmbeddingDims matches the default size of text-embedding-004 vectors.
const LocalEmbeddingDims = 768

// maxEmbeddingBytes keeps requests under the ~10000 token input limit.
const maxEmbeddingBytes = 40000

var (
	ErrEmptyEmbedding = errors.New("empty embedding result")
	ErrEmbeddingSize  = errors.New("unexpected embedding size")
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
	// Dimensions is the length of every vector Embed returns.
	Dimensions() int
}

type geminiEmbedder struct {
	client *genai.Client
	model  string
	dims   int
}

// NewGeminiEmbedder asks the model for vectors of dims values.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string, dims int) (Embedder, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("invalid embedding dimensions %d", dims)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiEmbedder{client: client, model: model, dims: dims}, nil
}

func (g *geminiEmbedder) Model() string {
	return g.model
}

func (g *geminiEmbedder) Dimensions() int {
	return g.dims
}

// Embed implements Embedder.
func (g *geminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = truncateUTF8(text, maxEmbeddingBytes)

	result, err := g.client.Models.EmbedContent(ctx, g.model, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: genai.Ptr(int32(g.dims)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, ErrEmptyEmbedding
	}

	values := result.Embeddings[0].Values
	if len(values) != g.dims {
		return nil, fmt.Errorf("%w: %s returned %d values, want %d", ErrEmbeddingSize, g.model, len(values), g.dims)
	}

	return values, nil
}

// truncateUTF8 cuts s to at most limit bytes without splitting a rune.
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// localEmbedder hashes lowercased word tokens into a fixed number of
// term-frequency buckets. Texts sharing no words score 0 against each other
// apart from hash collisions.
type localEmbedder struct {
	dims int
}

func NewLocalEmbedder() Embedder {
	return &localEmbedder{dims: LocalEmbeddingDims}
}

func (l *localEmbedder) Model() string {
	return fmt.Sprintf("local-hashed-bow-%d", l.dims)
}

func (l *localEmbedder) Dimensions() int {
	return l.dims
}

// Embed implements Embedder.
func (l *localEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, l.dims)

	for _, token := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%uint32(l.dims)]++
	}

	return vec, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}
