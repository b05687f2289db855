package services

import (
	"context"
	"fmt"
	"math"
)

type SimilarityService interface {
	Score(ctx context.Context, resume, jobDescription string) SimilarityResult
}

// SimilarityResult holds the cosine similarity rounded to 3 decimals.
// Score is meaningless when Err is set.
type SimilarityResult struct {
	Score float64
	Err   error
}

func (r SimilarityResult) Degraded() bool {
	return r.Err != nil
}

type similarityService struct {
	embedder Embedder
}

func NewSimilarityService(embedder Embedder) SimilarityService {
	return &similarityService{embedder: embedder}
}

// Score implements SimilarityService.
func (s *similarityService) Score(ctx context.Context, resume, jobDescription string) SimilarityResult {
	resumeVec, err := s.embedder.Embed(ctx, resume)
	if err != nil {
		return SimilarityResult{Err: fmt.Errorf("failed to embed resume: %w", err)}
	}

	jobVec, err := s.embedder.Embed(ctx, jobDescription)
	if err != nil {
		return SimilarityResult{Err: fmt.Errorf("failed to embed job description: %w", err)}
	}

	if len(resumeVec) != len(jobVec) {
		return SimilarityResult{Err: fmt.Errorf("embedding size mismatch: %d vs %d", len(resumeVec), len(jobVec))}
	}

	return SimilarityResult{Score: roundTo(CosineSimilarity(resumeVec, jobVec), 3)}
}

// CosineSimilarity returns 0 for mismatched lengths or a zero vector.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
