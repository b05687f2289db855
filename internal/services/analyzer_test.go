package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestAnalyzer(provider ChatProvider, embedder Embedder, log *zap.Logger) AnalyzerService {
	return NewAnalyzerService(
		NewPDFParserService(),
		NewSimilarityService(embedder),
		NewReportService(provider, time.Minute, log),
		log,
	)
}

func TestAnalyzeHappyPath(t *testing.T) {
	stub := &stubChatProvider{response: "1/5 ❌ missing X\n4/5 ✅ good Y\n\nSuggestions to improve your resume:\n- X"}
	analyzer := newTestAnalyzer(stub, NewLocalEmbedder(), zap.NewNop())

	analysis := analyzer.Analyze(context.Background(), "go developer", "go developer")

	require.NotNil(t, analysis.ATSScore)
	assert.InDelta(t, 1.0, *analysis.ATSScore, 0.0005)
	assert.Equal(t, stub.response, analysis.Report)
	assert.False(t, analysis.ReportFailed)
	assert.Equal(t, []float64{1, 4}, analysis.ReportScores)
	assert.Equal(t, 2.5, analysis.AverageScore)
	assert.True(t, analysis.HasScores)
	assert.Empty(t, analysis.Warnings)
}

func TestAnalyzeReportFailureYieldsNoScores(t *testing.T) {
	stub := &stubChatProvider{err: errors.New("connection refused")}
	analyzer := newTestAnalyzer(stub, NewLocalEmbedder(), zap.NewNop())

	analysis := analyzer.Analyze(context.Background(), "resume", "job")

	assert.True(t, analysis.ReportFailed)
	assert.Equal(t, "Error generating report: connection refused", analysis.Report)
	assert.Empty(t, analysis.ReportScores)
	assert.Equal(t, 0.0, analysis.AverageScore)
	assert.False(t, analysis.HasScores)
	assert.NotNil(t, analysis.ATSScore)
}

func TestAnalyzeEmbeddingFailureStillGeneratesReport(t *testing.T) {
	stub := &stubChatProvider{response: "3/5 ⚠️ unclear"}
	analyzer := newTestAnalyzer(stub, &stubEmbedder{err: errors.New("embedding quota")}, zap.NewNop())

	analysis := analyzer.Analyze(context.Background(), "resume", "job")

	assert.Nil(t, analysis.ATSScore)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, 3.0, analysis.AverageScore)
	require.Len(t, analysis.Warnings, 1)
	assert.Contains(t, analysis.Warnings[0], "embedding quota")
}

func TestUnreadableResumeFlowsThroughPipeline(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)
	stub := &stubChatProvider{response: "2/5 ❌ no experience listed"}
	analyzer := newTestAnalyzer(stub, NewLocalEmbedder(), log)

	extraction := analyzer.ExtractResume("resume.pdf", []byte("garbage bytes"))
	require.True(t, extraction.Degraded())

	analysis := analyzer.Analyze(context.Background(), extraction.Text, "Go developer")

	assert.Contains(t, stub.lastPrompt, "Candidate Resume: "+ExtractionPlaceholder)
	assert.NotNil(t, analysis.ATSScore)
	assert.Equal(t, []float64{2}, analysis.ReportScores)
	assert.Equal(t, 1, logs.FilterMessageSnippet("continuing with placeholder").Len())
}
