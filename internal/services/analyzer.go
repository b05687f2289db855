package services

import (
	"context"

	"go.uber.org/zap"

	"alfredoptarigan/resume-analyzer/internal/models"
)

type AnalyzerService interface {
	ExtractResume(filename string, data []byte) ExtractionResult
	Analyze(ctx context.Context, resume, jobDescription string) *models.Analysis
}

type analyzerService struct {
	pdfParser  PDFParserService
	similarity SimilarityService
	reports    ReportService
	log        *zap.Logger
}

func NewAnalyzerService(
	pdfParser PDFParserService,
	similarity SimilarityService,
	reports ReportService,
	log *zap.Logger,
) AnalyzerService {
	return &analyzerService{
		pdfParser:  pdfParser,
		similarity: similarity,
		reports:    reports,
		log:        log,
	}
}

// ExtractResume implements AnalyzerService.
func (a *analyzerService) ExtractResume(filename string, data []byte) ExtractionResult {
	a.log.Info("📄 Extracting resume text...", zap.String("filename", filename), zap.Int("bytes", len(data)))

	result := a.pdfParser.ExtractText(filename, data)
	if result.Degraded() {
		a.log.Warn("⚠️ Resume extraction failed, continuing with placeholder", zap.Error(result.Err))
		return result
	}

	a.log.Info("✅ Resume text extracted", zap.Int("chars", len(result.Text)))
	return result
}

// Analyze implements AnalyzerService. Similarity runs first, then the report,
// then score extraction on the report text. No step aborts the others.
func (a *analyzerService) Analyze(ctx context.Context, resume, jobDescription string) *models.Analysis {
	analysis := &models.Analysis{}

	a.log.Info("🔍 Calculating ATS similarity...")
	similarity := a.similarity.Score(ctx, resume, jobDescription)
	if similarity.Degraded() {
		a.log.Warn("⚠️ ATS similarity unavailable", zap.Error(similarity.Err))
		analysis.Warnings = append(analysis.Warnings, "ATS similarity could not be calculated: "+similarity.Err.Error())
	} else {
		score := similarity.Score
		analysis.ATSScore = &score
		a.log.Info("✅ ATS similarity calculated", zap.Float64("ats_score", score))
	}

	a.log.Info("🤖 Generating AI resume report...")
	report := a.reports.Generate(ctx, resume, jobDescription)
	analysis.Report = report.Text
	analysis.ReportFailed = report.Degraded()

	analysis.ReportScores = ExtractScores(report.Text)
	analysis.AverageScore, analysis.HasScores = AverageScore(analysis.ReportScores)
	if !analysis.HasScores {
		analysis.Warnings = append(analysis.Warnings, "No per-criterion scores were found in the report.")
	}

	a.log.Info("📊 Scores generated",
		zap.Int("criteria", len(analysis.ReportScores)),
		zap.Float64("average_score", analysis.AverageScore),
		zap.Bool("report_failed", analysis.ReportFailed),
	)

	return analysis
}
