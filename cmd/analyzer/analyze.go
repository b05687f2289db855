package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var (
	resumePath  string
	jobDesc     string
	jobDescFile string
	outDir      string
	autoApprove bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one resume against a job description in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&resumePath, "resume", "r", "", "resume file (.pdf or .docx)")
	analyzeCmd.Flags().StringVar(&jobDesc, "job-desc", "", "job description text. Prompted for when unset.")
	analyzeCmd.Flags().StringVar(&jobDescFile, "job-desc-file", "", "file with the job description")
	analyzeCmd.Flags().StringVarP(&outDir, "out", "o", "", "directory to save "+services.ReportFileName+" to without asking")
	analyzeCmd.Flags().BoolVarP(&autoApprove, "yes", "y", false, "save the report to the current directory without asking")

	_ = analyzeCmd.MarkFlagRequired("resume")
	analyzeCmd.MarkFlagsMutuallyExclusive("job-desc", "job-desc-file")
}

func analyze(_ *cobra.Command) {
	ctx := context.Background()

	cfg, log := bootstrap()
	defer func() { _ = log.Sync() }()

	analyzer, err := newAnalyzer(ctx, cfg, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize analyzer", zap.Error(err))
	}

	data, err := os.ReadFile(resumePath)
	if err != nil {
		log.Fatal("❌ Failed to read resume", zap.String("path", resumePath), zap.Error(err))
	}
	filename := filepath.Base(resumePath)

	jd, err := readJobDescription()
	if err != nil {
		log.Fatal("❌ Job description is required", zap.Error(err))
	}

	fmt.Println("Extracting resume text and generating report...")

	extraction := analyzer.ExtractResume(filename, data)
	if extraction.Degraded() {
		fmt.Printf("❌ %s\n", extraction.Message())
	} else {
		log.Info("📄 Resume loaded", zap.String("filename", filename), zap.Int("pages", extraction.PageCount))
	}

	analysis := analyzer.Analyze(ctx, extraction.Text, jd)
	printAnalysis(analysis)

	path, err := exportReport(analysis, reportDestination)
	if err != nil {
		log.Fatal("❌ Failed to save report", zap.Error(err))
	}
	if path != "" {
		fmt.Printf("📥 Report saved to %s\n", path)
	}
}

// exportReport saves the report text, the error text included when the report
// failed, wherever destination says. An empty path means nothing was saved.
func exportReport(analysis *models.Analysis, destination func() (string, bool, error)) (string, error) {
	dir, save, err := destination()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if !save {
		return "", nil
	}

	return services.NewStorageService(dir).SaveReport(analysis.Report)
}

func readJobDescription() (string, error) {
	switch {
	case jobDesc != "":
		return requireText(jobDesc)
	case jobDescFile != "":
		raw, err := os.ReadFile(jobDescFile)
		if err != nil {
			return "", fmt.Errorf("reading job description file: %w", err)
		}
		return requireText(string(raw))
	}

	prompt := promptui.Prompt{
		Label: "Enter Job Description",
		Validate: func(input string) error {
			_, err := requireText(input)
			return err
		},
	}

	result, err := prompt.Run()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(result), nil
}

func requireText(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("please provide both Resume and Job Description")
	}
	return s, nil
}

// reportDestination picks where to save the report: --out, --yes, or an
// interactive confirmation.
func reportDestination() (string, bool, error) {
	if outDir != "" {
		return outDir, true, nil
	}
	if autoApprove {
		return ".", true, nil
	}

	prompt := promptui.Select{
		Label: fmt.Sprintf("Save report to %s?", services.ReportFileName),
		Items: []string{PromptYes, PromptNo},
	}

	_, answer, err := prompt.Run()
	if err != nil {
		return "", false, err
	}

	return ".", answer == PromptYes, nil
}

func printAnalysis(analysis *models.Analysis) {
	ats := "N/A"
	if analysis.ATSScore != nil {
		ats = fmt.Sprintf("%g", *analysis.ATSScore)
	}

	fmt.Printf("\nATS Similarity Score (0-1): %s\n", ats)
	fmt.Printf("AI Resume Report Average Score (out of 5): %g\n", analysis.AverageScore)
	if !analysis.HasScores {
		fmt.Println("No per-criterion scores found in the report.")
	}
	for _, w := range analysis.Warnings {
		fmt.Printf("⚠️ %s\n", w)
	}

	if analysis.ReportFailed {
		fmt.Printf("\n❌ %s\n", analysis.Report)
		return
	}

	fmt.Println("\n✅ Scores generated successfully!")
	fmt.Printf("\nAI Generated Analysis Report:\n\n%s\n", analysis.Report)
}
