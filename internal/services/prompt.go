package services

import "fmt"

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildResumeAnalysisPrompt creates the report prompt. The "N/5" score format
// it asks for is what ExtractScores parses back out.
func (pb *PromptBuilder) BuildResumeAnalysisPrompt(resume, jobDescription string) string {
	return fmt.Sprintf(`
# Context:
You are an AI Resume Analyzer.

# Instructions:
Analyze the resume based on the job description.
Score each point out of 5, using ✅ if aligned, ❌ if missing, ⚠️ if unclear.
Provide a "Suggestions to improve your resume:" section at the end.

# Inputs:
Candidate Resume: %s
Job Description: %s

# Output:
Each point should start with score and emoji, followed by explanation.
`, resume, jobDescription)
}
