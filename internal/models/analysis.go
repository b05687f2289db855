package models

// Analysis is the outcome of one résumé / job description comparison.
type Analysis struct {
	// ATSScore is nil when the embedder failed.
	ATSScore     *float64  `json:"ats_score"`
	Report       string    `json:"report"`
	ReportFailed bool      `json:"report_failed"`
	ReportScores []float64 `json:"report_scores"`
	AverageScore float64   `json:"average_score"`
	HasScores    bool      `json:"has_scores"`
	Warnings     []string  `json:"warnings,omitempty"`
}
