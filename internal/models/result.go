package models

// AnalyzeRequest carries the text fields of the analyze form. The résumé file
// is validated separately because it arrives as a multipart part.
type AnalyzeRequest struct {
	JobDescription string `form:"job_description" json:"job_description" validate:"required"`
}

type AnalyzeResponse struct {
	ResumeFilename     string    `json:"resume_filename"`
	ExtractionFailed   bool      `json:"extraction_failed"`
	ExtractionError    *string   `json:"extraction_error,omitempty"`
	Analysis           *Analysis `json:"analysis"`
	ReportDownloadName string    `json:"report_download_name"`
}
