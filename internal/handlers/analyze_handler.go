package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

const (
	keySubmitted      = "form_submitted"
	keyResume         = "resume"
	keyResumeFilename = "resume_filename"
	keyJobDescription = "job_desc"
	keyExtractionErr  = "extraction_error"
	keyAnalysis       = "analysis"
)

const missingInputWarning = "Please provide both Resume and Job Description."

type AnalyzeHandler struct {
	analyzer    services.AnalyzerService
	store       *session.Store
	validate    *validator.Validate
	maxFileSize int64
	log         *zap.Logger
}

func NewAnalyzeHandler(
	analyzer services.AnalyzerService,
	store *session.Store,
	maxFileSize int64,
	log *zap.Logger,
) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer:    analyzer,
		store:       store,
		validate:    validator.New(),
		maxFileSize: maxFileSize,
		log:         log,
	}
}

// HandleIndex handles GET /. AwaitingInput shows the form; ResultsShown runs
// the pipeline on first render and serves the cached analysis afterwards.
func (h *AnalyzeHandler) HandleIndex(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load session")
	}

	state := loadState(sess)
	if state.Stage() == models.StageAwaitingInput {
		if err := sess.Save(); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save session")
		}
		return render(c, fiber.StatusOK, h.formPage("", ""))
	}

	analysis, ok := loadAnalysis(sess)
	if !ok {
		analysis = h.analyzer.Analyze(c.UserContext(), state.ResumeText, state.JobDescription)
		if err := storeAnalysis(sess, analysis); err != nil {
			h.log.Warn("⚠️ Failed to cache analysis in session", zap.Error(err))
		}
	}

	page := pageData{
		Stage:        models.StageResultsShown,
		Analysis:     analysis,
		ATSScore:     "N/A",
		AverageScore: formatScore(analysis.AverageScore),
		Errors:       analysis.Warnings,
	}
	if analysis.ATSScore != nil {
		page.ATSScore = formatScore(*analysis.ATSScore)
	}
	if msg, _ := sess.Get(keyExtractionErr).(string); msg != "" {
		page.Errors = append([]string{msg}, page.Errors...)
	}

	if err := sess.Save(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to save session")
	}

	return render(c, fiber.StatusOK, page)
}

// HandleSubmit handles POST /analyze from the form.
func (h *AnalyzeHandler) HandleSubmit(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load session")
	}

	req := models.AnalyzeRequest{JobDescription: c.FormValue("job_description")}

	filename, data, warning := h.readSubmission(c, &req)
	if warning != "" {
		if err := sess.Save(); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save session")
		}
		return render(c, fiber.StatusUnprocessableEntity, h.formPage(warning, req.JobDescription))
	}

	extraction := h.analyzer.ExtractResume(filename, data)

	sess.Set(keySubmitted, true)
	sess.Set(keyResume, extraction.Text)
	sess.Set(keyResumeFilename, filename)
	sess.Set(keyJobDescription, req.JobDescription)
	sess.Delete(keyAnalysis)
	sess.Delete(keyExtractionErr)
	if extraction.Degraded() {
		sess.Set(keyExtractionErr, extraction.Message())
	}

	if err := sess.Save(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to save session")
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleDownload handles GET /report.
func (h *AnalyzeHandler) HandleDownload(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load session")
	}

	analysis, ok := loadAnalysis(sess)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no report available, analyze a resume first")
	}

	c.Attachment(services.ReportFileName)
	c.Type("txt", "utf-8")
	return c.SendString(analysis.Report)
}

// HandleReset handles POST /reset and returns the session to AwaitingInput.
func (h *AnalyzeHandler) HandleReset(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load session")
	}

	if err := sess.Destroy(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reset session")
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleAPIAnalyze handles POST /api/v1/analyze: one stateless analysis
// returned as JSON.
func (h *AnalyzeHandler) HandleAPIAnalyze(c *fiber.Ctx) error {
	req := models.AnalyzeRequest{JobDescription: c.FormValue("job_description")}

	filename, data, warning := h.readSubmission(c, &req)
	if warning != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": warning,
		})
	}

	extraction := h.analyzer.ExtractResume(filename, data)
	analysis := h.analyzer.Analyze(c.UserContext(), extraction.Text, req.JobDescription)

	response := models.AnalyzeResponse{
		ResumeFilename:     filename,
		ExtractionFailed:   extraction.Degraded(),
		Analysis:           analysis,
		ReportDownloadName: services.ReportFileName,
	}
	if extraction.Degraded() {
		msg := extraction.Message()
		response.ExtractionError = &msg
	}

	return c.JSON(response)
}

// readSubmission validates the multipart form and returns the résumé bytes,
// or a warning for the visitor when the submission cannot be analyzed.
func (h *AnalyzeHandler) readSubmission(c *fiber.Ctx, req *models.AnalyzeRequest) (string, []byte, string) {
	fileHeader, fileErr := c.FormFile("resume")

	trimmed := models.AnalyzeRequest{JobDescription: strings.TrimSpace(req.JobDescription)}
	if fileErr != nil || fileHeader.Size == 0 || h.validate.Struct(trimmed) != nil {
		return "", nil, missingInputWarning
	}

	if fileHeader.Size > h.maxFileSize {
		return "", nil, fmt.Sprintf("Resume file too large. Max size: %d bytes", h.maxFileSize)
	}

	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".pdf", ".docx":
	default:
		return "", nil, "Please upload your resume as a PDF (or DOCX) file."
	}

	data, err := readFile(fileHeader)
	if err != nil {
		h.log.Error("❌ Failed to read uploaded resume", zap.Error(err))
		return "", nil, "Could not read the uploaded file, please try again."
	}

	return fileHeader.Filename, data, ""
}

func (h *AnalyzeHandler) formPage(warning, jobDescription string) pageData {
	return pageData{
		Stage:          models.StageAwaitingInput,
		Warning:        warning,
		JobDescription: jobDescription,
		MaxFileSizeMB:  h.maxFileSize / (1 << 20),
	}
}

func readFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return data, nil
}

func loadState(sess *session.Session) models.SessionState {
	state := models.SessionState{}
	state.Submitted, _ = sess.Get(keySubmitted).(bool)
	state.ResumeText, _ = sess.Get(keyResume).(string)
	state.ResumeFilename, _ = sess.Get(keyResumeFilename).(string)
	state.JobDescription, _ = sess.Get(keyJobDescription).(string)
	return state
}

func loadAnalysis(sess *session.Session) (*models.Analysis, bool) {
	raw, _ := sess.Get(keyAnalysis).(string)
	if raw == "" {
		return nil, false
	}

	var analysis models.Analysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, false
	}
	return &analysis, true
}

func storeAnalysis(sess *session.Session, analysis *models.Analysis) error {
	raw, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	sess.Set(keyAnalysis, string(raw))
	return nil
}
