package handlers

import (
	"embed"
	"html/template"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-analyzer/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var views = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type pageData struct {
	Stage          models.Stage
	Warning        string
	Errors         []string
	JobDescription string
	MaxFileSizeMB  int64
	Analysis       *models.Analysis
	ATSScore       string
	AverageScore   string
}

func render(c *fiber.Ctx, status int, data pageData) error {
	c.Status(status)
	c.Type("html", "utf-8")
	return views.ExecuteTemplate(c, "index.html", data)
}

// formatScore prints the shortest representation, always with a decimal
// part ("1.0", "0.857", "2.5").
func formatScore(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
