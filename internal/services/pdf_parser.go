package services

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// ExtractionPlaceholder replaces the résumé text when extraction fails.
const ExtractionPlaceholder = "Could not extract text from the PDF file."

var (
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrNoText          = errors.New("no text content found in document")
)

type PDFParserService interface {
	ExtractText(filename string, data []byte) ExtractionResult
	ExtractTextWithMetaData(filename string, data []byte) (*PDFContent, error)
}

type PDFContent struct {
	Text      string
	PageCount int
}

// ExtractionResult is the extracted résumé text. When Err is set Text holds
// ExtractionPlaceholder.
type ExtractionResult struct {
	Text      string
	PageCount int
	Err       error
}

func (r ExtractionResult) Degraded() bool {
	return r.Err != nil
}

// Message is the text shown to the visitor when extraction failed.
func (r ExtractionResult) Message() string {
	if r.Err == nil {
		return ""
	}
	return fmt.Sprintf("Error extracting text from PDF: %v", r.Err)
}

type pdfParserService struct{}

func NewPDFParserService() PDFParserService {
	return &pdfParserService{}
}

func (p *pdfParserService) ExtractText(filename string, data []byte) ExtractionResult {
	content, err := p.ExtractTextWithMetaData(filename, data)
	if err != nil {
		return ExtractionResult{
			Text: ExtractionPlaceholder,
			Err:  fmt.Errorf("extracting resume text: %w", err),
		}
	}

	return ExtractionResult{Text: content.Text, PageCount: content.PageCount}
}

func (p *pdfParserService) ExtractTextWithMetaData(filename string, data []byte) (*PDFContent, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty upload: %w", ErrNoText)
	}

	var (
		content *PDFContent
		err     error
	)

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".pdf", "":
		content, err = extractPDF(data)
	case ".docx":
		content, err = extractDOCX(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, ext)
	}
	if err != nil {
		return nil, err
	}

	content.Text = CleanText(content.Text)
	if content.Text == "" {
		return nil, ErrNoText
	}

	return content, nil
}

func extractPDF(data []byte) (content *PDFContent, err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			content, err = nil, fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Keep whatever the other pages yield
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return &PDFContent{
		Text:      textBuilder.String(),
		PageCount: totalPage,
	}, nil
}

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>|<w:br/>|<w:tab/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
)

func extractDOCX(data []byte) (*PDFContent, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return &PDFContent{
		Text:      DocxText(doc.Editable().GetContent()),
		PageCount: 1,
	}, nil
}

// DocxText turns the document.xml body into plain text, one paragraph per line.
func DocxText(xml string) string {
	text := docxParagraphEnd.ReplaceAllString(xml, "\n")
	text = xmlTag.ReplaceAllString(text, "")
	replacer := strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'")
	return replacer.Replace(text)
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
