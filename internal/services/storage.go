package services

import (
	"fmt"
	"os"
	"path/filepath"
)

// ReportFileName is the download and export name of a report.
const ReportFileName = "AI_Resume_Report.txt"

type StorageService interface {
	SaveReport(report string) (string, error)
	GetFilePath(filename string) string
	EnsureOutputDir() error
}

type storageService struct {
	outputPath string
}

func NewStorageService(outputPath string) StorageService {
	return &storageService{
		outputPath: outputPath,
	}
}

func (s *storageService) EnsureOutputDir() error {
	if err := os.MkdirAll(s.outputPath, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	return nil
}

// SaveReport writes the report verbatim to ReportFileName in the output
// directory, replacing any previous export, and returns its path.
func (s *storageService) SaveReport(report string) (string, error) {
	if err := s.EnsureOutputDir(); err != nil {
		return "", err
	}

	filePath := s.GetFilePath(ReportFileName)
	if err := os.WriteFile(filePath, []byte(report), 0644); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}

	return filePath, nil
}

func (s *storageService) GetFilePath(filename string) string {
	return filepath.Join(s.outputPath, filename)
}
