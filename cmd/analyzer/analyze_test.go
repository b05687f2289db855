package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/manifoldco/promptui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

func saveTo(dir string) func() (string, bool, error) {
	return func() (string, bool, error) { return dir, true, nil }
}

func TestExportReportSavesFailedReport(t *testing.T) {
	dir := t.TempDir()
	analysis := &models.Analysis{
		Report:       "Error generating report: 401 invalid api key",
		ReportFailed: true,
		ReportScores: []float64{},
	}

	path, err := exportReport(analysis, saveTo(dir))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, services.ReportFileName), path)
	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, analysis.Report, string(saved))
}

func TestExportReportDeclined(t *testing.T) {
	dir := t.TempDir()

	path, err := exportReport(&models.Analysis{Report: "4/5 ✅ Go"}, func() (string, bool, error) {
		return dir, false, nil
	})

	require.NoError(t, err)
	assert.Empty(t, path)
	assert.NoFileExists(t, filepath.Join(dir, services.ReportFileName))
}

func TestExportReportInterruptedPrompt(t *testing.T) {
	path, err := exportReport(&models.Analysis{Report: "4/5 ✅ Go"}, func() (string, bool, error) {
		return "", false, promptui.ErrInterrupt
	})

	require.NoError(t, err)
	assert.Empty(t, path)

	_, err = exportReport(&models.Analysis{}, func() (string, bool, error) {
		return "", false, errors.New("no tty")
	})
	assert.ErrorContains(t, err, "no tty")
}

func TestReportDestinationFlags(t *testing.T) {
	t.Cleanup(func() { outDir, autoApprove = "", false })

	outDir = "reports"
	dir, save, err := reportDestination()
	require.NoError(t, err)
	assert.Equal(t, "reports", dir)
	assert.True(t, save)

	outDir, autoApprove = "", true
	dir, save, err = reportDestination()
	require.NoError(t, err)
	assert.Equal(t, ".", dir)
	assert.True(t, save)
}

func TestRequireText(t *testing.T) {
	got, err := requireText("  Go developer \n")
	require.NoError(t, err)
	assert.Equal(t, "Go developer", got)

	_, err = requireText(" \t\n")
	assert.Error(t, err)
}
