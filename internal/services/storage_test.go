package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	storage := NewStorageService(dir)

	path, err := storage.SaveReport("4/5 ✅ Go\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "AI_Resume_Report.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "4/5 ✅ Go\n", string(data))

	path, err = storage.SaveReport("second")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}
