package fetcher

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestZIP creates a ZIP archive at path with the given name->content
// entries.
func writeTestZIP(t *testing.T, path string, entries map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func TestExtractZIP(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "acme-mills.zip")
	writeTestZIP(t, zipPath, map[string]string{
		"balance-sheet.csv":    "label,202303,202403",
		"sheets/cash-flow.csv": "label,202403",
	})

	destDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(destDir, 0o755))

	extracted, err := ExtractZIP(zipPath, destDir)
	require.NoError(t, err)
	assert.Len(t, extracted, 2)

	data, err := os.ReadFile(filepath.Join(destDir, "balance-sheet.csv"))
	require.NoError(t, err)
	assert.Equal(t, "label,202303,202403", string(data))

	data, err = os.ReadFile(filepath.Join(destDir, "sheets", "cash-flow.csv"))
	require.NoError(t, err)
	assert.Equal(t, "label,202403", string(data))
}

func TestExtractZIP_RejectsZipSlip(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "evil.zip")
	writeTestZIP(t, zipPath, map[string]string{
		"../escape.csv": "nope",
	})

	destDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(destDir, 0o755))

	_, err := ExtractZIP(zipPath, destDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal zip path")

	_, statErr := os.Stat(filepath.Join(dir, "escape.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExtractZIP_MissingArchive(t *testing.T) {
	_, err := ExtractZIP(filepath.Join(t.TempDir(), "absent.zip"), t.TempDir())
	require.Error(t, err)
}
