package vectorstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProcessedFilesMissing(t *testing.T) {
	files, err := LoadProcessedFiles(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestProcessedFilesRoundTrip(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, SaveProcessedFiles(dir, []string{"b.pdf", "a.pdf"}))

	files, err := LoadProcessedFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, files)
}

func TestSaveProcessedFilesOverwrites(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, SaveProcessedFiles(dir, []string{"a.pdf"}))
	require.NoError(t, SaveProcessedFiles(dir, []string{"a.pdf", "b.pdf"}))

	files, err := LoadProcessedFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, files)
}

func TestLedgerIsPlainJSONArray(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SaveProcessedFiles(dir, []string{"policy.pdf"}))

	data, err := os.ReadFile(filepath.Join(dir, "processed_files.json"))
	require.NoError(t, err)

	var raw []string
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, []string{"policy.pdf"}, raw)
}

func TestLoadProcessedFilesCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "processed_files.json"), []byte("{not json"), 0o644))

	_, err := LoadProcessedFiles(dir)
	assert.Error(t, err)
}
