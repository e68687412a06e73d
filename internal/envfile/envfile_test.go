package envfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteVerbatim(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	// Content must land byte for byte, including ordering and blank lines.
	content := "ENV=PRD\nAPI_KEY=abc123\n\nOPENAI_API_KEY=sk-test\n"
	require.NoError(t, Write(path, content))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestWriteCreatesParentDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deploy", ".env")

	require.NoError(t, Write(path, "ENV=DEV\n"))

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWriteOverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	require.NoError(t, Write(path, "ENV=DEV\n"))
	require.NoError(t, Write(path, "ENV=PRD\n"))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ENV=PRD\n", string(got))
}

func TestWriteRejectsEmptyContent(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, Write(filepath.Join(dir, ".env"), ""))
	assert.Error(t, Write(filepath.Join(dir, ".env"), "  \n\t"))
}

func TestParse(t *testing.T) {
	vars, err := Parse("ENV=PRD\nAPI_KEY=abc123\n")
	require.NoError(t, err)
	assert.Equal(t, "PRD", vars["ENV"])
	assert.Equal(t, "abc123", vars["API_KEY"])
}

func TestReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, Write(path, "ENV=DEV\nANTHROPIC_API_KEY=key\n"))

	vars, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ENV": "DEV", "ANTHROPIC_API_KEY": "key"}, vars)

	list := ToList(vars)
	assert.Len(t, list, 2)
	assert.Contains(t, list, "ENV=DEV")
	assert.Contains(t, list, "ANTHROPIC_API_KEY=key")
}
