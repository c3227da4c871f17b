package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadShellHistory_FileNotFound_ReturnsNil(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent", "history")
	lines := loadHistoryFromPath(path)
	assert.Nil(t, lines)
}

func TestLoadShellHistory_ReadsLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history")
	content := "projects\nuse WEB\ntimeline WEB\nphase list WEB\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	lines := loadHistoryFromPath(path)
	assert.Equal(t, []string{"projects", "use WEB", "timeline WEB", "phase list WEB"}, lines)
}

func TestLoadShellHistory_TruncatesOverMax(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history")

	// Write 600 lines.
	var b strings.Builder
	for i := 0; i < 600; i++ {
		b.WriteString("line\n")
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	lines := loadHistoryFromPath(path)
	assert.Len(t, lines, maxHistoryLines)
}

func TestAppendShellHistory_AppendsLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history")

	appendHistoryToPath(path, "first command")
	appendHistoryToPath(path, "second command")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first command\nsecond command\n", string(data))
}

func TestAppendShellHistory_SkipsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history")

	appendHistoryToPath(path, "")
	appendHistoryToPath(path, "   ")

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "file should not be created for empty lines")
}

func TestShellHistoryPath_UsesRoadmapHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ROADMAP_HOME", dir)

	appendShellHistory("timeline")
	assert.Equal(t, filepath.Join(dir, "history"), shellHistoryPath())
	assert.Equal(t, []string{"timeline"}, loadShellHistory())
}
