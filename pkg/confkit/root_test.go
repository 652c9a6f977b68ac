package confkit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkUp_StopsAtModuleRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0o600))
	leaf := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(leaf, 0o755))

	var visited []string
	dir, found := walkUp(leaf, func(d string) bool {
		visited = append(visited, d)
		return false
	})
	assert.True(t, found)
	assert.Equal(t, root, dir)
	assert.Equal(t, []string{leaf, filepath.Join(root, "a"), root}, visited)
}

func TestWalkUp_VisitCanStop(t *testing.T) {
	leaf := filepath.Join(t.TempDir(), "a")
	require.NoError(t, os.MkdirAll(leaf, 0o755))
	dir, found := walkUp(leaf, func(string) bool { return true })
	assert.False(t, found)
	assert.Equal(t, leaf, dir)
}

func TestLoadDotenv_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CONFKIT_DOTENV_MARKER=loaded\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("NO_DOTENV", "")
	t.Setenv("CONFKIT_DOTENV_MARKER", "")
	require.NoError(t, os.Unsetenv("CONFKIT_DOTENV_MARKER"))

	loadDotenv()
	assert.Equal(t, "loaded", os.Getenv("CONFKIT_DOTENV_MARKER"))
}
