package magetasks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_CreatesBinDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	require.NoError(t, Initialize())

	info, err := os.Stat(filepath.Join(tmpDir, "bin"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	expectedRoot, _ := filepath.EvalSymlinks(tmpDir)
	actualRoot, _ := filepath.EvalSymlinks(ProjectRoot)
	assert.Equal(t, expectedRoot, actualRoot)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "github.com/dkoosis/lintmux", ModulePath)
	assert.Equal(t, "./bin/lintmux", BinPath)
	assert.Equal(t, "./cmd/lintmux", MainPackage)
}
