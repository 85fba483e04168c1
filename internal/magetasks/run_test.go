package magetasks

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/lintmux/internal/linter/lintertest"
)

func TestHelperProcess(t *testing.T) { lintertest.Main() }

func captureOut(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Out
	Out = &buf
	t.Cleanup(func() { Out = prev })
	return &buf
}

func helper(scenario string) []string {
	return []string{"-test.run=^TestHelperProcess$", "--", scenario}
}

func TestRun_RelaysOutput_When_ToolSucceeds(t *testing.T) {
	out := captureOut(t)

	err := RunEnv("Helper", []string{lintertest.EnvKey + "=1"}, os.Args[0], helper(lintertest.Succeed)...)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Helper: ")
	assert.Contains(t, out.String(), "helper: analysis finished")
}

func TestRun_ReturnsExitError_When_ToolFails(t *testing.T) {
	captureOut(t)

	err := RunEnv("Helper", []string{lintertest.EnvKey + "=1"}, os.Args[0], helper(lintertest.Fail)...)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
	assert.EqualError(t, err, "Helper failed with exit code 1")
	assert.False(t, IsCommandNotFound(err))
}

func TestRun_ReportsNotFound_When_ToolMissing(t *testing.T) {
	captureOut(t)

	err := Run("Ghost", filepath.Join(t.TempDir(), "no-such-tool"))

	require.Error(t, err)
	assert.True(t, IsCommandNotFound(err))
}

func TestConsole_PrintsMessages(t *testing.T) {
	out := captureOut(t)

	PrintH1Header("lintmux")
	PrintH2Header("Build")
	PrintSuccess("built")
	PrintWarning("slow")
	PrintError("broken")
	PrintInfo("note")

	got := out.String()
	for _, want := range []string{"lintmux", "=== ", "Build", "ok   built", "warn slow", "FAIL broken", "note"} {
		assert.Contains(t, got, want)
	}
}
