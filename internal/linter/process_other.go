//go:build !unix

package linter

import "os/exec"

// getExitCodeFromError extracts the exit code from an exec.ExitError on
// non-Unix platforms using ProcessState.
func getExitCodeFromError(exitErr *exec.ExitError) (int, bool) {
	if exitErr.ProcessState != nil {
		return exitErr.ProcessState.ExitCode(), true
	}
	return 0, false
}
