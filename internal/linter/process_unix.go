//go:build unix

package linter

import (
	"os/exec"
	"syscall"
)

// getExitCodeFromError extracts the exit code from an exec.ExitError. A child
// killed by a signal reports 128+signal, as a shell would.
func getExitCodeFromError(exitErr *exec.ExitError) (int, bool) {
	waitStatus, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok {
		return 0, false
	}
	if waitStatus.Signaled() {
		return 128 + int(waitStatus.Signal()), true
	}
	return waitStatus.ExitStatus(), true
}
