package magetasks

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/dkoosis/lintmux/internal/linter"
)

// ExitError reports a tool that ran and exited unsuccessfully.
type ExitError struct {
	Title string
	Code  int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s failed with exit code %d", e.Title, e.Code)
}

// Run executes name with args under title, relaying its output to Out and
// os.Stderr. A missing executable yields an error IsCommandNotFound accepts.
func Run(title, name string, args ...string) error {
	return RunEnv(title, nil, name, args...)
}

// RunEnv is Run with extra environment entries for the child.
func RunEnv(title string, env []string, name string, args ...string) error {
	exe, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("%s: %w", title, err)
	}

	tool := linter.Tool{Name: name, Executable: exe, Env: env}
	p := linter.NewProcess(tool, linter.Invocation{Name: name, Args: args}, linter.ProcessOptions{
		Stdout: Out,
		Stderr: os.Stderr,
	})
	PrintInfo(fmt.Sprintf("%s: %s %s", title, name, strings.Join(args, " ")))
	if !p.Start() {
		return fmt.Errorf("%s: %s", title, p.Diagnostics()[0].Text)
	}
	if code := p.Wait(); code != tool.SuccessCode {
		return &ExitError{Title: title, Code: code}
	}
	return nil
}

// Output runs name and returns its trimmed standard output.
func Output(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
