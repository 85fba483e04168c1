// Package lintertest provides a fake linter for tests: the test binary
// re-executes itself and plays the part of clang-tidy or clazy.
//
// A test package opts in with
//
//	func TestHelperProcess(t *testing.T) { lintertest.Main() }
//
// and builds registry entries with Tool.
package lintertest

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dkoosis/lintmux/internal/linter"
)

// EnvKey activates the helper in the child process.
const EnvKey = "LINTMUX_LINTER_HELPER"

// Scenarios understood by Main.
const (
	// Succeed prints a line to each stream, writes the result file and exits 0.
	Succeed = "succeed"
	// Fail prints to stderr and exits 1.
	Fail = "fail"
	// Killed terminates itself with a kill signal.
	Killed = "killed"
	// Lines prints --lines=N numbered lines to stdout.
	Lines = "lines"
	// Partial writes stdout in pieces that split lines across reads.
	Partial = "partial"
	// Args prints every argument it received on its own line.
	Args = "args"
)

// Tool returns a registry entry named name that runs the helper scenario.
// extra is passed to the helper before the invocation's arguments.
func Tool(name, scenario string, extra ...string) linter.Tool {
	base := []string{"-test.run=^TestHelperProcess$", "--", scenario}
	base = append(base, extra...)

	t := linter.Tool{
		Name:       name,
		Executable: os.Args[0],
		BaseArgs:   base,
		Env:        []string{EnvKey + "=1"},
		ResultFlag: "--export-fixes=",
	}
	switch name {
	case linter.ClangTidy:
		t.DocLink = linter.ClangTidyDocLink
	case linter.Clazy:
		t.DocLink = linter.ClazyDocLink
	}
	return t
}

// Check returns the helper argument that adds a diagnostic named name to the result file.
func Check(name string) string {
	return "--check=" + name
}

// Main runs the requested scenario and exits when the process is a helper
// child. It returns immediately otherwise.
func Main() {
	if os.Getenv(EnvKey) == "" {
		return
	}

	args := helperArgs(os.Args[1:])
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "no helper scenario provided")
		os.Exit(100)
	}
	scenario, rest := args[0], args[1:]

	switch scenario {
	case Succeed:
		fmt.Fprintln(os.Stdout, "helper: analysis finished")
		fmt.Fprintln(os.Stderr, "helper: 1 warning generated")
		if err := writeResult(rest); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(101)
		}
		os.Exit(0)
	case Fail:
		fmt.Fprintln(os.Stderr, "helper: fatal error: compilation database not found")
		os.Exit(1)
	case Killed:
		self, err := os.FindProcess(os.Getpid())
		if err == nil {
			_ = self.Kill()
		}
		time.Sleep(5 * time.Second)
		os.Exit(102)
	case Lines:
		n := intValue(rest, "--lines=", 100)
		for i := 1; i <= n; i++ {
			fmt.Fprintf(os.Stdout, "line-%04d\n", i)
		}
		os.Exit(0)
	case Partial:
		for _, piece := range []string{"alpha [-Wclazy-foo]\nbe", "ta [-Wclazy-bar]\n", "gamma"} {
			_, _ = os.Stdout.WriteString(piece)
			time.Sleep(30 * time.Millisecond)
		}
		os.Exit(0)
	case Args:
		for _, a := range rest {
			fmt.Fprintln(os.Stdout, a)
		}
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown helper scenario: %s\n", scenario)
		os.Exit(103)
	}
}

func helperArgs(args []string) []string {
	for i, a := range args {
		if a == "--" {
			return args[i+1:]
		}
	}
	return nil
}

func intValue(args []string, prefix string, fallback int) int {
	for _, a := range args {
		if v, ok := strings.CutPrefix(a, prefix); ok {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
	}
	return fallback
}

// writeResult writes a clang-tidy style export-fixes document listing every
// --check= argument to the path given with --export-fixes=.
func writeResult(args []string) error {
	var path string
	var checks []string
	for _, a := range args {
		if v, ok := strings.CutPrefix(a, "--export-fixes="); ok {
			path = v
		}
		if v, ok := strings.CutPrefix(a, "--check="); ok {
			checks = append(checks, v)
		}
	}
	if path == "" {
		return nil
	}
	return os.WriteFile(path, []byte(Document(checks...)), 0o644)
}

// Document renders an export-fixes YAML document with one diagnostic per check.
func Document(checks ...string) string {
	var b strings.Builder
	b.WriteString("---\nMainSourceFile: /src/main.cpp\nDiagnostics:\n")
	if len(checks) == 0 {
		b.WriteString("  []\n")
	}
	for i, c := range checks {
		fmt.Fprintf(&b, "  - DiagnosticName: %s\n", c)
		b.WriteString("    DiagnosticMessage:\n")
		fmt.Fprintf(&b, "      Message: finding %d\n", i+1)
		b.WriteString("      FilePath: /src/main.cpp\n")
		fmt.Fprintf(&b, "      FileOffset: %d\n", i*10)
		b.WriteString("      Replacements: []\n")
		b.WriteString("    Level: Warning\n")
		b.WriteString("    BuildDirectory: /build\n")
	}
	b.WriteString("...\n")
	return b.String()
}
