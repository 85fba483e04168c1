// lintmux runs several C/C++ linters behind one command line.
//
// Usage:
//
//	lintmux --ide-profile=clion -p build --export-fixes=all.yaml --sub-linter=clang-tidy --sub-linter=clazy src/a.cpp
//	lintmux --export-fixes=all.yaml --sub-linter=clang-tidy -p=build a.cpp --sub-linter=clazy -p=build a.cpp
//
// The linters run concurrently with their output relayed live. Their
// export-fixes files are annotated with documentation links and merged into
// one combined YAML file.
//
// Exit codes:
//
//	0  every linter succeeded and the combined result was written
//	1  configuration or internal error
//	2  some linters failed
//	3  all linters failed
//	4  the command line was rejected; nothing ran
//	5  every linter succeeded but no combined result was produced
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dkoosis/lintmux/internal/cmdline"
	"github.com/dkoosis/lintmux/internal/config"
	"github.com/dkoosis/lintmux/internal/diag"
	"github.com/dkoosis/lintmux/internal/orchestrator"
	"github.com/dkoosis/lintmux/internal/version"
)

const (
	exitInternal       = 1
	exitAdapterFailure = 4
	exitMergeFailure   = 5
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	code := 0
	root := newRootCmd(stdout, stderr, &code)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "lintmux: %v\n", err)
		return exitInternal
	}
	return code
}

func newRootCmd(stdout, stderr io.Writer, code *int) *cobra.Command {
	root := &cobra.Command{
		Use:   "lintmux [options] [files]",
		Short: "Run clang-tidy, clazy and friends as one linter",
		// Every argument belongs to the linters; the adapter parses them.
		DisableFlagParsing: true,
		Args:               cobra.ArbitraryArgs,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(_ *cobra.Command, args []string) error {
			*code = runLint(args, stdout, stderr)
			return nil
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(newVersionCmd(stdout))
	return root
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the lintmux version",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintln(stdout, version.String())
		},
	}
}

func runLint(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "lintmux: %v\n", err)
		return exitInternal
	}
	logger := cfg.Logger(stderr)
	logger.Debug("config loaded", "path", cfg.Path, "no_color", cfg.NoColor, "fallback_result", cfg.FallbackResult)

	reg, err := cfg.Registry()
	if err != nil {
		fmt.Fprintf(stderr, "lintmux: %v\n", err)
		return exitInternal
	}

	if cmdline.WantsHelp(args) {
		cmdline.Usage(stdout, reg)
		return 0
	}

	res := cmdline.Adapt(reg, args,
		cmdline.WithFallbackResult(cfg.FallbackResult),
		cmdline.WithPlatform(os.Getenv("Platform")),
		cmdline.WithLogger(logger))
	render := diag.RenderOptions{
		CommandLine: res.CommandLine,
		Width:       termWidth(stderr),
		NoColor:     cfg.NoColor,
	}
	if res.Failed() {
		diag.Render(stderr, res.Diagnostics, render)
		return exitAdapterFailure
	}

	o := orchestrator.New(reg, res,
		orchestrator.WithStdout(stdout),
		orchestrator.WithStderr(stderr),
		orchestrator.WithLogger(logger))
	defer o.Close()

	o.Start()
	status := o.WaitAll()
	totals := o.MergeResults()
	combined := o.CombinedResultPath()
	logger.Debug("run finished", "status", status.String(), "merged", totals.Success, "merge_failures", totals.Fail, "combined", combined)

	diag.Render(stderr, o.Diagnostics(), render)

	switch {
	case status != orchestrator.Success:
		return int(status)
	case combined == "":
		return exitMergeFailure
	default:
		return 0
	}
}

// termWidth returns the width of w when it is a terminal, 0 otherwise.
func termWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	if width, _, err := term.GetSize(int(f.Fd())); err == nil {
		return width
	}
	return 0
}
