package magetasks

import (
	"errors"
	"fmt"
)

const golangciDisabled = "--disable=exhaustruct,varnamelen,ireturn,wrapcheck,nlreturn,gochecknoglobals,mnd,depguard,tagalign"

// LintAll runs all linters. Optional linters that are not installed are
// reported and skipped.
func LintAll() error {
	PrintH2Header("Lint")

	var errs []error
	if err := LintFormat(); err != nil {
		errs = append(errs, err)
	}
	if err := LintVet(); err != nil {
		errs = append(errs, err)
	}
	if err := LintStaticcheck(); err != nil && !IsCommandNotFound(err) {
		errs = append(errs, err)
	}
	if err := LintGolangci(); err != nil && !IsCommandNotFound(err) {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		PrintError("Linting found issues")
		return errors.Join(errs...)
	}
	PrintSuccess("All linters passed")
	return nil
}

// LintFormat lists files whose formatting differs from gofmt.
func LintFormat() error {
	out, err := Output("gofmt", "-l", ".")
	if err != nil {
		return fmt.Errorf("gofmt: %w", err)
	}
	if out != "" {
		return fmt.Errorf("files need formatting:\n%s", out)
	}
	PrintSuccess("Formatting clean")
	return nil
}

// LintVet runs go vet.
func LintVet() error {
	return Run("Go Vet", "go", "vet", "./...")
}

// LintStaticcheck runs staticcheck.
func LintStaticcheck() error {
	return optional(Run("Staticcheck", "staticcheck", "./..."),
		"staticcheck", "honnef.co/go/tools/cmd/staticcheck@latest")
}

// LintGolangci runs golangci-lint.
func LintGolangci() error {
	return optional(Run("Golangci-lint", "golangci-lint", "run", golangciDisabled, "--timeout=5m", "./..."),
		"golangci-lint", "github.com/golangci/golangci-lint/cmd/golangci-lint@latest")
}

// LintGolangciFix runs golangci-lint with auto-fixes.
func LintGolangciFix() error {
	return optional(Run("Golangci-lint Fix", "golangci-lint", "run", "--fix", golangciDisabled, "--timeout=5m", "./..."),
		"golangci-lint", "github.com/golangci/golangci-lint/cmd/golangci-lint@latest")
}

// optional warns with an install hint when tool is missing and wraps any
// other failure.
func optional(err error, tool, pkg string) error {
	switch {
	case err == nil:
		return nil
	case IsCommandNotFound(err):
		PrintWarning(fmt.Sprintf("%s not found (install: go install %s)", tool, pkg))
		return err
	default:
		return fmt.Errorf("%s failed: %w", tool, err)
	}
}
