package magetasks

import "fmt"

// QualityCheck lints, tests and builds. Lint findings are reported but only
// test and build failures fail the check.
func QualityCheck() error {
	PrintH1Header("lintmux Quality Check")

	if err := LintAll(); err != nil {
		PrintWarning("Linting issues found")
	}
	if err := TestRace(); err != nil {
		return fmt.Errorf("tests failed: %w", err)
	}
	if err := BuildAll(); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	PrintSuccess("Quality checks complete")
	return nil
}

// CI is QualityCheck with lint findings treated as failures.
func CI() error {
	PrintH1Header("lintmux CI")

	if err := LintAll(); err != nil {
		return fmt.Errorf("lint failed: %w", err)
	}
	if err := TestCoverage(); err != nil {
		return fmt.Errorf("tests failed: %w", err)
	}
	if err := BuildAll(); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	PrintSuccess("CI passed")
	return nil
}
