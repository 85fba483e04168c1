package magetasks

// TestAll runs all tests.
func TestAll() error {
	PrintH2Header("Tests")
	if err := Run("Go Test", "go", "test", "./..."); err != nil {
		PrintError("Tests failed")
		return err
	}
	PrintSuccess("All tests passed")
	return nil
}

// TestCoverage runs tests with coverage and prints the per-function report.
func TestCoverage() error {
	PrintH2Header("Test Coverage")
	if err := Run("Go Test", "go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		PrintError("Tests failed")
		return err
	}
	if err := Run("Coverage", "go", "tool", "cover", "-func=coverage.out"); err != nil {
		PrintWarning(err.Error())
	}
	PrintSuccess("Coverage report generated")
	return nil
}

// TestRace runs tests with the race detector. The orchestrator relays
// output from several goroutines, so this is the run that matters most.
func TestRace() error {
	PrintH2Header("Race Detector")
	if err := RunEnv("Go Test", []string{"CGO_ENABLED=1"}, "go", "test", "-race", "./..."); err != nil {
		PrintError("Race detector found issues")
		return err
	}
	PrintSuccess("No race conditions detected")
	return nil
}
