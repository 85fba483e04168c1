// Package magetasks holds the build, test and lint tasks behind the
// Magefile. External tools run through the same process supervisor lintmux
// uses for linters, so their output is relayed live.
package magetasks
