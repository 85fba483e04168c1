package cmdline

import (
	"fmt"
	"io"
	"strings"

	"github.com/dkoosis/lintmux/internal/linter"
)

// WantsHelp reports whether --help or -h appears before the first
// --sub-linter= boundary. Later occurrences belong to a linter.
func WantsHelp(args []string) bool {
	for _, a := range args {
		if strings.HasPrefix(a, subLinterPrefix) {
			return false
		}
		if a == "--help" || a == "-h" {
			return true
		}
	}
	return false
}

// Usage prints the command synopsis and the option reference.
func Usage(w io.Writer, reg *linter.Registry) {
	var v values
	fs := newFlagSet(&v)

	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  lintmux --ide-profile=<profile> -p <build-path> --export-fixes=<file> [--sub-linter=<name>]... [options] [files]")
	fmt.Fprintln(w, "  lintmux [--export-fixes=<file>] --sub-linter=<name> [linter args]... [--sub-linter=<name> [linter args]...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Without --ide-profile every linter's arguments are passed through verbatim.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprint(w, fs.FlagUsages())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Profiles: %s\n", strings.Join(ProfileNames(), ", "))
	fmt.Fprintf(w, "Linters:  %s\n", strings.Join(reg.Names(), ", "))
}
