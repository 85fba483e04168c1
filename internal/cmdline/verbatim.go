package cmdline

import (
	"errors"
	"os"
	"strings"

	"github.com/dkoosis/lintmux/internal/diag"
	"github.com/dkoosis/lintmux/internal/linter"
)

const (
	subLinterPrefix   = "--" + optSubLinter + "="
	exportFixesPrefix = "--" + optExportFixes + "="
	resultYAMLPrefix  = "--" + optResultYAML + "="
)

// resultFlagValue returns the path carried by --export-fixes= or --result-yaml=.
func resultFlagValue(arg string) (string, bool) {
	if v, ok := strings.CutPrefix(arg, exportFixesPrefix); ok {
		return v, true
	}
	return strings.CutPrefix(arg, resultYAMLPrefix)
}

// verbatim passes each tool's arguments through untouched. Every
// --sub-linter=<name> starts the argument list of <name>; tokens before the
// first one only contribute the combined result path.
func (a *adapter) verbatim(toks []token) ([]linter.Invocation, string) {
	var (
		combined string
		invs     []linter.Invocation
		cur      = -1
	)
	for _, t := range toks {
		if name, ok := strings.CutPrefix(t.text, subLinterPrefix); ok {
			switch {
			case name == "":
				a.fail(t, t, "option %s has an empty value", t.text)
			case !a.known(name):
				a.fail(t, t, "unknown linter %q; known linters: %s", name, strings.Join(a.reg.Names(), ", "))
			}
			invs = append(invs, linter.Invocation{Name: name})
			cur = len(invs) - 1
			continue
		}
		if cur < 0 {
			if path, ok := resultFlagValue(t.text); ok {
				combined = path
			}
			continue
		}
		if path, ok := strings.CutPrefix(t.text, exportFixesPrefix); ok {
			invs[cur].ResultPath = path
			continue
		}
		invs[cur].Args = append(invs[cur].Args, t.text)
	}

	if len(invs) == 0 {
		a.diags.Addf(diag.Error, Origin, "no linter selected; pass --sub-linter=<name> before each linter's arguments")
		return nil, ""
	}
	if a.diags.HasErrors() {
		return nil, ""
	}
	return invs, a.combinedPath(combined)
}

// combinedPath returns path when it can be written, the fallback otherwise.
func (a *adapter) combinedPath(path string) string {
	if path == "" {
		a.diags.Addf(diag.Warning, Origin, "combined result file is not set")
	} else if err := probe(path); err != nil {
		a.diags.Addf(diag.Warning, Origin, "combined result file %s cannot be created: %v", path, err)
	} else {
		return path
	}
	a.info("combined result is written to %s", a.fallback)
	return a.fallback
}

// probe checks that path can be written without leaving a new file behind.
func probe(path string) error {
	if _, err := os.Stat(path); err == nil {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
		if err != nil {
			return err
		}
		return f.Close()
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}
