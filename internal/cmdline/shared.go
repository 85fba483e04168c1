package cmdline

import (
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/dkoosis/lintmux/internal/diag"
	"github.com/dkoosis/lintmux/internal/linter"
)

// Option names recognized by the shared parser, without dashes.
const (
	optBuildPath      = "build-path"
	optExportFixes    = "export-fixes"
	optResultYAML     = "result-yaml"
	optSubLinter      = "sub-linter"
	optClazyChecks    = "clazy-checks"
	optClangExtraArgs = "clang-extra-args"
)

var longOptions = map[string]bool{
	optBuildPath:      true,
	optExportFixes:    true,
	optResultYAML:     true,
	optSubLinter:      true,
	optClazyChecks:    true,
	optClangExtraArgs: true,
}

// values receives the parsed recognized options.
type values struct {
	buildPath      string
	exportFixes    string
	subLinters     []string
	clazyChecks    string
	clangExtraArgs string
	ideProfile     string
	help           bool
}

// newFlagSet declares every lintmux option on a pflag set bound to v.
func newFlagSet(v *values) *pflag.FlagSet {
	fs := pflag.NewFlagSet("lintmux", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == optResultYAML {
			return optExportFixes
		}
		return pflag.NormalizedName(name)
	})

	fs.StringVarP(&v.buildPath, optBuildPath, "p", "", "build directory holding compile_commands.json; per-linter results go here")
	fs.StringVar(&v.exportFixes, optExportFixes, "", "combined result YAML file (alias --result-yaml)")
	fs.StringArrayVar(&v.subLinters, optSubLinter, nil, "linter to run; repeatable, all linters when absent")
	fs.StringVar(&v.clazyChecks, optClazyChecks, "", "comma-separated checks passed to clazy as --checks")
	fs.StringVar(&v.clangExtraArgs, optClangExtraArgs, "", "compiler arguments passed to every linter as --extra-arg")
	fs.StringVar(&v.ideProfile, "ide-profile", "", "calling convention of the host: "+strings.Join(ProfileNames(), ", "))
	fs.BoolVarP(&v.help, "help", "h", false, "print this help")
	return fs
}

// option is one recognized occurrence on the command line.
type option struct {
	name  string
	value string
	from  token
	to    token
}

// recognize reports whether t is one of the shared options and splits it.
func recognize(t string) (name, value string, hasValue, ok bool) {
	switch {
	case strings.HasPrefix(t, "--"):
		name, value, hasValue = strings.Cut(t[2:], "=")
		return name, value, hasValue, longOptions[name]
	case t == "-p" || strings.HasPrefix(t, "-p="):
		_, value, hasValue = strings.Cut(t, "=")
		return "p", value, hasValue, true
	}
	return "", "", false, false
}

// scan separates recognized options from leftovers. It reports false when an
// option is malformed.
func (a *adapter) scan(toks []token) (opts []option, leftovers []token, ok bool) {
	ok = true
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		name, value, hasValue, known := recognize(t.text)
		if !known {
			leftovers = append(leftovers, t)
			continue
		}
		switch {
		case hasValue && value == "":
			a.fail(t, t, "option %s has an empty value", t.text)
			ok = false
		case hasValue:
			opts = append(opts, option{name: name, value: value, from: t, to: t})
		case i+1 < len(toks) && !toks[i+1].isFlag():
			opts = append(opts, option{name: name, value: toks[i+1].text, from: t, to: toks[i+1]})
			i++
		default:
			a.warn(t, t, "%s: %s", t.text, MissingValue)
		}
	}
	return opts, leftovers, ok
}

// flagArgs renders opts in the single-token form pflag parses.
func flagArgs(opts []option) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		if o.name == "p" {
			out = append(out, "-p="+o.value)
			continue
		}
		out = append(out, "--"+o.name+"="+o.value)
	}
	return out
}

// shared implements the clion, qtcreator and msbuild profiles. Only Route
// and ExtraArgs differ between them.
func (a *adapter) shared(p Profile, toks []token) ([]linter.Invocation, string) {
	opts, leftovers, ok := a.scan(toks)
	if !ok {
		return nil, ""
	}

	var v values
	fs := newFlagSet(&v)
	if err := fs.Parse(flagArgs(opts)); err != nil {
		a.diags.Addf(diag.Error, Origin, "%v", err)
		return nil, ""
	}

	if v.buildPath == "" {
		a.diags.Addf(diag.Error, Origin, "working directory is not set; pass -p <build-path>")
	}
	if v.exportFixes == "" {
		a.diags.Addf(diag.Error, Origin, "combined result file is not set; pass --export-fixes=<file>")
	}

	var spans []option
	for _, o := range opts {
		if o.name == optSubLinter {
			spans = append(spans, o)
		}
	}
	tools := a.selectTools(v.subLinters, spans)
	if a.diags.HasErrors() {
		return nil, ""
	}

	routes := make([]Route, len(leftovers))
	for i, t := range leftovers {
		routes[i] = p.Route(t.text)
		if r := routes[i]; r.Drop {
			a.add(r.Level, t, t, "%s: %s", t.text, r.Reason)
		}
	}

	settings := Settings{
		ClazyChecks:    v.clazyChecks,
		ClangExtraArgs: v.clangExtraArgs,
		Platform:       a.platform,
	}
	invs := make([]linter.Invocation, 0, len(tools))
	for _, tool := range tools {
		args := []string{"-p=" + v.buildPath}
		args = append(args, p.ExtraArgs(tool, settings)...)
		for i, t := range leftovers {
			if routes[i].reaches(tool) {
				args = append(args, t.text)
			}
		}
		invs = append(invs, linter.Invocation{
			Name:       tool,
			Args:       args,
			ResultPath: ResultPathFor(v.buildPath, tool),
		})
	}
	return invs, v.exportFixes
}

// selectTools validates the requested linters. spans[i] locates names[i] on
// the command line when known.
func (a *adapter) selectTools(names []string, spans []option) []string {
	if len(names) == 0 {
		a.info(AllLintersUsed)
		return a.reg.Names()
	}
	seen := make(map[string]bool, len(names))
	tools := make([]string, 0, len(names))
	for i, name := range names {
		var at option
		if i < len(spans) {
			at = spans[i]
		}
		switch {
		case seen[name]:
			a.warn(at.from, at.to, "linter %q is requested more than once; duplicate ignored", name)
		case !a.known(name):
			a.fail(at.from, at.to, "unknown linter %q; known linters: %s", name, strings.Join(a.reg.Names(), ", "))
		default:
			tools = append(tools, name)
		}
		seen[name] = true
	}
	return tools
}

func (a *adapter) known(name string) bool {
	_, ok := a.reg.Lookup(name)
	return ok
}
