// Package cmdline turns the unified lintmux command line into one argument
// list per linter, following the calling convention of the host that
// invoked lintmux.
package cmdline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dkoosis/lintmux/internal/diag"
	"github.com/dkoosis/lintmux/internal/linter"
)

// Origin is the component name attached to adapter diagnostics.
const Origin = "CommandLine"

// AllLintersUsed is reported when no --sub-linter selects the tools.
const AllLintersUsed = "All linters are used"

// MissingValue is reported for a recognized option without a value.
const MissingValue = "parameter set but value not set; ignored"

// Result is the outcome of adapting one command line. An empty Invocations
// list means adaptation failed and Diagnostics holds at least one Error.
type Result struct {
	Profile            Profile
	Invocations        []linter.Invocation
	CombinedResultPath string
	// CommandLine is the source command line diagnostic positions index into.
	CommandLine string
	Diagnostics []diag.Diagnostic
}

// Failed reports whether nothing may be run.
func (r Result) Failed() bool {
	return len(r.Invocations) == 0
}

// Option configures Adapt.
type Option func(*adapter)

// WithFallbackResult sets the combined result path the verbatim profile
// falls back to when the requested one is absent or cannot be created.
func WithFallbackResult(path string) Option {
	return func(a *adapter) {
		if path != "" {
			a.fallback = path
		}
	}
}

// WithPlatform sets the MSBuild Platform the msbuild profile derives the
// target triple from.
func WithPlatform(platform string) Option {
	return func(a *adapter) { a.platform = platform }
}

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// DefaultFallbackResult is the combined result path used when none is configured.
func DefaultFallbackResult() string {
	return filepath.Join(os.TempDir(), "lintmux-result.yaml")
}

// ResultPathFor returns the per-tool result file inside workdir.
func ResultPathFor(workdir, tool string) string {
	return filepath.Join(workdir, "diagnostics-"+tool+".yaml")
}

type adapter struct {
	reg      *linter.Registry
	fallback string
	platform string
	logger   *slog.Logger
	diags    diag.Sink
}

// Adapt selects the profile named by --ide-profile and rewrites args into
// invocations of the tools in reg.
func Adapt(reg *linter.Registry, args []string, opts ...Option) Result {
	a := &adapter{
		reg:      reg,
		fallback: DefaultFallbackResult(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}

	res := Result{CommandLine: CommandLine(args)}
	profile, rest, ok := a.selectProfile(tokenize(args))
	res.Profile = profile
	if ok {
		if profile.Name == Verbatim {
			res.Invocations, res.CombinedResultPath = a.verbatim(rest)
		} else {
			res.Invocations, res.CombinedResultPath = a.shared(profile, rest)
		}
	}

	res.Diagnostics = a.diags.All()
	if diag.HasErrors(res.Diagnostics) {
		res.Invocations = nil
		res.CombinedResultPath = ""
	}

	a.logger.Debug("command line adapted",
		"profile", res.Profile.Name,
		"invocations", len(res.Invocations),
		"combined", res.CombinedResultPath,
		"diagnostics", len(res.Diagnostics))
	for _, inv := range res.Invocations {
		a.logger.Debug("invocation", "tool", inv.Name, "args", inv.Args, "result", inv.ResultPath)
	}
	return res
}

// selectProfile removes the --ide-profile occurrences before the first
// --sub-linter= boundary and resolves the last one. Later occurrences belong
// to a linter and are kept. ok is false when the name is malformed or unknown.
func (a *adapter) selectProfile(toks []token) (Profile, []token, bool) {
	const opt = "--ide-profile"
	var (
		name string
		span token
		rest = make([]token, 0, len(toks))
		ok   = true
	)
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if strings.HasPrefix(t.text, subLinterPrefix) {
			rest = append(rest, toks[i:]...)
			break
		}
		switch {
		case t.text == opt:
			if i+1 >= len(toks) || toks[i+1].isFlag() {
				a.warn(t, t, MissingValue)
				continue
			}
			name, span = toks[i+1].text, token{text: t.text + " " + toks[i+1].text, first: t.first}
			i++
		case strings.HasPrefix(t.text, opt+"="):
			v := strings.TrimPrefix(t.text, opt+"=")
			if v == "" {
				a.fail(t, t, "option %s has an empty value", t.text)
				ok = false
				continue
			}
			name, span = v, t
		default:
			rest = append(rest, t)
		}
	}
	if !ok {
		return Profile{}, nil, false
	}
	if name == "" {
		return Profile{Name: Verbatim}, rest, true
	}
	p, found := LookupProfile(name)
	if !found {
		a.fail(span, span, "unknown IDE profile %q; expected one of %s", name, strings.Join(ProfileNames(), ", "))
		return Profile{}, nil, false
	}
	return p, rest, true
}

func (a *adapter) add(level diag.Level, from, to token, format string, args ...any) {
	a.diags.Add(diag.Diagnostic{
		Level:    level,
		Origin:   Origin,
		Text:     fmt.Sprintf(format, args...),
		FirstPos: from.first,
		LastPos:  to.last(),
	})
}

func (a *adapter) fail(from, to token, format string, args ...any) {
	a.add(diag.Error, from, to, format, args...)
}

func (a *adapter) warn(from, to token, format string, args ...any) {
	a.add(diag.Warning, from, to, format, args...)
}

func (a *adapter) info(format string, args ...any) {
	a.diags.Addf(diag.Info, Origin, format, args...)
}
