package cmdline

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dkoosis/lintmux/internal/diag"
	"github.com/dkoosis/lintmux/internal/linter"
)

// Profile names accepted by --ide-profile.
const (
	Verbatim  = "verbatim"
	CLion     = "clion"
	QtCreator = "qtcreator"
	MSBuild   = "msbuild"
)

// SourceGlob matches the C and C++ files the msbuild profile forwards.
const SourceGlob = "**/*.{c,cc,cpp,cxx,c++,h,hh,hpp,hxx,ipp,inl}"

// Route says where one unrecognized token goes.
type Route struct {
	// Tool receives the token alone. Empty means every tool.
	Tool string
	// Drop discards the token and reports Reason at Level.
	Drop   bool
	Level  diag.Level
	Reason string
}

func broadcast() Route       { return Route{} }
func only(tool string) Route { return Route{Tool: tool} }

func (r Route) reaches(tool string) bool {
	return !r.Drop && (r.Tool == "" || r.Tool == tool)
}

// Settings carries the parsed options a profile may turn into extra arguments.
type Settings struct {
	ClazyChecks    string
	ClangExtraArgs string
	// Platform is the MSBuild "Platform" property, e.g. x64.
	Platform string
}

// Profile is the calling convention of one host. Only the two hooks vary
// between hosts; parsing, validation and defaulting are shared.
type Profile struct {
	Name string
	// MergeStreams runs every tool with stderr folded into stdout.
	MergeStreams bool
	// Reformat rewrites tool output line by line. Nil relays raw bytes.
	Reformat linter.LineFormatter
	// Route decides where an unrecognized token goes.
	Route func(tok string) Route
	// ExtraArgs returns the arguments tool gets after -p and before routed tokens.
	ExtraArgs func(tool string, s Settings) []string
}

var profiles = map[string]Profile{
	Verbatim: {Name: Verbatim},
	CLion: {
		Name:      CLion,
		Route:     clionRoute,
		ExtraArgs: commonExtraArgs,
	},
	QtCreator: {
		Name:         QtCreator,
		MergeStreams: true,
		Reformat:     ClazyTags,
		Route:        qtcreatorRoute,
		ExtraArgs:    commonExtraArgs,
	},
	MSBuild: {
		Name:      MSBuild,
		Route:     msbuildRoute,
		ExtraArgs: msbuildExtraArgs,
	},
}

// LookupProfile returns the profile registered under name.
func LookupProfile(name string) (Profile, bool) {
	p, ok := profiles[name]
	return p, ok
}

// ProfileNames returns the accepted --ide-profile values.
func ProfileNames() []string {
	return []string{CLion, QtCreator, MSBuild, Verbatim}
}

// clionRoute broadcasts files and --extra-arg*. Every other flag
// (--config=, --header-filter=, --checks=, --fix*, ...) is clang-tidy syntax.
func clionRoute(tok string) Route {
	if !strings.HasPrefix(tok, "-") {
		return broadcast()
	}
	if name, _, _ := splitOption(tok); strings.HasPrefix(name, "extra-arg") {
		return broadcast()
	}
	return only(linter.ClangTidy)
}

func qtcreatorRoute(tok string) Route {
	if name, _, _ := splitOption(tok); strings.HasPrefix(tok, "-") && name == "header-filter" {
		return broadcast()
	}
	return clionRoute(tok)
}

func msbuildRoute(tok string) Route {
	if strings.HasPrefix(tok, "-") {
		return clionRoute(tok)
	}
	if IsSource(tok) {
		return broadcast()
	}
	if strings.HasPrefix(tok, "/") {
		return Route{Drop: true, Level: diag.Info, Reason: "MSBuild switch is not passed to linters"}
	}
	return Route{Drop: true, Level: diag.Warning, Reason: "not a C/C++ source file; ignored"}
}

// IsSource reports whether path names a C or C++ source or header.
func IsSource(path string) bool {
	p := strings.ToLower(filepath.ToSlash(path))
	p = strings.TrimPrefix(p, "/")
	ok, err := doublestar.Match(SourceGlob, p)
	return err == nil && ok
}

func commonExtraArgs(tool string, s Settings) []string {
	var out []string
	if tool == linter.Clazy && s.ClazyChecks != "" {
		out = append(out, "--checks="+s.ClazyChecks)
	}
	for _, a := range strings.Fields(s.ClangExtraArgs) {
		out = append(out, "--extra-arg="+a)
	}
	return out
}

func msbuildExtraArgs(tool string, s Settings) []string {
	out := commonExtraArgs(tool, s)
	if triple := TargetTriple(s.Platform); triple != "" {
		out = append(out, "--extra-arg-before=--target="+triple)
	}
	return out
}

// TargetTriple maps an MSBuild Platform value to a clang target triple.
// Unknown platforms yield "".
func TargetTriple(platform string) string {
	switch strings.ToLower(platform) {
	case "x64", "amd64":
		return "x86_64-pc-windows-msvc"
	case "win32", "x86":
		return "i686-pc-windows-msvc"
	case "arm64":
		return "aarch64-pc-windows-msvc"
	default:
		return ""
	}
}

var clazyWarningTag = regexp.MustCompile(`\[-Wclazy-([A-Za-z0-9_-]+)\]`)

// ClazyTags rewrites clazy's "[-Wclazy-<check>]" tags to "[clazy-<check>]",
// the form Qt Creator links to its check documentation. Other tools' lines
// pass unchanged.
func ClazyTags(tool string, line []byte) []byte {
	if tool != linter.Clazy {
		return line
	}
	return clazyWarningTag.ReplaceAll(line, []byte("[clazy-$1]"))
}
