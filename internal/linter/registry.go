// Package linter knows the external linters lintmux can drive and supervises
// one running instance of each.
package linter

import (
	"fmt"
	"strings"
)

// Names of the built-in tools.
const (
	ClangTidy = "clang-tidy"
	Clazy     = "clazy"
)

// Documentation URL templates for the built-in tools.
const (
	clangTidyDocBase = "https://clang.llvm.org/extra/clang-tidy/checks/"
	clazyDocBase     = "https://github.com/KDE/clazy/blob/master/docs/checks/README-"
	clazyCheckPrefix = "clazy-"
)

// Tool describes how to call one external linter.
type Tool struct {
	// Name is the identifier used on the command line (--sub-linter=<Name>).
	Name string
	// Executable is the program to run, resolved through PATH when not absolute.
	Executable string
	// BaseArgs are passed before the invocation's own arguments.
	BaseArgs []string
	// Env is appended to the inherited environment of the child.
	Env []string
	// SuccessCode is the exit code the tool uses for a completed run.
	SuccessCode int
	// ResultFlag is prefixed to the result-file path, e.g. "--export-fixes=".
	ResultFlag string
	// DocLink maps a check name to its documentation URL. Empty means no link.
	DocLink func(check string) string
}

// Command returns argv for running the tool with args, appending the result
// flag when resultPath is set.
func (t Tool) Command(args []string, resultPath string) []string {
	argv := make([]string, 0, 1+len(t.BaseArgs)+len(args)+1)
	argv = append(argv, t.Executable)
	argv = append(argv, t.BaseArgs...)
	argv = append(argv, args...)
	if resultPath != "" && t.ResultFlag != "" {
		argv = append(argv, t.ResultFlag+resultPath)
	}
	return argv
}

// ClangTidyTool returns the default clang-tidy entry.
func ClangTidyTool() Tool {
	return Tool{
		Name:       ClangTidy,
		Executable: "clang-tidy",
		ResultFlag: "--export-fixes=",
		DocLink:    ClangTidyDocLink,
	}
}

// ClazyTool returns the default clazy entry.
func ClazyTool() Tool {
	return Tool{
		Name:       Clazy,
		Executable: "clazy-standalone",
		ResultFlag: "--export-fixes=",
		DocLink:    ClazyDocLink,
	}
}

// ClangTidyDocLink appends the raw check name to the clang-tidy checks index.
// An empty name gets no link rather than a URL pointing at ".html".
func ClangTidyDocLink(check string) string {
	if check == "" {
		return ""
	}
	return clangTidyDocBase + check + ".html"
}

// ClazyDocLink strips the "clazy-" prefix from check and links the clazy
// README for it. Names without the prefix get no link.
func ClazyDocLink(check string) string {
	name, ok := strings.CutPrefix(check, clazyCheckPrefix)
	if !ok || name == "" {
		return ""
	}
	return clazyDocBase + name + ".md"
}

// Registry is the ordered set of tools lintmux may run. Build one at startup
// and pass it to the adapter and orchestrator.
type Registry struct {
	order []string
	tools map[string]Tool
}

// NewRegistry returns a registry holding tools in the given order. A later
// tool with the same name replaces the earlier one in place.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// DefaultRegistry returns the built-in tools: clang-tidy then clazy.
func DefaultRegistry() *Registry {
	return NewRegistry(ClangTidyTool(), ClazyTool())
}

// Register adds or replaces a tool.
func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name]; !exists {
		r.order = append(r.order, t.Name)
	}
	r.tools[t.Name] = t
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// MustLookup is Lookup for names taken from Names. It panics on a miss.
func (r *Registry) MustLookup(name string) Tool {
	t, ok := r.tools[name]
	if !ok {
		panic(fmt.Sprintf("linter: %q is not registered", name))
	}
	return t
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}
