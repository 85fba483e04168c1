package cmdline

import "strings"

// token is one argument together with its byte offset in the command line
// joined with single spaces.
type token struct {
	text  string
	first int
}

func (t token) last() int { return t.first + len(t.text) }

func (t token) isFlag() bool { return strings.HasPrefix(t.text, "-") }

func tokenize(args []string) []token {
	toks := make([]token, len(args))
	pos := 0
	for i, a := range args {
		toks[i] = token{text: a, first: pos}
		pos += len(a) + 1
	}
	return toks
}

func texts(toks []token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.text
	}
	return out
}

// CommandLine joins args the way diagnostic positions index into them.
func CommandLine(args []string) string {
	return strings.Join(args, " ")
}

// splitOption splits "--name=value" or "-n=value" into its name without
// dashes and its value. hasValue reports whether a '=' was present.
func splitOption(arg string) (name, value string, hasValue bool) {
	trimmed := strings.TrimLeft(arg, "-")
	name, value, hasValue = strings.Cut(trimmed, "=")
	return name, value, hasValue
}
