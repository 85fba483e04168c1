package linter

// Invocation is one resolved tool run produced by the command-line adapter.
type Invocation struct {
	Name       string
	Args       []string
	ResultPath string
}
