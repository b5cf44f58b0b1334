package tnl

import "fmt"

// SemanticError is a non-fatal diagnostic produced by Analyze. Unlike
// lexer and parser errors it does not halt anything; the caller decides
// whether to proceed.
type SemanticError struct {
	Message string
	Pos     *Position // nil when no position is attached
}

func (e *SemanticError) String() string {
	if e.Pos != nil {
		return fmt.Sprintf("%s at %s.", e.Message, e.Pos)
	}
	return fmt.Sprintf("%s.", e.Message)
}

// Analyze validates the tree without executing it and returns the list of
// diagnostics found:
//
//   - every pattern literal must compile under the host regex engine;
//   - every `format` map with a literal format string must have balanced
//     braces.
func Analyze(node Node) []*SemanticError {
	a := &analyzer{}
	Walk(node, a.check)
	return a.errors
}

type analyzer struct {
	errors []*SemanticError
}

func (a *analyzer) check(node Node) bool {
	switch n := node.(type) {
	case *Pattern:
		if _, err := n.Compile(); err != nil {
			a.errors = append(a.errors, &SemanticError{
				Message: fmt.Sprintf("Invalid regex pattern /%s/", n.Data),
			})
		}
	case *Map:
		if n.Name.Data != "format" || len(n.Args) == 0 {
			break
		}
		if format, ok := n.Args[0].(*String); ok {
			if err := validateFormat(format.Data); err != nil {
				a.errors = append(a.errors, &SemanticError{
					Message: fmt.Sprintf("Invalid format string (%s)", err),
				})
			}
		}
	}
	return true
}
