package buildsys

import (
	"strings"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/syntax"
)

// characters that would be interpreted by the shell if they appeared in a bare literal
const shellSpecialChars = " \t\n$'\"\\*?[]~#;&|<>(){}`"

// callExpr builds the shell AST for cmd without going through the parser so that arguments are never
// split or expanded.
func callExpr(cmd Command) (*syntax.CallExpr, error) {
	if cmd.Name == "" {
		return nil, eris.New("can't run a command without a name")
	}

	parts := append([]string{cmd.Name}, cmd.Args...)
	expr := new(syntax.CallExpr)
	expr.Args = make([]*syntax.Word, len(parts))

	for a, value := range parts {
		var wordPart syntax.WordPart

		if value == "" || strings.ContainsAny(value, shellSpecialChars) {
			node := new(syntax.SglQuoted)
			node.Left = syntax.Pos{}
			node.Right = syntax.Pos{}
			node.Value = value

			wordPart = syntax.WordPart(node)
		} else {
			node := new(syntax.Lit)
			node.ValuePos = syntax.Pos{}
			node.ValueEnd = syntax.Pos{}
			node.Value = value

			wordPart = syntax.WordPart(node)
		}

		expr.Args[a] = new(syntax.Word)
		expr.Args[a].Parts = []syntax.WordPart{wordPart}
	}

	return expr, nil
}
