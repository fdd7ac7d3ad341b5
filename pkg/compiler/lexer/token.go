// Package lexer provides lexical analysis for Hexa-Script source.
package lexer

import "strings"

// Token is one non-blank, non-comment source line split into atoms.
type Token struct {
	Keyword string   // first atom, upper-cased
	Args    []string // remaining atoms, verbatim
	Line    int      // 1-indexed source line
	Column  int      // 1-indexed column of the keyword
}

// Atom delimiters.
const (
	LParen = "("
	RParen = ")"
	quote  = '"'
)

// IsQuoted reports whether an atom is a double-quoted span.
func IsQuoted(atom string) bool {
	return len(atom) >= 2 && atom[0] == quote && atom[len(atom)-1] == quote
}

// Unquote strips the surrounding double quotes from a quoted atom.
// Unquoted atoms are returned unchanged.
func Unquote(atom string) string {
	if IsQuoted(atom) {
		return atom[1 : len(atom)-1]
	}
	return atom
}

// String renders the token back into a single source line.
func (t Token) String() string {
	if len(t.Args) == 0 {
		return t.Keyword
	}
	return t.Keyword + " " + strings.Join(t.Args, " ")
}
