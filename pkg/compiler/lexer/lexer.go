package lexer

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// commentPrefix marks a full-line comment.
const commentPrefix = "#"

// Lexer splits a single source line into atoms.
type Lexer struct {
	input        string
	position     int  // current position in input
	readPosition int  // current reading position (after current char)
	ch           byte // current char
}

// New creates a new Lexer for one line of input.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// Tokenize converts source text into one Token per statement line.
// Empty lines and lines starting with '#' are skipped. Tokenize never
// fails: malformed quoting is left for the compiler to reject.
func Tokenize(source string) []Token {
	upper := cases.Upper(language.Und)

	var tokens []Token
	for i, raw := range SplitLines(source) {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}

		atoms := New(line).Atoms()
		if len(atoms) == 0 {
			continue
		}

		tokens = append(tokens, Token{
			Keyword: upper.String(atoms[0]),
			Args:    atoms[1:],
			Line:    i + 1,
			Column:  strings.Index(raw, line) + 1,
		})
	}
	return tokens
}

// Atoms returns every atom of the line.
// A "..." span is a single atom with its quotes retained, '(' and ')'
// are always standalone atoms, and any other whitespace-delimited run is
// an atom. An unterminated quote yields the rest of the line, without
// the opening quote, as a bare atom.
func (l *Lexer) Atoms() []string {
	var atoms []string
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			atoms = append(atoms, buf.String())
			buf.Reset()
		}
	}

	for !l.atEnd() {
		switch {
		case l.ch == quote:
			flush()
			if s, ok := l.readString(); ok {
				atoms = append(atoms, string(quote)+s+string(quote))
			} else {
				buf.WriteString(s)
			}
			continue
		case isWhitespace(l.ch):
			flush()
		case l.ch == '(' || l.ch == ')':
			flush()
			atoms = append(atoms, string(l.ch))
		default:
			buf.WriteByte(l.ch)
		}
		l.readChar()
	}
	flush()

	return atoms
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

// atEnd reports whether the whole line has been consumed. A NUL byte
// inside the line is ordinary input.
func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

// readString reads the body of a quoted span, leaving the lexer after the
// closing quote. ok is false when the line ends before the closing quote.
func (l *Lexer) readString() (string, bool) {
	start := l.position + 1
	for {
		l.readChar()
		if l.atEnd() {
			return l.input[start:], false
		}
		if l.ch == quote {
			s := l.input[start:l.position]
			l.readChar()
			return s, true
		}
	}
}

// SplitLines splits source at every line boundary: "\n", "\r\n", a lone
// "\r", and the other separators "\v", "\f", "\x1c"-"\x1e", U+0085,
// U+2028 and U+2029. A trailing boundary does not start an extra line.
func SplitLines(source string) []string {
	var lines []string
	start := 0
	for i, r := range source {
		switch r {
		case '\n', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		case '\r':
			if i+1 < len(source) && source[i+1] == '\n' {
				continue
			}
		default:
			continue
		}
		lines = append(lines, source[start:i])
		start = i + utf8.RuneLen(r)
	}
	if start < len(source) {
		lines = append(lines, source[start:])
	}
	return lines
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\v' || ch == '\f'
}
