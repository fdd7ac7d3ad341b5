// Package compiler provides the compilation pipeline for Hexa-Script sources.
// It transforms source code into an opcode.Program in two phases:
// 1. Lexer: one token per statement line
// 2. Compiler: instruction generation and label resolution
//
// This package provides a unified API for compiling scripts:
// - Compile: Compiles source code string to a Program
// - CompileWithOptions: Compiles with additional options
// - CompileScript: Compiles a script loaded by script.Loader
package compiler

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hexa-core/hexascript/pkg/compiler/lexer"
	"github.com/hexa-core/hexascript/pkg/logger"
	"github.com/hexa-core/hexascript/pkg/opcode"
	"github.com/hexa-core/hexascript/pkg/script"
)

// Statement keywords.
const (
	KeywordLabel  = "LABEL"
	KeywordSet    = "SET"
	KeywordGoto   = "GOTO"
	KeywordIf     = "IF"
	KeywordThen   = "THEN"
	KeywordAction = "ACTION"
	KeywordEnd    = "END"
)

// CompileOptions provides configuration options for compilation.
type CompileOptions struct {
	// Logger receives debug output. Defaults to logger.GetLogger().
	Logger *slog.Logger
}

// Compile compiles source code to a Program.
// It chains the lexer → compiler pipeline and stops at the first error;
// no partial Program is returned on failure.
//
// Parameters:
//   - source: UTF-8 encoded source code string
//
// Returns:
//   - *opcode.Program: The compiled Program
//   - error: A *CompileError describing the first violation, or nil
func Compile(source string) (*opcode.Program, error) {
	return CompileWithOptions(source, CompileOptions{})
}

// CompileWithOptions compiles source code with additional options.
func CompileWithOptions(source string, opts CompileOptions) (*opcode.Program, error) {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	tokens := lexer.Tokenize(source)
	log.Debug("Source tokenized", "token_count", len(tokens))

	c := &Compiler{
		source: source,
		labels: make(map[string]int),
		seen:   make(map[string]int),
	}
	if err := c.compileTokens(tokens); err != nil {
		log.Debug("Compilation failed", "error", err)
		return nil, err
	}

	program := &opcode.Program{
		Instructions: c.instructions,
		Labels:       c.labels,
	}
	log.Debug("Compilation completed", "instruction_count", program.Len(), "label_count", len(program.Labels))
	return program, nil
}

// CompileScript compiles a script loaded from disk.
// The returned error names the script file.
func CompileScript(s script.Script, opts CompileOptions) (*opcode.Program, error) {
	program, err := CompileWithOptions(s.Content, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.FileName, err)
	}
	return program, nil
}

// Compiler turns a token stream into instructions and a label table.
type Compiler struct {
	source       string
	instructions []opcode.Instruction
	labels       map[string]int
	seen         map[string]int // label -> declaring line
}

// compileTokens compiles every statement and appends the trailing End.
func (c *Compiler) compileTokens(tokens []lexer.Token) error {
	for _, tok := range tokens {
		if err := c.compileStatement(tok); err != nil {
			return err
		}
	}

	if n := len(c.instructions); n == 0 {
		c.emit(opcode.End{})
	} else if _, ok := c.instructions[n-1].(opcode.End); !ok {
		c.emit(opcode.End{})
	}
	return nil
}

func (c *Compiler) emit(inst opcode.Instruction) {
	c.instructions = append(c.instructions, inst)
}

// compileStatement compiles a single statement line.
func (c *Compiler) compileStatement(tok lexer.Token) error {
	switch tok.Keyword {
	case KeywordLabel:
		return c.compileLabel(tok)
	case KeywordSet:
		inst, err := c.parseSet(tok, tok.Args)
		if err != nil {
			return err
		}
		c.emit(inst)
	case KeywordGoto:
		inst, err := c.parseGoto(tok, tok.Args)
		if err != nil {
			return err
		}
		c.emit(inst)
	case KeywordIf:
		inst, err := c.parseIf(tok)
		if err != nil {
			return err
		}
		c.emit(inst)
	case KeywordAction:
		inst, err := c.parseAction(tok, tok.Args)
		if err != nil {
			return err
		}
		c.emit(inst)
	case KeywordEnd:
		if len(tok.Args) > 0 {
			return c.errorf(tok, "END takes no arguments, got %q", strings.Join(tok.Args, " "))
		}
		c.emit(opcode.End{Line: tok.Line})
	default:
		return c.errorf(tok, "unknown keyword '%s'", tok.Keyword)
	}
	return nil
}

// compileLabel binds a label to the index of the next instruction.
func (c *Compiler) compileLabel(tok lexer.Token) error {
	name, err := c.expectName(tok, tok.Args, 0)
	if err != nil {
		return err
	}
	if len(tok.Args) > 1 {
		return c.errorf(tok, "unexpected tokens after label %q", name)
	}
	if prev, ok := c.seen[name]; ok {
		return NewCompilerErrorWithContext(
			fmt.Sprintf("duplicate label %q (first declared at line %d)", name, prev),
			tok.Line, tok.Column, c.source)
	}
	c.seen[name] = tok.Line
	c.labels[name] = len(c.instructions)
	return nil
}

// parseSet parses "SET name expr"; args excludes the SET keyword.
func (c *Compiler) parseSet(tok lexer.Token, args []string) (opcode.Set, error) {
	name, err := c.expectName(tok, args, 0)
	if err != nil {
		return opcode.Set{}, err
	}
	expr, err := c.parseExpression(tok, args[1:])
	if err != nil {
		return opcode.Set{}, err
	}
	return opcode.Set{Name: name, Expr: expr, Line: tok.Line}, nil
}

// parseGoto parses "GOTO label"; args excludes the GOTO keyword.
func (c *Compiler) parseGoto(tok lexer.Token, args []string) (opcode.Goto, error) {
	label, err := c.expectName(tok, args, 0)
	if err != nil {
		return opcode.Goto{}, err
	}
	if len(args) > 1 {
		return opcode.Goto{}, c.errorf(tok, "unexpected tokens after GOTO label %q", label)
	}
	return opcode.Goto{Label: label, Line: tok.Line}, nil
}

// parseAction parses "ACTION name value*". Arguments are plain values;
// parenthesized expressions are only accepted by SET.
func (c *Compiler) parseAction(tok lexer.Token, args []string) (opcode.Action, error) {
	name, err := c.expectName(tok, args, 0)
	if err != nil {
		return opcode.Action{}, err
	}
	values := make([]opcode.Expression, 0, len(args)-1)
	for _, arg := range args[1:] {
		if arg == lexer.LParen || arg == lexer.RParen {
			return opcode.Action{}, c.errorf(tok, "ACTION arguments must be values, got %q", arg)
		}
		v, err := c.parseValue(tok, arg)
		if err != nil {
			return opcode.Action{}, err
		}
		values = append(values, v)
	}
	return opcode.Action{Name: name, Args: values, Line: tok.Line}, nil
}

// parseIf parses "IF cond THEN inline" and "IF cond GOTO label".
// "THEN GOTO label" compiles to the same IfGoto as the short form.
func (c *Compiler) parseIf(tok lexer.Token) (opcode.Instruction, error) {
	condTokens, rest := splitCondition(tok.Args)
	cond, err := c.parseCondition(tok, condTokens)
	if err != nil {
		return nil, err
	}

	if len(rest) == 0 {
		return nil, c.errorf(tok, "IF statement must be followed by THEN or GOTO")
	}

	switch strings.ToUpper(rest[0]) {
	case KeywordGoto:
		g, err := c.parseGoto(tok, rest[1:])
		if err != nil {
			return nil, err
		}
		return opcode.IfGoto{Cond: cond, Label: g.Label, Line: tok.Line}, nil
	case KeywordThen:
		inline, err := c.parseInline(tok, rest[1:])
		if err != nil {
			return nil, err
		}
		if g, ok := inline.(opcode.Goto); ok {
			return opcode.IfGoto{Cond: cond, Label: g.Label, Line: tok.Line}, nil
		}
		return opcode.IfThen{Cond: cond, Inline: inline, Line: tok.Line}, nil
	default:
		return nil, c.errorf(tok, "IF statement must be followed by THEN or GOTO")
	}
}

// parseInline parses the statement following THEN.
func (c *Compiler) parseInline(tok lexer.Token, atoms []string) (opcode.InlineInstruction, error) {
	if len(atoms) == 0 {
		return nil, c.errorf(tok, "inline command missing after THEN")
	}

	keyword := strings.ToUpper(atoms[0])
	switch keyword {
	case KeywordSet:
		return c.parseSet(tok, atoms[1:])
	case KeywordAction:
		return c.parseAction(tok, atoms[1:])
	case KeywordGoto:
		return c.parseGoto(tok, atoms[1:])
	default:
		return nil, c.errorf(tok, "unsupported inline THEN command '%s'", keyword)
	}
}

// splitCondition splits IF arguments at the first THEN or GOTO atom.
func splitCondition(args []string) (cond, rest []string) {
	for i, a := range args {
		switch strings.ToUpper(a) {
		case KeywordThen, KeywordGoto:
			return args[:i], args[i:]
		}
	}
	return args, nil
}

// parseCondition parses exactly "value operator value".
func (c *Compiler) parseCondition(tok lexer.Token, atoms []string) (opcode.Condition, error) {
	if len(atoms) < 3 {
		return opcode.Condition{}, c.errorf(tok, "incomplete condition")
	}
	if len(atoms) > 3 {
		return opcode.Condition{}, c.errorf(tok, "malformed condition %q", strings.Join(atoms, " "))
	}
	left, err := c.parseValue(tok, atoms[0])
	if err != nil {
		return opcode.Condition{}, err
	}
	right, err := c.parseValue(tok, atoms[2])
	if err != nil {
		return opcode.Condition{}, err
	}
	return opcode.Condition{Left: left, Operator: atoms[1], Right: right}, nil
}

// parseExpression parses a bare value or "( value operator value )".
// Operators are checked when the expression is evaluated.
func (c *Compiler) parseExpression(tok lexer.Token, atoms []string) (opcode.Expression, error) {
	if len(atoms) == 0 {
		return nil, c.errorf(tok, "expression expected")
	}

	if atoms[0] == lexer.LParen {
		if len(atoms) != 5 || atoms[4] != lexer.RParen {
			return nil, c.errorf(tok, "malformed expression %q", strings.Join(atoms, " "))
		}
		left, err := c.parseValue(tok, atoms[1])
		if err != nil {
			return nil, err
		}
		right, err := c.parseValue(tok, atoms[3])
		if err != nil {
			return nil, err
		}
		return opcode.BinaryExpression{Left: left, Operator: atoms[2], Right: right}, nil
	}

	if len(atoms) != 1 {
		return nil, c.errorf(tok, "unexpected tokens in expression %q", strings.Join(atoms, " "))
	}
	return c.parseValue(tok, atoms[0])
}

// parseValue classifies a single atom as a string literal, an integer
// literal or a variable reference.
func (c *Compiler) parseValue(tok lexer.Token, atom string) (opcode.Expression, error) {
	if atom == lexer.LParen || atom == lexer.RParen {
		return nil, c.errorf(tok, "unexpected %q where a value was expected", atom)
	}
	if lexer.IsQuoted(atom) {
		return opcode.Literal{Value: opcode.Str(lexer.Unquote(atom))}, nil
	}
	if isIntegerLiteral(atom) {
		n, err := strconv.ParseInt(atom, 10, 64)
		if err != nil {
			return nil, c.errorf(tok, "integer literal out of range: %s", atom)
		}
		return opcode.Literal{Value: opcode.Int(n)}, nil
	}
	return opcode.VariableRef{Name: atom}, nil
}

// expectName returns args[index] with surrounding quotes stripped.
func (c *Compiler) expectName(tok lexer.Token, args []string, index int) (string, error) {
	if index >= len(args) {
		return "", c.errorf(tok, "missing argument for %s", tok.Keyword)
	}
	return lexer.Unquote(args[index]), nil
}

func (c *Compiler) errorf(tok lexer.Token, format string, args ...any) *CompileError {
	return NewParserErrorWithContext(fmt.Sprintf(format, args...), tok.Line, tok.Column, c.source)
}

// isIntegerLiteral reports whether s is an optional '-' followed by
// one or more ASCII digits.
func isIntegerLiteral(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
