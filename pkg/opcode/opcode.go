// Package opcode defines the instruction set for the Hexa-Script virtual machine.
// This package is the foundation that both the compiler and VM depend on.
// The compiler generates a Program of Instructions, and the VM executes it.
//
// Instructions and expressions are closed sets: each interface carries an
// unexported marker method, so only the variants declared here can satisfy it.
package opcode

import (
	"fmt"
	"strings"
)

// Expression is a compiled value-producing node.
// Variants: Literal, VariableRef, BinaryExpression.
type Expression interface {
	expression()
	String() string
}

// Literal is a constant value known at compile time.
type Literal struct {
	Value Value
}

// VariableRef reads a variable by name at run time.
// Unset variables read as Int(0).
type VariableRef struct {
	Name string
}

// BinaryExpression applies a single arithmetic operator to two operands.
// Operands are never themselves binary expressions.
type BinaryExpression struct {
	Left     Expression
	Operator string
	Right    Expression
}

func (Literal) expression()          {}
func (VariableRef) expression()      {}
func (BinaryExpression) expression() {}

func (l Literal) String() string     { return l.Value.String() }
func (v VariableRef) String() string { return v.Name }
func (b BinaryExpression) String() string {
	return fmt.Sprintf("( %s %s %s )", b.Left, b.Operator, b.Right)
}

// Condition is the three-part test used by IF statements.
type Condition struct {
	Left     Expression
	Operator string
	Right    Expression
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %s", c.Left, c.Operator, c.Right)
}

// Instruction is a single compiled operation. Its index in
// Program.Instructions is its program counter.
// Variants: Set, Goto, IfGoto, IfThen, Action, End.
type Instruction interface {
	instruction()
	// SourceLine returns the 1-indexed source line, or 0 if unknown.
	SourceLine() int
	String() string
}

// InlineInstruction is the subset of instructions allowed as the THEN
// branch of an IfThen. IfThen itself is not a member.
type InlineInstruction interface {
	Instruction
	inline()
}

// Set assigns the value of Expr to the variable Name.
type Set struct {
	Name string
	Expr Expression
	Line int
}

// Goto jumps unconditionally to Label.
type Goto struct {
	Label string
	Line  int
}

// IfGoto jumps to Label when Cond holds, otherwise falls through.
type IfGoto struct {
	Cond  Condition
	Label string
	Line  int
}

// IfThen runs Inline in place when Cond holds, otherwise falls through.
type IfThen struct {
	Cond   Condition
	Inline InlineInstruction
	Line   int
}

// Action appends (Name, evaluated Args) to the action log.
type Action struct {
	Name string
	Args []Expression
	Line int
}

// End halts execution.
type End struct {
	Line int
}

func (Set) instruction()    {}
func (Goto) instruction()   {}
func (IfGoto) instruction() {}
func (IfThen) instruction() {}
func (Action) instruction() {}
func (End) instruction()    {}

func (Set) inline()    {}
func (Goto) inline()   {}
func (Action) inline() {}

func (i Set) SourceLine() int    { return i.Line }
func (i Goto) SourceLine() int   { return i.Line }
func (i IfGoto) SourceLine() int { return i.Line }
func (i IfThen) SourceLine() int { return i.Line }
func (i Action) SourceLine() int { return i.Line }
func (i End) SourceLine() int    { return i.Line }

func (i Set) String() string  { return fmt.Sprintf("SET %s %s", i.Name, i.Expr) }
func (i Goto) String() string { return fmt.Sprintf("GOTO %q", i.Label) }
func (i IfGoto) String() string {
	return fmt.Sprintf("IF %s GOTO %q", i.Cond, i.Label)
}
func (i IfThen) String() string {
	return fmt.Sprintf("IF %s THEN %s", i.Cond, i.Inline)
}
func (i Action) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ACTION %q", i.Name)
	for _, arg := range i.Args {
		b.WriteByte(' ')
		b.WriteString(arg.String())
	}
	return b.String()
}
func (End) String() string { return "END" }
