// Package vm provides error handling for the Hexa-Script virtual machine.
package vm

import (
	"fmt"
)

// ErrorType represents the type of runtime error.
type ErrorType string

const (
	ErrorNoProgram           ErrorType = "NO_PROGRAM"
	ErrorUndefinedLabel      ErrorType = "UNDEFINED_LABEL"
	ErrorTypeMismatch        ErrorType = "TYPE_MISMATCH"
	ErrorUnsupportedOperator ErrorType = "UNSUPPORTED_OPERATOR"
	ErrorDivisionByZero      ErrorType = "DIVISION_BY_ZERO"
	ErrorInvalidContext      ErrorType = "INVALID_CONTEXT"
	ErrorStepLimitExceeded   ErrorType = "STEP_LIMIT_EXCEEDED"
)

// RuntimeError represents a runtime error in the VM.
// Every RuntimeError aborts the current run.
type RuntimeError struct {
	Type    ErrorType
	Message string
	Line    int // Source line if available, -1 otherwise
	PC      int // Program counter if available, -1 otherwise
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] %s at line %d", e.Type, e.Message, e.Line)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// NewRuntimeError creates a new RuntimeError.
func NewRuntimeError(errType ErrorType, message string) *RuntimeError {
	return &RuntimeError{
		Type:    errType,
		Message: message,
		Line:    -1,
		PC:      -1,
	}
}

// NewRuntimeErrorWithLine creates a new RuntimeError with location information.
func NewRuntimeErrorWithLine(errType ErrorType, message string, line, pc int) *RuntimeError {
	return &RuntimeError{
		Type:    errType,
		Message: message,
		Line:    line,
		PC:      pc,
	}
}

// Error helper functions for common error types

// NewNoProgramError is returned when execution is requested before a load.
func NewNoProgramError() *RuntimeError {
	return NewRuntimeError(ErrorNoProgram, "no program loaded")
}

// NewUndefinedLabelError creates an unknown jump target error.
func NewUndefinedLabelError(label string) *RuntimeError {
	return NewRuntimeError(ErrorUndefinedLabel, fmt.Sprintf("label '%s' not defined", label))
}

// NewTypeMismatchError creates an error for a string operand where an integer is required.
func NewTypeMismatchError(op string, got string) *RuntimeError {
	return NewRuntimeError(ErrorTypeMismatch, fmt.Sprintf("expected integer value for '%s', got %s", op, got))
}

// NewUnsupportedOperatorError creates an unknown operator error.
func NewUnsupportedOperatorError(kind, op string) *RuntimeError {
	return NewRuntimeError(ErrorUnsupportedOperator, fmt.Sprintf("unsupported %s '%s'", kind, op))
}

// NewDivisionByZeroError creates a division by zero error.
func NewDivisionByZeroError() *RuntimeError {
	return NewRuntimeError(ErrorDivisionByZero, "division by zero")
}

// NewInvalidContextError creates an error for a malformed execution context.
func NewInvalidContextError(message string) *RuntimeError {
	return NewRuntimeError(ErrorInvalidContext, message)
}

// NewStepLimitError creates an error for a run that exceeded its step budget.
func NewStepLimitError(limit int) *RuntimeError {
	return NewRuntimeError(ErrorStepLimitExceeded, fmt.Sprintf("step limit of %d instructions exceeded", limit))
}
