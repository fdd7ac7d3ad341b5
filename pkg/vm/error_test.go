package vm

import (
	"strings"
	"testing"
)

func TestRuntimeError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *RuntimeError
		contains []string
		excludes []string
	}{
		{
			name:     "basic error",
			err:      NewDivisionByZeroError(),
			contains: []string{"DIVISION_BY_ZERO", "division by zero"},
			excludes: []string{"line"},
		},
		{
			name:     "error with line",
			err:      NewRuntimeErrorWithLine(ErrorUndefinedLabel, "label 'x' not defined", 42, 3),
			contains: []string{"UNDEFINED_LABEL", "label 'x' not defined", "line 42"},
		},
		{
			name:     "no program",
			err:      NewNoProgramError(),
			contains: []string{"NO_PROGRAM", "no program loaded"},
		},
		{
			name:     "undefined label names the label",
			err:      NewUndefinedLabelError("missing"),
			contains: []string{"UNDEFINED_LABEL", "'missing'"},
		},
		{
			name:     "type mismatch",
			err:      NewTypeMismatchError("<", `"abc"`),
			contains: []string{"TYPE_MISMATCH", "expected integer value", `"abc"`},
		},
		{
			name:     "unsupported operator",
			err:      NewUnsupportedOperatorError("comparison", "=~"),
			contains: []string{"UNSUPPORTED_OPERATOR", "unsupported comparison '=~'"},
		},
		{
			name:     "step limit",
			err:      NewStepLimitError(100),
			contains: []string{"STEP_LIMIT_EXCEEDED", "100"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(errStr, s) {
					t.Errorf("error string %q should contain %q", errStr, s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(errStr, s) {
					t.Errorf("error string %q should not contain %q", errStr, s)
				}
			}
		})
	}
}

func TestNewRuntimeError_NoLocation(t *testing.T) {
	err := NewRuntimeError(ErrorInvalidContext, "bad")
	if err.Line != -1 || err.PC != -1 {
		t.Errorf("expected no location, got line=%d pc=%d", err.Line, err.PC)
	}
}
