package compiler

import (
	"errors"
	"strings"
	"testing"
)

// TestCompileError_Error tests the Error() method of CompileError.
func TestCompileError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *CompileError
		contains []string
	}{
		{
			name: "parser error without context",
			err: &CompileError{
				Phase:   "parser",
				Message: "incomplete condition",
				Line:    12,
				Column:  3,
			},
			contains: []string{"parser error", "line 12", "column 3", "incomplete condition"},
		},
		{
			name: "compiler error without location",
			err: &CompileError{
				Phase:   "compiler",
				Message: "duplicate label \"loop\"",
			},
			contains: []string{"compiler error:", "duplicate label"},
		},
		{
			name: "error with context",
			err: &CompileError{
				Phase:   "parser",
				Message: "malformed expression",
				Line:    3,
				Column:  1,
				Context: "> 3 | SET x ( 1 + )\n      ^",
			},
			contains: []string{"parser error", "line 3", "column 1", "malformed expression", "> 3 |"},
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
		})
	}
}

// TestCompileError_ErrorsAs verifies that CompileError is reachable with errors.As.
func TestCompileError_ErrorsAs(t *testing.T) {
	_, err := Compile("FLY \"away\"")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CompileError, got %T", err)
	}
	if ce.Line != 1 {
		t.Errorf("expected line 1, got %d", ce.Line)
	}
}

func TestGenerateErrorContext(t *testing.T) {
	source := "SET x 1\nSET y 2\nSET z ( x + )\nEND\nGOTO \"a\"\nEND"

	ctx := GenerateErrorContext(source, 3, 1)

	expectedLines := []string{
		"  1 | SET x 1",
		"  2 | SET y 2",
		"> 3 | SET z ( x + )",
		"      ^",
		"  4 | END",
		"  5 | GOTO \"a\"",
	}
	for _, l := range expectedLines {
		if !strings.Contains(ctx, l+"\n") {
			t.Errorf("context should contain %q, got:\n%s", l, ctx)
		}
	}
	if strings.Contains(ctx, "  6 |") {
		t.Errorf("context should stop two lines after the error, got:\n%s", ctx)
	}
}

func TestGenerateErrorContext_CarriageReturnLines(t *testing.T) {
	ctx := GenerateErrorContext("SET x 1\rBOGUS\rEND", 2, 1)

	for _, l := range []string{"  1 | SET x 1\n", "> 2 | BOGUS\n", "  3 | END\n"} {
		if !strings.Contains(ctx, l) {
			t.Errorf("context should contain %q, got:\n%s", l, ctx)
		}
	}
}

func TestGenerateErrorContext_OutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		source string
		line   int
	}{
		{"empty source", "", 1},
		{"zero line", "END", 0},
		{"line past end", "END", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateErrorContext(tt.source, tt.line, 1); got != "" {
				t.Errorf("expected empty context, got %q", got)
			}
		})
	}
}
