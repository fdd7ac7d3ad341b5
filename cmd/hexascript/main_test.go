package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// runCLI main.goをサブプロセスで実行し、出力と終了コードを返す
func runCLI(t *testing.T, args ...string) (string, int) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping subprocess test in short mode")
	}

	cmd := exec.Command("go", append([]string{"run", "main.go"}, args...)...)
	cmd.Dir = "."
	cmd.Env = append(os.Environ(), "LOG_LEVEL=error", "STEP_LIMIT=")
	output, err := cmd.CombinedOutput()

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(output), exitErr.ExitCode()
		}
		t.Fatalf("failed to run CLI: %v", err)
	}
	return string(output), 0
}

// TestCLIHelp tests the help display functionality
func TestCLIHelp(t *testing.T) {
	output, code := runCLI(t, "--help")
	if code != 0 {
		t.Errorf("Expected exit code 0, got %d", code)
	}
	if !strings.Contains(output, "hexascript - Hexa-Script Interpreter") {
		t.Error("Help output should contain title")
	}
	if !strings.Contains(output, "--step-limit") {
		t.Error("Help output should list the step limit option")
	}
}

// TestCLIMissingPath tests that a script path is required
func TestCLIMissingPath(t *testing.T) {
	output, code := runCLI(t)
	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	if !strings.Contains(output, "script path is required") {
		t.Errorf("unexpected output: %s", output)
	}
}

// TestCLIRunScript tests a successful run and a failing run
func TestCLIRunScript(t *testing.T) {
	tmpDir := t.TempDir()

	ok := filepath.Join(tmpDir, "ok.hxs")
	if err := os.WriteFile(ok, []byte("SET hp ( hp * 2 )\nACTION \"heal\" hp\n"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	bad := filepath.Join(tmpDir, "bad.hxs")
	if err := os.WriteFile(bad, []byte("SET x ( 1 / 0 )\n"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	t.Run("success", func(t *testing.T) {
		output, code := runCLI(t, "--var", "hp=21", ok)
		if code != 0 {
			t.Fatalf("Expected exit code 0, got %d: %s", code, output)
		}
		if !strings.Contains(output, "hp = 42") || !strings.Contains(output, "heal 42") {
			t.Errorf("unexpected output: %s", output)
		}
	})

	t.Run("runtime error", func(t *testing.T) {
		output, code := runCLI(t, bad)
		if code != 1 {
			t.Errorf("Expected exit code 1, got %d", code)
		}
		if !strings.Contains(output, "DIVISION_BY_ZERO") {
			t.Errorf("unexpected output: %s", output)
		}
	})

	t.Run("json output", func(t *testing.T) {
		outPath := filepath.Join(tmpDir, "out.json")
		if _, code := runCLI(t, "-o", outPath, ok); code != 0 {
			t.Fatalf("Expected exit code 0, got %d", code)
		}
		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("output file not written: %v", err)
		}
		if !strings.Contains(string(data), `"run_id"`) {
			t.Errorf("unexpected JSON: %s", data)
		}
	})
}
