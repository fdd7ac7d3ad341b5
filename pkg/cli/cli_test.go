package cli

import (
	"reflect"
	"testing"
)

func TestParseArgs_ValidArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected Config
	}{
		{
			name:     "デフォルト設定",
			args:     []string{},
			expected: Config{LogLevel: "info", Vars: map[string]any{}},
		},
		{
			name:     "スクリプトパス指定",
			args:     []string{"scripts/patrol.hxs"},
			expected: Config{ScriptPath: "scripts/patrol.hxs", LogLevel: "info", Vars: map[string]any{}},
		},
		{
			name:     "ログレベル指定",
			args:     []string{"--log-level", "debug", "ai"},
			expected: Config{ScriptPath: "ai", LogLevel: "debug", Vars: map[string]any{}},
		},
		{
			name:     "ログレベル指定（短縮形）",
			args:     []string{"-l", "error"},
			expected: Config{LogLevel: "error", Vars: map[string]any{}},
		},
		{
			name:     "ステップ上限指定",
			args:     []string{"--step-limit", "500"},
			expected: Config{LogLevel: "info", StepLimit: 500, Vars: map[string]any{}},
		},
		{
			name:     "ステップ上限指定（短縮形、=形式）",
			args:     []string{"-s=25"},
			expected: Config{LogLevel: "info", StepLimit: 25, Vars: map[string]any{}},
		},
		{
			name: "初期変数の繰り返し指定",
			args: []string{"--var", "hp=10", "--var", "mode=idle", "--var", "delta=-3", "--var", "note=a=b"},
			expected: Config{LogLevel: "info", Vars: map[string]any{
				"hp":    int64(10),
				"mode":  "idle",
				"delta": int64(-3),
				"note":  "a=b",
			}},
		},
		{
			name:     "JSON出力先指定",
			args:     []string{"-o", "out.json", "loop.hxs"},
			expected: Config{ScriptPath: "loop.hxs", LogLevel: "info", OutputPath: "out.json", Vars: map[string]any{}},
		},
		{
			name:     "ヘルプ表示",
			args:     []string{"--help"},
			expected: Config{LogLevel: "info", ShowHelp: true, Vars: map[string]any{}},
		},
		{
			name:     "位置引数が先頭",
			args:     []string{"loop.hxs", "-h", "-l", "warn"},
			expected: Config{ScriptPath: "loop.hxs", LogLevel: "warn", ShowHelp: true, Vars: map[string]any{}},
		},
		{
			name:     "ダッシュで始まるパス",
			args:     []string{"--", "-odd.hxs"},
			expected: Config{ScriptPath: "-odd.hxs", LogLevel: "info", Vars: map[string]any{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", "")
			t.Setenv("STEP_LIMIT", "")

			config, err := ParseArgs(tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(*config, tt.expected) {
				t.Errorf("ParseArgs(%v) = %+v, want %+v", tt.args, *config, tt.expected)
			}
		})
	}
}

func TestParseArgs_EnvironmentVariables(t *testing.T) {
	t.Run("LOG_LEVEL", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("STEP_LIMIT", "")
		config, err := ParseArgs(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.LogLevel != "debug" {
			t.Errorf("LogLevel = %q, want debug", config.LogLevel)
		}
	})

	t.Run("フラグが環境変数より優先", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("STEP_LIMIT", "100")
		config, err := ParseArgs([]string{"-l", "warn", "-s", "0"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.LogLevel != "warn" {
			t.Errorf("LogLevel = %q, want warn", config.LogLevel)
		}
		if config.StepLimit != 0 {
			t.Errorf("StepLimit = %d, want 0", config.StepLimit)
		}
	})

	t.Run("STEP_LIMIT", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "")
		t.Setenv("STEP_LIMIT", "42")
		config, err := ParseArgs(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.StepLimit != 42 {
			t.Errorf("StepLimit = %d, want 42", config.StepLimit)
		}
	})

	t.Run("不正なSTEP_LIMIT", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "")
		t.Setenv("STEP_LIMIT", "lots")
		if _, err := ParseArgs(nil); err == nil {
			t.Error("expected error, got nil")
		}
	})
}

func TestParseArgs_InvalidArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"負のステップ上限", []string{"--step-limit", "-10"}},
		{"数値でないステップ上限", []string{"-s", "many"}},
		{"無効なログレベル", []string{"--log-level", "invalid"}},
		{"無効なログレベル（短縮形）", []string{"-l", "trace"}},
		{"名前のない初期変数", []string{"--var", "=5"}},
		{"=のない初期変数", []string{"--var", "hp"}},
		{"複数のスクリプトパス", []string{"a.hxs", "b.hxs"}},
		{"未知のフラグ", []string{"--headless"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", "")
			t.Setenv("STEP_LIMIT", "")
			if _, err := ParseArgs(tt.args); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestParseVarValue(t *testing.T) {
	tests := []struct {
		input    string
		expected any
	}{
		{"10", int64(10)},
		{"-7", int64(-7)},
		{"idle", "idle"},
		{"", ""},
		{"1.5", "1.5"},
		{"99999999999999999999", "99999999999999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseVarValue(tt.input); got != tt.expected {
				t.Errorf("ParseVarValue(%q) = %#v, want %#v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestReorderArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{"フラグのみ", []string{"-l", "debug"}, []string{"-l", "debug"}},
		{"位置引数が先", []string{"x.hxs", "-s", "3"}, []string{"-s", "3", "x.hxs"}},
		{"ブールフラグは値を取らない", []string{"-h", "x.hxs"}, []string{"-h", "x.hxs"}},
		{"=形式", []string{"x.hxs", "--var=a=1"}, []string{"--var=a=1", "x.hxs"}},
		{"負の値を取るフラグ", []string{"--var", "d=-1", "x.hxs"}, []string{"--var", "d=-1", "x.hxs"}},
		{"区切り以降は位置引数", []string{"-l", "warn", "--", "-x.hxs"}, []string{"-l", "warn", "-x.hxs"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reorderArgs(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("reorderArgs(%v) = %v, want %v", tt.args, got, tt.expected)
			}
		})
	}
}
