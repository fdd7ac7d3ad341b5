package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/tebeka/atexit"
	"gopkg.in/yaml.v3"

	"github.com/hexa-core/hexascript/pkg/cli"
	"github.com/hexa-core/hexascript/pkg/compiler"
	"github.com/hexa-core/hexascript/pkg/logger"
	"github.com/hexa-core/hexascript/pkg/opcode"
	"github.com/hexa-core/hexascript/pkg/runner"
	"github.com/hexa-core/hexascript/pkg/script"
	"github.com/hexa-core/hexascript/pkg/vm"
)

// ErrNoScriptPath はスクリプトのパスが指定されていない場合のエラー
var ErrNoScriptPath = errors.New("script path is required")

// RunResult は1スクリプト分の実行結果
type RunResult struct {
	RunID     string            `json:"run_id" yaml:"run_id"`
	Script    string            `json:"script" yaml:"script"`
	Steps     int               `json:"steps" yaml:"steps"`
	Variables map[string]any    `json:"variables" yaml:"variables"`
	Actions   []vm.ActionRecord `json:"actions" yaml:"actions"`
	Error     *RunError         `json:"error,omitempty" yaml:"error,omitempty"`
}

// RunError は実行時エラーの出力用表現
type RunError struct {
	Type    vm.ErrorType `json:"type" yaml:"type"`
	Message string       `json:"message" yaml:"message"`
	Line    int          `json:"line,omitempty" yaml:"line,omitempty"`
}

// compiledScript はコンパイル済みのスクリプト
type compiledScript struct {
	name    string
	program *opcode.Program
}

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config  *cli.Config
	log     *slog.Logger
	stdout  io.Writer
	results []RunResult
}

// New Applicationを作成（テキスト出力の書き込み先を指定）
func New(stdout io.Writer) *Application {
	return &Application{
		stdout: stdout,
	}
}

// Results 直近のRunで得られた実行結果
func (app *Application) Results() []RunResult {
	return app.results
}

// Run アプリケーションを実行
// 実行時エラーは結果に記録した上で残りのスクリプトも実行し、最後にまとめて返す
func (app *Application) Run(args []string) error {
	// 1. コマンドライン引数の解析
	if err := app.parseArgs(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	if app.config.ShowHelp {
		cli.PrintHelp()
		return nil
	}
	if app.config.ScriptPath == "" {
		cli.PrintHelp()
		return ErrNoScriptPath
	}

	// 2. ロガーの初期化
	if err := app.initLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.log.Info("Application started", "path", app.config.ScriptPath, "step_limit", app.config.StepLimit)

	// 3. スクリプトファイルの読み込み
	scripts, err := app.loadScripts(app.config.ScriptPath)
	if err != nil {
		return fmt.Errorf("failed to load scripts: %w", err)
	}

	app.log.Info("Scripts loaded", "count", len(scripts))
	for _, s := range scripts {
		app.log.Debug("Script file", "name", s.FileName, "size", s.Size, "preview", truncate(s.Content, 100))
	}

	// 4. スクリプトのコンパイル（1つでも失敗したら何も実行しない）
	compiled, err := app.compileScripts(scripts)
	if err != nil {
		return fmt.Errorf("failed to compile scripts: %w", err)
	}

	// 5. 実行
	runErr := app.executeScripts(compiled)

	// 6. 結果の出力
	if err := app.writeResults(); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	if runErr != nil {
		return fmt.Errorf("script execution failed: %w", runErr)
	}

	app.log.Info("Application terminated normally")
	return nil
}

// parseArgs コマンドライン引数を解析
func (app *Application) parseArgs(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}
	app.config = config
	return nil
}

// initLogger ロガーを初期化
func (app *Application) initLogger() error {
	if err := logger.InitLogger(app.config.LogLevel); err != nil {
		return err
	}
	app.log = logger.GetLogger()
	return nil
}

// loadScripts スクリプトファイルを読み込む
func (app *Application) loadScripts(path string) ([]script.Script, error) {
	loader := script.NewLoader(path)
	scripts, err := loader.LoadAllScripts()
	if err != nil {
		return nil, err
	}
	app.log.Debug("Scripts found", "path", loader.Path(), "count", len(scripts))
	return scripts, nil
}

// compileScripts すべてのスクリプトをコンパイル
func (app *Application) compileScripts(scripts []script.Script) ([]compiledScript, error) {
	compiled := make([]compiledScript, 0, len(scripts))
	for _, s := range scripts {
		program, err := compiler.CompileScript(s, compiler.CompileOptions{Logger: app.log})
		if err != nil {
			app.log.Error("Compilation failed", "file", s.FileName, "error", err)
			return nil, err
		}
		app.log.Info("Script compiled", "file", s.FileName, "instruction_count", program.Len())
		app.log.Debug("Program listing", "file", s.FileName, "listing", program.String())
		compiled = append(compiled, compiledScript{name: s.FileName, program: program})
	}
	return compiled, nil
}

// executeScripts 各スクリプトを新しいコンテキストで実行
func (app *Application) executeScripts(compiled []compiledScript) error {
	r := runner.New(runner.WithLogger(app.log), runner.WithStepLimit(app.config.StepLimit))

	app.results = app.results[:0]
	var errs []error
	for _, c := range compiled {
		runID := uuid.New().String()
		log := app.log.With("run_id", runID, "file", c.name)

		ec := &vm.ExecutionContext{
			Variables: maps.Clone(app.config.Vars),
			Actions:   []vm.ActionRecord{},
		}

		r.LoadProgram(c.program)
		stats, err := r.ExecuteWithStats(ec)

		result := RunResult{
			RunID:     runID,
			Script:    c.name,
			Steps:     stats.Steps,
			Variables: ec.Variables,
			Actions:   ec.Actions,
		}
		if err != nil {
			log.Error("Execution failed", "error", err)
			result.Error = toRunError(err)
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		} else {
			log.Info("Execution completed", "steps", stats.Steps, "actions", len(ec.Actions))
		}
		app.results = append(app.results, result)
	}
	return errors.Join(errs...)
}

// toRunError エラーを出力用の構造に変換
func toRunError(err error) *RunError {
	var rerr *vm.RuntimeError
	if errors.As(err, &rerr) {
		re := &RunError{Type: rerr.Type, Message: rerr.Message}
		if rerr.Line > 0 {
			re.Line = rerr.Line
		}
		return re
	}
	return &RunError{Message: err.Error()}
}

// writeResults 結果をファイル（JSON/YAML）またはテキストで出力
func (app *Application) writeResults() error {
	if app.config.OutputPath == "" {
		return writeText(app.stdout, app.results)
	}

	f, err := os.Create(app.config.OutputPath)
	if err != nil {
		return err
	}
	// 異常終了時にもファイルを閉じる
	atexit.Register(func() { f.Close() })

	if err := encodeResults(f, app.config.OutputPath, app.results); err != nil {
		f.Close()
		return err
	}
	app.log.Info("Results written", "path", app.config.OutputPath, "count", len(app.results))
	return f.Close()
}

// encodeResults 出力先の拡張子で形式を選ぶ（.yaml/.yml はYAML、それ以外はJSON）
func encodeResults(w io.Writer, path string, results []RunResult) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
}

// writeText 結果を人が読める形式で出力
func writeText(w io.Writer, results []RunResult) error {
	var b strings.Builder
	for i, res := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "== %s (run %s, %d steps)\n", res.Script, res.RunID, res.Steps)

		names := make([]string, 0, len(res.Variables))
		for name := range res.Variables {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("variables:\n")
		for _, name := range names {
			fmt.Fprintf(&b, "  %s = %s\n", name, formatValue(res.Variables[name]))
		}

		b.WriteString("actions:\n")
		for _, a := range res.Actions {
			b.WriteString("  " + a.Name)
			for _, arg := range a.Args {
				b.WriteString(" " + formatValue(arg))
			}
			b.WriteString("\n")
		}

		if res.Error != nil {
			fmt.Fprintf(&b, "error: [%s] %s", res.Error.Type, res.Error.Message)
			if res.Error.Line > 0 {
				fmt.Fprintf(&b, " at line %d", res.Error.Line)
			}
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// formatValue 値をスクリプトのリテラル表記で表示
func formatValue(v any) string {
	if value, ok := opcode.FromAny(v); ok {
		return value.String()
	}
	return fmt.Sprint(v)
}

// truncate 文字列を指定した文字数（rune単位）で切り詰める
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := 0
	for i := range s {
		if runes == maxLen {
			return s[:i] + "..."
		}
		runes++
	}
	return s
}
