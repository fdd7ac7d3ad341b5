package cli

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/hexa-core/hexascript/pkg/logger"
)

// Config はコマンドライン引数から解析された設定を保持する
type Config struct {
	ScriptPath string         // スクリプトファイル（.hxs）またはディレクトリのパス
	LogLevel   string         // ログレベル（debug, info, warn, error）
	StepLimit  int            // 1回の実行で許可する命令数（0は無制限）
	Vars       map[string]any // --var で指定された初期変数（int64 または string）
	OutputPath string         // 結果の出力先（.yaml/.yml はYAML、それ以外はJSON。空なら標準出力にテキスト）
	ShowHelp   bool           // ヘルプ表示フラグ
}

// varFlags は繰り返し指定可能な --var name=value を保持する
type varFlags map[string]any

func (v varFlags) String() string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%v", name, v[name]))
	}
	return strings.Join(parts, ",")
}

func (v varFlags) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	v[name] = ParseVarValue(value)
	return nil
}

// ParseVarValue 整数として解釈できる値はint64、それ以外は文字列として返す
func ParseVarValue(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}

// ParseArgs コマンドライン引数を解析してConfigを返す
func ParseArgs(args []string) (*Config, error) {
	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("hexascript", flag.ContinueOnError)

	config := &Config{Vars: make(map[string]any)}

	stepLimit := -1
	fs.StringVar(&config.LogLevel, "log-level", "info", "ログレベル（debug, info, warn, error）")
	fs.StringVar(&config.LogLevel, "l", "info", "ログレベル（短縮形）")
	fs.IntVar(&stepLimit, "step-limit", -1, "1回の実行で許可する命令数（0は無制限）")
	fs.IntVar(&stepLimit, "s", -1, "1回の実行で許可する命令数（短縮形）")
	fs.Var(varFlags(config.Vars), "var", "初期変数 name=value（繰り返し指定可）")
	fs.StringVar(&config.OutputPath, "output", "", "結果の出力先ファイル（JSON/YAML）")
	fs.StringVar(&config.OutputPath, "o", "", "結果の出力先ファイル（短縮形）")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	// 環境変数からステップ上限を取得（コマンドラインフラグが優先）
	if stepLimit < 0 {
		stepLimit = 0
		if limitEnv := os.Getenv("STEP_LIMIT"); limitEnv != "" {
			n, err := strconv.Atoi(limitEnv)
			if err != nil {
				return nil, fmt.Errorf("invalid STEP_LIMIT: %s", limitEnv)
			}
			stepLimit = n
		}
	}
	if stepLimit < 0 {
		return nil, fmt.Errorf("step limit must be non-negative, got %d", stepLimit)
	}
	config.StepLimit = stepLimit

	// 環境変数からログレベルを取得（コマンドラインフラグが優先）
	if config.LogLevel == "info" {
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			config.LogLevel = strings.ToLower(logLevelEnv)
		}
	}

	// ログレベルの検証
	if _, err := logger.ParseLevel(config.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}

	// 位置引数（スクリプトのパス）
	switch fs.NArg() {
	case 0:
	case 1:
		config.ScriptPath = fs.Arg(0)
	default:
		return nil, fmt.Errorf("expected a single script path, got %d", fs.NArg())
	}

	return config, nil
}

// boolFlags は値を取らないフラグ
var boolFlags = map[string]bool{
	"-h":     true,
	"--h":    true,
	"-help":  true,
	"--help": true,
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// "--" 以降はすべて位置引数
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}

		// フラグかどうかを判定（-または--で始まる）
		if len(arg) > 1 && arg[0] == '-' {
			flags = append(flags, arg)

			// -s 5 のように次の引数が値になる場合
			if !strings.Contains(arg, "=") && !boolFlags[arg] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			// 位置引数
			positional = append(positional, arg)
		}
	}

	// フラグを前に、位置引数を後ろに配置
	return append(flags, positional...)
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp() {
	fmt.Fprintf(os.Stdout, `hexascript - Hexa-Script Interpreter

Usage:
  hexascript [options] <script-path>

Arguments:
  script-path   .hxs スクリプトファイル、またはディレクトリのパス
                ディレクトリを指定した場合、含まれる .hxs ファイルを名前順に
                それぞれ新しい実行コンテキストで実行

Options:
  -l, --log-level <level>     ログレベル: debug, info, warn, error（デフォルト: info）
  -s, --step-limit <n>        1回の実行で許可する命令数（デフォルト: 0 = 無制限）
  --var <name=value>          初期変数を設定（繰り返し指定可、整数は整数として扱う）
  -o, --output <file>         結果をファイルに出力（.yaml/.yml はYAML、それ以外はJSON）
  -h, --help                  このヘルプを表示

Environment Variables:
  LOG_LEVEL=<level>           ログレベル
  STEP_LIMIT=<n>              命令数の上限

Examples:
  hexascript patrol.hxs                        スクリプトを実行
  hexascript --var hp=10 --var mode=idle ai/   ディレクトリ内の全スクリプトを実行
  hexascript -s 1000 -o result.json loop.hxs   命令数を制限してJSONで出力
`)
}
