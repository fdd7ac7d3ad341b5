// Package script はHexa-Scriptファイル（.hxs）の読み込みを行う
package script

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Extension はスクリプトファイルの拡張子（大文字小文字を区別しない）
const Extension = ".hxs"

// Script はスクリプトファイルを表す
type Script struct {
	FileName string // ファイル名
	Content  string // UTF-8に変換された内容
	Size     int64  // ファイルサイズ
}

// Loader はスクリプトファイルの読み込みを行う
type Loader struct {
	path string // ファイルまたはディレクトリ
}

// NewLoader Loaderを作成
func NewLoader(path string) *Loader {
	return &Loader{
		path: path,
	}
}

// Path 読み込み対象のパスを取得
func (l *Loader) Path() string {
	return l.path
}

// LoadAllScripts すべての.hxsファイルをファイル名順に読み込む
// パスがファイルの場合はそのファイルのみを読み込む
func (l *Loader) LoadAllScripts() ([]Script, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", l.path, err)
	}

	if !info.IsDir() {
		s, err := l.loadScript(l.path)
		if err != nil {
			return nil, fmt.Errorf("failed to load script %s: %w", l.path, err)
		}
		return []Script{*s}, nil
	}

	scriptFiles, err := l.findScriptFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to find script files: %w", err)
	}

	if len(scriptFiles) == 0 {
		return nil, fmt.Errorf("no script files found in %s", l.path)
	}

	var scripts []Script
	for _, filePath := range scriptFiles {
		s, err := l.loadScript(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load script %s: %w", filePath, err)
		}
		scripts = append(scripts, *s)
	}

	return scripts, nil
}

// findScriptFiles .hxsファイルを検出（case-insensitive）
func (l *Loader) findScriptFiles() ([]string, error) {
	var scriptFiles []string

	err := filepath.Walk(l.path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		// 拡張子をcase-insensitiveで比較
		if strings.EqualFold(filepath.Ext(path), Extension) {
			scriptFiles = append(scriptFiles, path)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Strings(scriptFiles)
	return scriptFiles, nil
}

// loadScript 単一のスクリプトファイルを読み込む
func (l *Loader) loadScript(path string) (*Script, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	content, err := DecodeSource(data)
	if err != nil {
		return nil, fmt.Errorf("failed to convert encoding: %w", err)
	}

	return &Script{
		FileName: filepath.Base(path),
		Content:  content,
		Size:     info.Size(),
	}, nil
}

// DecodeSource バイト列をUTF-8文字列に変換する
// BOMがあればUTF-8/UTF-16として解釈し、BOMを取り除く。BOMがなければUTF-8とみなす
func DecodeSource(data []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	reader := transform.NewReader(bytes.NewReader(data), decoder)

	utf8Data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to decode source: %w", err)
	}

	return string(utf8Data), nil
}
