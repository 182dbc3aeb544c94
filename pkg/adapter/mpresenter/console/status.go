// 指示: miu200521358
// Package console はCLI向けの色付き状態表示と進捗表示を提供する。
package console

import "github.com/fatih/color"

// 表示色。
var (
	Success = color.New(color.FgGreen).SprintFunc()
	Error   = color.New(color.FgRed).SprintFunc()
	Warning = color.New(color.FgYellow).SprintFunc()
	Info    = color.New(color.FgCyan).SprintFunc()
	Dim     = color.New(color.Faint).SprintFunc()
)

// 状態記号。
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolSkipped = "-"
	SymbolPending = "○"
)

// StatusSuccess は成功記号付きの文字列を返す。
func StatusSuccess(msg string) string {
	return status(Success, SymbolSuccess, msg)
}

// StatusError は失敗記号付きの文字列を返す。
func StatusError(msg string) string {
	return status(Error, SymbolError, msg)
}

// StatusWarning は警告記号付きの文字列を返す。
func StatusWarning(msg string) string {
	return status(Warning, SymbolWarning, msg)
}

// StatusSkipped は省略記号付きの文字列を返す。
func StatusSkipped(msg string) string {
	return status(Dim, SymbolSkipped, msg)
}

// StatusPending は処理中記号付きの文字列を返す。
func StatusPending(msg string) string {
	return status(Info, SymbolPending, msg)
}

func status(paint func(a ...any) string, symbol string, msg string) string {
	if msg == "" {
		return paint(symbol)
	}
	return paint(symbol) + " " + msg
}

// DisableColors は色付き出力を無効にする。
func DisableColors() {
	color.NoColor = true
}

// EnableColors は色付き出力を有効にする。
func EnableColors() {
	color.NoColor = false
}

// IsColorEnabled は色付き出力が有効か判定する。
func IsColorEnabled() bool {
	return !color.NoColor
}
