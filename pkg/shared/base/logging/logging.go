// 指示: miu200521358
// Package logging は slog を土台にした書式付きロガーを提供する。
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LogLevel はログレベルを表す。
type LogLevel = slog.Level

const (
	LOG_LEVEL_DEBUG LogLevel = slog.LevelDebug
	LOG_LEVEL_INFO  LogLevel = slog.LevelInfo
	LOG_LEVEL_WARN  LogLevel = slog.LevelWarn
	LOG_LEVEL_ERROR LogLevel = slog.LevelError
)

var (
	defaultLogger *Logger
	defaultMu     sync.RWMutex
)

// Options はロガー生成時の設定を表す。
type Options struct {
	Level     LogLevel
	Output    io.Writer
	JSON      bool
	AddSource bool
}

// DefaultOptions はCLI向けの既定設定を返す。
func DefaultOptions() Options {
	return Options{
		Level:  LOG_LEVEL_INFO,
		Output: os.Stderr,
	}
}

// Logger は書式指定でログを出力するロガーを表す。
type Logger struct {
	level  *slog.LevelVar
	logger *slog.Logger
}

// NewLogger はロガーを生成する。
func NewLogger(opts Options) *Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	level := &slog.LevelVar{}
	level.Set(opts.Level)
	handlerOpts := &slog.HandlerOptions{Level: level, AddSource: opts.AddSource}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(opts.Output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(opts.Output, handlerOpts)
	}
	return &Logger{level: level, logger: slog.New(handler)}
}

// DefaultLogger は既定ロガーを返す。未設定なら標準エラー出力のロガーを生成する。
func DefaultLogger() *Logger {
	defaultMu.RLock()
	logger := defaultLogger
	defaultMu.RUnlock()
	if logger != nil {
		return logger
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewLogger(DefaultOptions())
	}
	return defaultLogger
}

// SetDefaultLogger は既定ロガーを差し替える。
func SetDefaultLogger(logger *Logger) {
	defaultMu.Lock()
	defaultLogger = logger
	defaultMu.Unlock()
	if logger != nil {
		slog.SetDefault(logger.logger)
	}
}

// ParseLevel はレベル名を解析する。
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LOG_LEVEL_DEBUG, nil
	case "", "info":
		return LOG_LEVEL_INFO, nil
	case "warn", "warning":
		return LOG_LEVEL_WARN, nil
	case "error":
		return LOG_LEVEL_ERROR, nil
	}
	return LOG_LEVEL_INFO, fmt.Errorf("不正なログレベルです: %q", name)
}

// SetLevel は出力レベルを変更する。
func (l *Logger) SetLevel(level LogLevel) {
	l.level.Set(level)
}

// Level は出力レベルを返す。
func (l *Logger) Level() LogLevel {
	return l.level.Level()
}

// IsEnabled は指定レベルが出力対象か判定する。
func (l *Logger) IsEnabled(level LogLevel) bool {
	return l.logger.Enabled(context.Background(), level)
}

// With は属性を付与したロガーを返す。レベルは共有する。
func (l *Logger) With(args ...any) *Logger {
	return &Logger{level: l.level, logger: l.logger.With(args...)}
}

// Slog は内部の slog.Logger を返す。
func (l *Logger) Slog() *slog.Logger {
	return l.logger
}

// Debug はデバッグログを出力する。
func (l *Logger) Debug(format string, params ...any) {
	l.log(LOG_LEVEL_DEBUG, format, params...)
}

// Info は情報ログを出力する。
func (l *Logger) Info(format string, params ...any) {
	l.log(LOG_LEVEL_INFO, format, params...)
}

// Warn は警告ログを出力する。
func (l *Logger) Warn(format string, params ...any) {
	l.log(LOG_LEVEL_WARN, format, params...)
}

// Error はエラーログを出力する。
func (l *Logger) Error(format string, params ...any) {
	l.log(LOG_LEVEL_ERROR, format, params...)
}

// log は書式を展開して出力する。
func (l *Logger) log(level LogLevel, format string, params ...any) {
	if !l.IsEnabled(level) {
		return
	}
	msg := format
	if len(params) > 0 {
		msg = fmt.Sprintf(format, params...)
	}
	l.logger.Log(context.Background(), level, msg)
}

// 属性キー。
const (
	KeyMarkerSystem = "marker_system"
	KeyMarker       = "marker"
	KeyMode         = "mode"
	KeyWarning      = "warning"
	KeyPath         = "path"
	KeyCount        = "count"
	KeyError        = "error"
)

// MarkerSystem はマーカーシステム名の属性を返す。
func MarkerSystem(name string) slog.Attr {
	return slog.String(KeyMarkerSystem, name)
}

// Marker はマーカー名の属性を返す。
func Marker(name string) slog.Attr {
	return slog.String(KeyMarker, name)
}

// Mode は接続モードの属性を返す。
func Mode(mode fmt.Stringer) slog.Attr {
	return slog.String(KeyMode, mode.String())
}

// Warning は警告IDの属性を返す。
func Warning(id string) slog.Attr {
	return slog.String(KeyWarning, id)
}

// Path はファイルパスの属性を返す。
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Count は件数の属性を返す。
func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}

// Err はエラーの属性を返す。
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any(KeyError, err)
}
