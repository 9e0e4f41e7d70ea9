// Package logger はアプリケーション全体で使うロガーを提供します。
package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu            sync.RWMutex
	defaultLogger *log.Logger
)

// Init はグローバルロガーを初期化します。
// level は debug / info / warn / error、format は text / json / logfmt を受け付けます。
func Init(level, format string) {
	InitWithWriter(os.Stdout, level, format)
}

// InitWithWriter は出力先を指定してグローバルロガーを初期化します。
func InitWithWriter(w io.Writer, level, format string) {
	l := log.NewWithOptions(w, log.Options{
		Level:           parseLevel(level),
		Formatter:       parseFormat(format),
		ReportTimestamp: true,
		Prefix:          "todo-api",
	})

	mu.Lock()
	defaultLogger = l
	mu.Unlock()
}

func parseLevel(level string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

func parseFormat(format string) log.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// Get はグローバルロガーを返します。未初期化の場合は info / text で初期化します。
func Get() *log.Logger {
	mu.RLock()
	l := defaultLogger
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init("info", "text")
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

func Debug(msg string, keyvals ...any) {
	Get().Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...any) {
	Get().Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...any) {
	Get().Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...any) {
	Get().Error(msg, keyvals...)
}

// Fatal はエラーを出力してプロセスを終了します。
func Fatal(msg string, keyvals ...any) {
	Get().Fatal(msg, keyvals...)
}

// With は指定したキーと値を持つ子ロガーを返します。
func With(keyvals ...any) *log.Logger {
	return Get().With(keyvals...)
}
