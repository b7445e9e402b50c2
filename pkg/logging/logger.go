// Package logging 结构化日志
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Logger 结构化日志器
type Logger struct {
	*slog.Logger
	component string
	file      *os.File
}

// Config 日志配置
type Config struct {
	Level        string // debug / info / warn / error
	Format       string // json or text
	FilePath     string // 日志目录，空表示只输出到控制台
	Console      bool   // 是否同时输出到控制台
	RetainedDays int    // 日志保留天数，0 表示不清理
	Component    string
}

// New 创建新的日志器
//
// FilePath 非空时写入 {dir}/{component}-{yyyy-MM-dd}.log，
// 并在启动时清理超过保留天数的历史日志文件。
func New(cfg Config) (*Logger, error) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var writers []io.Writer
	var file *os.File
	if cfg.FilePath != "" {
		if err := os.MkdirAll(cfg.FilePath, 0755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		name := fmt.Sprintf("%s-%s.log", cfg.Component, time.Now().Format("2006-01-02"))
		f, err := os.OpenFile(filepath.Join(cfg.FilePath, name),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		writers = append(writers, f)

		if cfg.RetainedDays > 0 {
			cleanupOldLogs(cfg.FilePath, cfg.Component, cfg.RetainedDays)
		}
	}
	if cfg.Console || len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}
	output := io.MultiWriter(writers...)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{
		Logger:    slog.New(handler),
		component: cfg.Component,
		file:      file,
	}, nil
}

// Default 创建默认日志器（仅控制台输出）
func Default(component string) *Logger {
	l, _ := New(Config{
		Level:     os.Getenv("LOG_LEVEL"),
		Format:    os.Getenv("LOG_FORMAT"),
		Console:   true,
		Component: component,
	})
	return l
}

// Close 关闭日志文件
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// SetAsDefault 将本日志器设为 slog 全局默认
func (l *Logger) SetAsDefault() {
	slog.SetDefault(l.Logger)
}

// WithError 添加错误信息
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return &Logger{
		Logger:    l.Logger.With(slog.String("error", err.Error())),
		component: l.component,
		file:      l.file,
	}
}

// HTTPRequestLog HTTP 请求日志
func (l *Logger) HTTPRequestLog(method, path string, status int, duration time.Duration, clientIP string) {
	l.Logger.Info("HTTP request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
		slog.String("client_ip", clientIP),
	)
}

// cleanupOldLogs 删除超过保留天数的日志文件
func cleanupOldLogs(dir, component string, retainedDays int) {
	cutoff := time.Now().AddDate(0, 0, -retainedDays)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	prefix := component + "-"
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		dateStr := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".log")
		day, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			os.Remove(filepath.Join(dir, name))
		}
	}
}
