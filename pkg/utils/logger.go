// Package utils предоставляет логгер и вспомогательные функции.
//
// Логгер пишет структурированные строки через zerolog. Файл ротируется
// lumberjack'ом; по желанию дублирует вывод в stderr.
// До InitLogger все вызовы Info/Warn/Error/Debug ничего не пишут.
package utils

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ilkoid/poncho-cookbook/pkg/config"
)

var (
	logMutex sync.RWMutex
	logger   = zerolog.Nop()
	rotator  *lumberjack.Logger
)

// InitLogger настраивает глобальный логгер по LogConfig.
//
// Повторный вызов закрывает предыдущий файл и применяет новую конфигурацию.
func InitLogger(cfg config.LogConfig) error {
	cfg = cfg.GetDefaults()

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var writers []io.Writer
	var fileWriter *lumberjack.Logger
	if cfg.File != "" {
		fileWriter = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   true,
		}
		writers = append(writers, fileWriter)
	}
	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	logMutex.Lock()
	defer logMutex.Unlock()

	closeRotator()
	if len(writers) == 0 {
		logger = zerolog.Nop()
		return nil
	}

	rotator = fileWriter
	logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return nil
}

// SetLogger подменяет глобальный логгер (используется в тестах).
func SetLogger(l zerolog.Logger) {
	logMutex.Lock()
	defer logMutex.Unlock()
	logger = l
}

// Info - информационное сообщение.
func Info(msg string, keyvals ...any) {
	write(zerolog.InfoLevel, msg, keyvals...)
}

// Error - сообщение об ошибке.
func Error(msg string, keyvals ...any) {
	write(zerolog.ErrorLevel, msg, keyvals...)
}

// Debug - отладочное сообщение.
func Debug(msg string, keyvals ...any) {
	write(zerolog.DebugLevel, msg, keyvals...)
}

// Warn - предупреждение.
func Warn(msg string, keyvals ...any) {
	write(zerolog.WarnLevel, msg, keyvals...)
}

// write пишет сообщение с парами key=value.
// Непарный последний ключ отбрасывается.
func write(level zerolog.Level, msg string, keyvals ...any) {
	logMutex.RLock()
	l := logger
	logMutex.RUnlock()

	if len(keyvals)%2 != 0 {
		keyvals = keyvals[:len(keyvals)-1]
	}

	ev := l.WithLevel(level)
	if ev == nil {
		return
	}
	if len(keyvals) > 0 {
		ev = ev.Fields(keyvals)
	}
	ev.Msg(msg)
}

// Close закрывает лог-файл.
//
// Вызывается через defer в main().
func Close() {
	logMutex.Lock()
	defer logMutex.Unlock()

	closeRotator()
	logger = zerolog.Nop()
}

func closeRotator() {
	if rotator == nil {
		return
	}
	if err := rotator.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "[LOGGER WARNING: Close failed: %v]\n", err)
	}
	rotator = nil
}
