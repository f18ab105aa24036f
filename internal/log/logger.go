// Package log содержит настройку slog для бинарных файлов и маскировку персональных данных.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel преобразует строковый уровень логирования в slog.Level.
// Неизвестные значения соответствуют info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New создает логгер с текстовым или JSON-выводом.
// При maskPhones номера телефонов в сообщениях и атрибутах заменяются маской.
func New(w io.Writer, level, format string, maskPhones bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	if maskPhones {
		handler = NewPhoneMaskerHandler(handler)
	}
	return slog.New(handler)
}

// SlogAdapter адаптирует slog.Logger под интерфейс Print, который ожидают
// логгеры запросов chi (middleware.LoggerInterface).
type SlogAdapter struct {
	Logger *slog.Logger
}

// Print реализует middleware.LoggerInterface.
func (a *SlogAdapter) Print(v ...interface{}) {
	a.Logger.Info(strings.TrimSpace(fmt.Sprint(v...)))
}
