// Package exporter выводит таблицу сообщений в консоль и в файловые форматы.
package exporter

import (
	"fmt"
	"io"
	"strings"

	"whatsapp-chat-parser/internal/domain"
	"whatsapp-chat-parser/internal/ports"
)

// Format — формат вывода результата разбора.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
	FormatSQLite  Format = "sqlite"
)

// Formats перечисляет поддерживаемые форматы в порядке документации.
var Formats = []Format{FormatConsole, FormatJSON, FormatCSV, FormatXLSX, FormatSQLite}

// Settings задает параметры вывода.
type Settings struct {
	// Long — колонка для длинного формата (Emoji, Smilies, Media, URL); пусто — широкий формат.
	// Учитывается форматами json и csv.
	Long string
	// Width — ширина консольной таблицы в символах.
	Width int
	// Path — путь к файлу базы данных для формата sqlite.
	Path string
}

// New создает экспортер выбранного формата.
func New(format Format, out io.Writer, s Settings) (ports.Exporter, error) {
	if s.Long != "" && !explodable(s.Long) {
		return nil, fmt.Errorf("column %q cannot be exploded", s.Long)
	}

	switch format {
	case FormatConsole:
		return NewConsoleExporter(out, s.Width), nil
	case FormatJSON:
		return NewJSONExporter(out, s.Long), nil
	case FormatCSV:
		return NewCSVExporter(out, s.Long), nil
	case FormatXLSX:
		return NewExcelExporter(out), nil
	case FormatSQLite:
		if s.Path == "" {
			return nil, fmt.Errorf("sqlite export requires an output path")
		}
		return NewSQLiteExporter(s.Path), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// ParseFormat проверяет строковое значение формата.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ParseLongColumn сопоставляет имя колонки длинного формата без учета регистра
// (emoji, smilies, media, url). Пустая строка означает широкий формат.
func ParseLongColumn(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	for _, c := range domain.ExplodableColumns {
		if strings.EqualFold(c, s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("column %q cannot be exploded", s)
}

func explodable(column string) bool {
	for _, c := range domain.ExplodableColumns {
		if c == column {
			return true
		}
	}
	return false
}

func tableOf(result *domain.ParseResult) *domain.ChatTable {
	if result == nil || result.Table == nil {
		return &domain.ChatTable{}
	}
	return result.Table
}

// displayText возвращает текст строки для человекочитаемого вывода:
// текст сообщения, а для служебных строк без текста — описание события.
func displayText(r *domain.MessageRecord) string {
	if r.RawMessage == nil && r.SystemEvent != nil {
		return r.SystemEvent.Text
	}
	return r.Message()
}
