package exporter

import (
	"encoding/json"
	"fmt"
	"io"

	"whatsapp-chat-parser/internal/domain"
	"whatsapp-chat-parser/internal/ports"
)

// DiagnosticsDTO — сериализуемое представление диагностики разбора.
type DiagnosticsDTO struct {
	*domain.Diagnostics
	Warnings []string `json:"warnings"`
}

// NewDiagnosticsDTO оборачивает диагностику для сериализации.
func NewDiagnosticsDTO(d *domain.Diagnostics) *DiagnosticsDTO {
	if d == nil {
		return nil
	}
	return &DiagnosticsDTO{Diagnostics: d, Warnings: d.WarningMessages()}
}

type wideDocument struct {
	Columns     []string         `json:"columns"`
	Rows        []map[string]any `json:"rows"`
	Diagnostics *DiagnosticsDTO  `json:"diagnostics,omitempty"`
}

type longDocument struct {
	Column      string           `json:"column"`
	Rows        []domain.LongRow `json:"rows"`
	Diagnostics *DiagnosticsDTO  `json:"diagnostics,omitempty"`
}

// JSONExporter реализует интерфейс Exporter для вывода в JSON.
type JSONExporter struct {
	out  io.Writer
	long string
}

// NewJSONExporter создает новый экземпляр JSONExporter.
// long задает колонку для длинного формата; пустая строка — широкий формат.
func NewJSONExporter(out io.Writer, long string) ports.Exporter {
	return &JSONExporter{out: out, long: long}
}

// Export пишет таблицу, колонки и диагностику одним JSON-документом.
func (e *JSONExporter) Export(result *domain.ParseResult) error {
	table := tableOf(result)
	var diag *DiagnosticsDTO
	if result != nil {
		diag = NewDiagnosticsDTO(result.Diagnostics)
	}

	var doc any
	if e.long != "" {
		rows, err := table.Explode(e.long)
		if err != nil {
			return err
		}
		if rows == nil {
			rows = []domain.LongRow{}
		}
		doc = longDocument{Column: e.long, Rows: rows, Diagnostics: diag}
	} else {
		doc = wideDocument{Columns: table.Columns(), Rows: table.Rows(), Diagnostics: diag}
	}

	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}
