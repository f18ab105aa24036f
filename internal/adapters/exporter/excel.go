package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"whatsapp-chat-parser/internal/domain"
	"whatsapp-chat-parser/internal/ports"
)

const (
	messagesSheet    = "Messages"
	diagnosticsSheet = "Diagnostics"
	defaultSheet     = "Sheet1"
)

// ExcelExporter реализует интерфейс Exporter для вывода в XLSX.
// Книга содержит лист сообщений, листы длинного формата для непустых
// последовательных колонок и лист диагностики.
type ExcelExporter struct {
	out io.Writer
}

// NewExcelExporter создает новый экземпляр ExcelExporter.
func NewExcelExporter(out io.Writer) ports.Exporter {
	return &ExcelExporter{out: out}
}

// Export пишет книгу XLSX в out.
func (e *ExcelExporter) Export(result *domain.ParseResult) (err error) {
	table := tableOf(result)
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close excel file: %w", cerr)
		}
	}()

	if err := f.SetSheetName(defaultSheet, messagesSheet); err != nil {
		return err
	}
	if err := writeMessagesSheet(f, table); err != nil {
		return fmt.Errorf("failed to write %s sheet: %w", messagesSheet, err)
	}

	for _, col := range domain.ExplodableColumns {
		rows, err := table.Explode(col)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			continue
		}
		if err := writeLongSheet(f, table, col, rows); err != nil {
			return fmt.Errorf("failed to write %s sheet: %w", col, err)
		}
	}

	if result != nil && result.Diagnostics != nil {
		if err := writeDiagnosticsSheet(f, result.Diagnostics); err != nil {
			return fmt.Errorf("failed to write %s sheet: %w", diagnosticsSheet, err)
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(e.out); err != nil {
		return fmt.Errorf("failed to write excel: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeMessagesSheet(f *excelize.File, table *domain.ChatTable) error {
	cols := table.Columns()
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := setRow(f, messagesSheet, 1, header); err != nil {
		return err
	}

	for i := range table.Records {
		row := table.Row(i)
		values := make([]any, len(cols))
		for j, c := range cols {
			switch v := row[c].(type) {
			case []string:
				values[j] = strings.Join(v, " | ")
			default:
				values[j] = v
			}
		}
		if err := setRow(f, messagesSheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeLongSheet(f *excelize.File, table *domain.ChatTable, column string, rows []domain.LongRow) error {
	if _, err := f.NewSheet(column); err != nil {
		return err
	}
	header := LongHeader(table, column)
	values := make([]any, len(header))
	for i, h := range header {
		values[i] = h
	}
	if err := setRow(f, column, 1, values); err != nil {
		return err
	}

	for i, r := range rows {
		rec := LongRecord(table, column, r)
		values := make([]any, len(rec))
		for j, v := range rec {
			values[j] = v
		}
		values[0] = r.RowIndex
		if err := setRow(f, column, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeDiagnosticsSheet(f *excelize.File, d *domain.Diagnostics) error {
	if _, err := f.NewSheet(diagnosticsSheet); err != nil {
		return err
	}
	rows := [][]any{
		{"Platform", string(d.Platform)},
		{"Language", string(d.Language)},
		{"Segments", d.Segments},
		{"PreambleLength", d.PreambleLength},
		{"Malformed", d.MalformedCount()},
		{"Pruned", d.Pruned},
		{"RemovedByConsent", d.RemovedByConsent},
	}
	for _, w := range d.WarningMessages() {
		rows = append(rows, []any{"Warning", w})
	}
	for _, m := range d.Malformed {
		rows = append(rows, []any{"MalformedBlock", m.Index, m.Prefix, m.Reason})
	}

	for i, r := range rows {
		if err := setRow(f, diagnosticsSheet, i+1, r); err != nil {
			return err
		}
	}
	return nil
}
