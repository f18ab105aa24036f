package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"whatsapp-chat-parser/internal/domain"
	"whatsapp-chat-parser/internal/ports"
)

// CSVExporter реализует интерфейс Exporter для вывода в CSV.
// Последовательности в широком формате объединяются через " | ".
type CSVExporter struct {
	out  io.Writer
	long string
}

// NewCSVExporter создает новый экземпляр CSVExporter.
func NewCSVExporter(out io.Writer, long string) ports.Exporter {
	return &CSVExporter{out: out, long: long}
}

// Export пишет таблицу в широком или длинном формате.
func (e *CSVExporter) Export(result *domain.ParseResult) error {
	table := tableOf(result)
	w := csv.NewWriter(e.out)

	var err error
	if e.long != "" {
		err = writeLongCSV(w, table, e.long)
	} else {
		err = writeWideCSV(w, table)
	}
	if err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}

	w.Flush()
	return w.Error()
}

func writeWideCSV(w *csv.Writer, table *domain.ChatTable) error {
	cols := table.Columns()
	if err := w.Write(cols); err != nil {
		return err
	}
	record := make([]string, len(cols))
	for i := range table.Records {
		for j, c := range cols {
			record[j] = table.StringCell(i, c)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// LongHeader возвращает заголовок длинного формата для колонки.
func LongHeader(table *domain.ChatTable, column string) []string {
	header := []string{"RowIndex", domain.ColumnDateTime, domain.ColumnSender}
	if table.HasAnonymous {
		header = append(header, domain.ColumnAnonymous)
	}
	header = append(header, column)
	if column == domain.ColumnEmoji {
		header = append(header, domain.ColumnEmojiDescriptions)
	}
	return header
}

// LongRecord возвращает строку длинного формата в текстовом виде.
func LongRecord(table *domain.ChatTable, column string, r domain.LongRow) []string {
	rec := []string{strconv.Itoa(r.RowIndex), formatTime(r.Timestamp), r.Sender}
	if table.HasAnonymous {
		rec = append(rec, r.Anonymous)
	}
	rec = append(rec, r.Value)
	if column == domain.ColumnEmoji {
		rec = append(rec, r.Description)
	}
	return rec
}

func writeLongCSV(w *csv.Writer, table *domain.ChatTable, column string) error {
	rows, err := table.Explode(column)
	if err != nil {
		return err
	}
	if err := w.Write(LongHeader(table, column)); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write(LongRecord(table, column, r)); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(time.RFC3339)
}
