package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"whatsapp-chat-parser/internal/domain"
	"whatsapp-chat-parser/internal/ports"
)

// DefaultConsoleWidth используется, когда ширина терминала неизвестна.
const DefaultConsoleWidth = 120

const (
	indexColWidth  = 5
	timeColWidth   = 16
	senderColWidth = 18
	minTextWidth   = 20
	consoleTime    = "2006-01-02 15:04"
)

// ConsoleExporter реализует интерфейс Exporter для вывода таблицы в консоль.
type ConsoleExporter struct {
	out   io.Writer
	width int
}

// NewConsoleExporter создает новый экземпляр ConsoleExporter.
func NewConsoleExporter(out io.Writer, width int) ports.Exporter {
	if width <= 0 {
		width = DefaultConsoleWidth
	}
	return &ConsoleExporter{out: out, width: width}
}

// Export печатает таблицу сообщений с переносом длинного текста и сводку диагностики.
func (e *ConsoleExporter) Export(result *domain.ParseResult) error {
	table := tableOf(result)
	var sb strings.Builder

	sb.WriteString("--- Chat Messages ---\n")
	if table.Len() == 0 {
		sb.WriteString("No messages found.\n")
	} else {
		e.writeTable(&sb, table)
	}
	if result != nil && result.Diagnostics != nil {
		writeDiagnostics(&sb, result.Diagnostics)
	}

	_, err := io.WriteString(e.out, sb.String())
	return err
}

func (e *ConsoleExporter) writeTable(sb *strings.Builder, table *domain.ChatTable) {
	// "| " + 4 колонки + " | " между ними + " |"
	textColWidth := e.width - indexColWidth - timeColWidth - senderColWidth - 13
	if textColWidth < minTextWidth {
		textColWidth = minTextWidth
	}
	widths := []int{indexColWidth, timeColWidth, senderColWidth, textColWidth}

	writeRow(sb, widths, []string{"#", "DateTime", "Sender", "Message"})
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w+2)
	}
	sb.WriteString("|" + strings.Join(sep, "|") + "|\n")

	for i := range table.Records {
		r := &table.Records[i]
		sender := r.Sender
		if table.HasAnonymous && r.Anonymous != "" {
			sender = r.Anonymous
		}
		ts := ""
		if !r.Timestamp.IsZero() {
			ts = r.Timestamp.Format(consoleTime)
		}
		text := strings.ToValidUTF8(displayText(r), "")
		writeRow(sb, widths, []string{fmt.Sprintf("%d", i+1), ts, sender, text})
	}
}

// writeRow печатает одну логическую строку таблицы, перенося ячейки на несколько линий.
func writeRow(sb *strings.Builder, widths []int, cells []string) {
	wrapped := make([][]string, len(cells))
	maxLines := 1
	for i, c := range cells {
		wrapped[i] = wrapString(strings.ReplaceAll(c, "\n", " "), widths[i])
		maxLines = max(maxLines, len(wrapped[i]))
	}

	for line := 0; line < maxLines; line++ {
		for i := range cells {
			part := ""
			if line < len(wrapped[i]) {
				part = wrapped[i][line]
			}
			sb.WriteString("| " + part + generatePadding(part, widths[i]) + " ")
		}
		sb.WriteString("|\n")
	}
}

func writeDiagnostics(sb *strings.Builder, d *domain.Diagnostics) {
	fmt.Fprintf(sb, "\nplatform: %s, language: %s, blocks: %d\n", d.Platform, d.Language, d.Segments)
	if n := d.MalformedCount(); n > 0 {
		fmt.Fprintf(sb, "malformed timestamps: %d\n", n)
		for _, m := range d.Malformed {
			fmt.Fprintf(sb, "  #%d %q: %s\n", m.Index, m.Prefix, m.Reason)
		}
	}
	if d.Pruned > 0 {
		fmt.Fprintf(sb, "pruned artifacts: %d\n", d.Pruned)
	}
	if d.RemovedByConsent > 0 {
		fmt.Fprintf(sb, "removed by consent filter: %d\n", d.RemovedByConsent)
	}
	for _, w := range d.WarningMessages() {
		fmt.Fprintf(sb, "warning: %s\n", w)
	}
}

// generatePadding вычисляет отступ до ширины колонки с учетом ширины символов.
func generatePadding(s string, colWidth int) string {
	if n := colWidth - runewidth.StringWidth(s); n > 0 {
		return strings.Repeat(" ", n)
	}
	return ""
}

// wrapString переносит строку по ширине колонки, предпочитая границы слов.
// Слово длиннее ширины разрывается посередине.
func wrapString(s string, width int) []string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return []string{s}
	}

	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var currentLine strings.Builder
	for _, word := range words {
		wordWidth := runewidth.StringWidth(word)

		if wordWidth > width {
			if currentLine.Len() > 0 {
				lines = append(lines, currentLine.String())
				currentLine.Reset()
			}
			lines = append(lines, breakWord(word, width)...)
			continue
		}

		lineLen := runewidth.StringWidth(currentLine.String())
		if lineLen > 0 && lineLen+1+wordWidth > width {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
		}
		if currentLine.Len() > 0 {
			currentLine.WriteString(" ")
		}
		currentLine.WriteString(word)
	}

	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}
	return lines
}

// breakWord режет слово на части шириной не больше width.
func breakWord(word string, width int) []string {
	var lines []string
	runes := []rune(word)
	for len(runes) > 0 {
		i, currentWidth := 0, 0
		for i < len(runes) {
			w := runewidth.RuneWidth(runes[i])
			if currentWidth+w > width {
				break
			}
			currentWidth += w
			i++
		}
		if i == 0 {
			// символ шире колонки
			i = 1
		}
		lines = append(lines, string(runes[:i]))
		runes = runes[i:]
	}
	return lines
}
