package domain

import (
	"fmt"
	"strings"
	"time"
)

// Имена колонок табличной проекции ChatTable.
const (
	ColumnDateTime          = "DateTime"
	ColumnSender            = "Sender"
	ColumnAnonymous         = "Anonymous"
	ColumnMessage           = "Message"
	ColumnFlat              = "Flat"
	ColumnTokens            = "Tokens"
	ColumnURL               = "URL"
	ColumnMedia             = "Media"
	ColumnLocation          = "Location"
	ColumnEmoji             = "Emoji"
	ColumnEmojiDescriptions = "EmojiDescriptions"
	ColumnSmilies           = "Smilies"
	ColumnSystemMessage     = "SystemMessage"
	ColumnTokenCount        = "TokenCount"
	ColumnTimeOrder         = "TimeOrder"
	ColumnDisplayOrder      = "DisplayOrder"
)

// ChatTable — однородная последовательность строк с флагами наличия
// необязательных колонок. Табличное представление строится на границе.
type ChatTable struct {
	Records []MessageRecord `json:"records"`
	// HasAnonymous — колонка Anonymous присутствует (режим AnonAdd).
	HasAnonymous    bool `json:"has_anonymous"`
	HasTimeOrder    bool `json:"has_time_order"`
	HasDisplayOrder bool `json:"has_display_order"`
}

// Len возвращает количество строк.
func (t *ChatTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Columns возвращает имена колонок, присутствующих в таблице, в порядке экспорта.
func (t *ChatTable) Columns() []string {
	cols := []string{ColumnDateTime, ColumnSender}
	if t.HasAnonymous {
		cols = append(cols, ColumnAnonymous)
	}
	cols = append(cols,
		ColumnMessage, ColumnFlat, ColumnTokens, ColumnURL, ColumnMedia, ColumnLocation,
		ColumnEmoji, ColumnEmojiDescriptions, ColumnSmilies, ColumnSystemMessage, ColumnTokenCount,
	)
	if t.HasTimeOrder {
		cols = append(cols, ColumnTimeOrder)
	}
	if t.HasDisplayOrder {
		cols = append(cols, ColumnDisplayOrder)
	}
	return cols
}

// Row возвращает строку i в виде словаря "колонка -> значение".
// Отсутствующие значения представлены nil.
func (t *ChatTable) Row(i int) map[string]any {
	r := &t.Records[i]
	row := map[string]any{
		ColumnDateTime:          timeOrNil(r.Timestamp),
		ColumnSender:            stringOrNil(r.Sender),
		ColumnMessage:           ptrOrNil(r.RawMessage),
		ColumnFlat:              ptrOrNil(r.FlatMessage),
		ColumnTokens:            sliceOrNil(r.Tokens),
		ColumnURL:               sliceOrNil(r.URLs),
		ColumnMedia:             sliceOrNil(r.MediaRefs),
		ColumnEmoji:             sliceOrNil(r.EmojiGlyphs()),
		ColumnEmojiDescriptions: sliceOrNil(r.EmojiDescriptions()),
		ColumnSmilies:           sliceOrNil(r.Smilies),
		ColumnTokenCount:        r.TokenCount,
	}
	if r.Location != nil {
		row[ColumnLocation] = string(r.Location.Kind)
	} else {
		row[ColumnLocation] = nil
	}
	if r.SystemEvent != nil {
		row[ColumnSystemMessage] = r.SystemEvent.Text
	} else {
		row[ColumnSystemMessage] = nil
	}
	if t.HasAnonymous {
		row[ColumnAnonymous] = stringOrNil(r.Anonymous)
	}
	if t.HasTimeOrder {
		row[ColumnTimeOrder] = r.TimeOrder
	}
	if t.HasDisplayOrder {
		row[ColumnDisplayOrder] = r.DisplayOrder
	}
	return row
}

// Rows возвращает все строки таблицы в виде словарей.
func (t *ChatTable) Rows() []map[string]any {
	rows := make([]map[string]any, t.Len())
	for i := range rows {
		rows[i] = t.Row(i)
	}
	return rows
}

// StringCell возвращает текстовое представление ячейки для плоских форматов
// (CSV, XLSX, консоль). Последовательности объединяются через " | ".
func (t *ChatTable) StringCell(i int, column string) string {
	v := t.Row(i)[column]
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return fmt.Sprintf("%d", val)
	case time.Time:
		return val.Format(time.RFC3339)
	case []string:
		return strings.Join(val, " | ")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// LongRow — строка "длинного" формата: одно значение последовательной колонки.
type LongRow struct {
	RowIndex  int       `json:"row_index"`
	Timestamp time.Time `json:"timestamp"`
	Sender    string    `json:"sender"`
	Anonymous string    `json:"anonymous,omitempty"`
	Value     string    `json:"value"`
	// Description заполняется только для колонки Emoji.
	Description string `json:"description,omitempty"`
}

// ExplodableColumns — колонки, которые можно развернуть в длинный формат.
var ExplodableColumns = []string{ColumnEmoji, ColumnSmilies, ColumnMedia, ColumnURL}

// Explode разворачивает последовательную колонку в длинный формат:
// по одной строке на каждый элемент последовательности.
func (t *ChatTable) Explode(column string) ([]LongRow, error) {
	var out []LongRow
	for i := range t.Records {
		r := &t.Records[i]
		base := LongRow{RowIndex: i, Timestamp: r.Timestamp, Sender: r.Sender, Anonymous: r.Anonymous}

		switch column {
		case ColumnEmoji:
			for _, e := range r.Emoji {
				row := base
				row.Value = e.Glyph
				row.Description = e.Description
				out = append(out, row)
			}
		case ColumnSmilies:
			out = appendValues(out, base, r.Smilies)
		case ColumnMedia:
			out = appendValues(out, base, r.MediaRefs)
		case ColumnURL:
			out = appendValues(out, base, r.URLs)
		default:
			return nil, fmt.Errorf("column %q cannot be exploded", column)
		}
	}
	return out, nil
}

func appendValues(out []LongRow, base LongRow, values []string) []LongRow {
	for _, v := range values {
		row := base
		row.Value = v
		out = append(out, row)
	}
	return out
}

func timeOrNil(ts time.Time) any {
	if ts.IsZero() {
		return nil
	}
	return ts
}

func stringOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func ptrOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func sliceOrNil(s []string) any {
	if len(s) == 0 {
		return nil
	}
	return s
}
