package domain

import (
	"errors"
	"time"
)

// SystemSender — служебное имя отправителя для событий, сгенерированных самим мессенджером.
const SystemSender = "system"

// PruneThreshold — максимальное число одновременно отсутствующих полей,
// при котором строка еще считается сообщением, а не артефактом разбора.
const PruneThreshold = 10

// LocationKind различает статическую геопозицию и трансляцию местоположения.
type LocationKind string

const (
	LocationStatic LocationKind = "static"
	LocationLive   LocationKind = "live"
)

// Location представляет отметку о местоположении внутри сообщения.
type Location struct {
	Kind LocationKind `json:"kind"`
	// Text — фрагмент сообщения, на котором сработал шаблон.
	Text string `json:"text"`
	// Координаты заполняются только для статической геопозиции со ссылкой вида ?q=lat,lon.
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Emoji — найденный в сообщении эмодзи и его текстовое описание из словаря.
type Emoji struct {
	Glyph       string `json:"glyph"`
	Description string `json:"description"`
}

// SystemEvent описывает служебное сообщение мессенджера.
type SystemEvent struct {
	Kind EventKind `json:"kind"`
	Text string    `json:"text"`
}

// MessageRecord — одна строка итоговой таблицы, соответствующая одному сообщению чата.
// Nullable-поля экспорта представлены указателями, последовательности — срезами.
type MessageRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Sender    string    `json:"sender"`
	// Anonymous заполняется только в режиме анонимизации AnonAdd.
	Anonymous    string       `json:"anonymous,omitempty"`
	RawMessage   *string      `json:"raw_message"`
	FlatMessage  *string      `json:"flat_message"`
	Tokens       []string     `json:"tokens"`
	URLs         []string     `json:"urls"`
	MediaRefs    []string     `json:"media"`
	Location     *Location    `json:"location,omitempty"`
	Emoji        []Emoji      `json:"emoji"`
	Smilies      []string     `json:"smilies"`
	SystemEvent  *SystemEvent `json:"system_event,omitempty"`
	// System отличает строку мессенджера от участника, который назвался "system".
	System       bool         `json:"system"`
	TokenCount   int          `json:"token_count"`
	TimeOrder    int          `json:"time_order,omitempty"`
	DisplayOrder int          `json:"display_order,omitempty"`
}

// IsSystem сообщает, сгенерирована ли строка самим мессенджером.
func (r *MessageRecord) IsSystem() bool {
	return r.System
}

// Message возвращает исходный текст сообщения или пустую строку.
func (r *MessageRecord) Message() string {
	if r.RawMessage == nil {
		return ""
	}
	return *r.RawMessage
}

// Flat возвращает упрощенный текст сообщения или пустую строку.
func (r *MessageRecord) Flat() string {
	if r.FlatMessage == nil {
		return ""
	}
	return *r.FlatMessage
}

// EmojiGlyphs возвращает глифы эмодзи; индексы совпадают с EmojiDescriptions.
func (r *MessageRecord) EmojiGlyphs() []string {
	glyphs := make([]string, len(r.Emoji))
	for i, e := range r.Emoji {
		glyphs[i] = e.Glyph
	}
	return glyphs
}

// EmojiDescriptions возвращает описания эмодзи в порядке появления.
func (r *MessageRecord) EmojiDescriptions() []string {
	descriptions := make([]string, len(r.Emoji))
	for i, e := range r.Emoji {
		descriptions[i] = e.Description
	}
	return descriptions
}

// MissingFieldCount считает отсутствующие поля строки.
// TokenCount, TimeOrder и DisplayOrder являются значениями и не учитываются.
// withAnonymous включает колонку Anonymous в подсчет (режим AnonAdd).
func (r *MessageRecord) MissingFieldCount(withAnonymous bool) int {
	missing := 0
	count := func(absent bool) {
		if absent {
			missing++
		}
	}

	count(r.Timestamp.IsZero())
	count(r.Sender == "")
	if withAnonymous {
		count(r.Anonymous == "")
	}
	count(r.RawMessage == nil)
	count(r.FlatMessage == nil)
	count(len(r.Tokens) == 0)
	count(len(r.URLs) == 0)
	count(len(r.MediaRefs) == 0)
	count(r.Location == nil)
	// Глифы и описания — две колонки экспорта.
	count(len(r.Emoji) == 0)
	count(len(r.Emoji) == 0)
	count(len(r.Smilies) == 0)
	count(r.SystemEvent == nil)

	return missing
}

// MalformedRecord описывает блок, отброшенный из-за некорректной временной метки.
type MalformedRecord struct {
	Index  int    `json:"index"`
	Prefix string `json:"prefix"`
	Reason string `json:"reason"`
}

// Diagnostics собирает сведения о ходе разбора, не являющиеся фатальными ошибками.
type Diagnostics struct {
	Platform         Platform          `json:"platform"`
	Language         Language          `json:"language"`
	PreambleLength   int               `json:"preamble_length"`
	Segments         int               `json:"segments"`
	Malformed        []MalformedRecord `json:"malformed,omitempty"`
	Pruned           int               `json:"pruned"`
	RemovedByConsent int               `json:"removed_by_consent"`
	Warnings         []error           `json:"-"`
}

// MalformedCount возвращает число отброшенных блоков.
func (d *Diagnostics) MalformedCount() int {
	return len(d.Malformed)
}

// Empty сообщает, что после обработки не осталось ни одного сообщения.
func (d *Diagnostics) Empty() bool {
	for _, w := range d.Warnings {
		if errors.Is(w, ErrEmptyResult) {
			return true
		}
	}
	return false
}

// WarningMessages возвращает предупреждения в виде строк для сериализации.
func (d *Diagnostics) WarningMessages() []string {
	msgs := make([]string, 0, len(d.Warnings))
	for _, w := range d.Warnings {
		msgs = append(msgs, w.Error())
	}
	return msgs
}

// ParseResult объединяет таблицу и диагностику одного запуска разбора.
type ParseResult struct {
	Table       *ChatTable
	Diagnostics *Diagnostics
}

// Detection — результат определения формата экспорта.
type Detection struct {
	Platform Platform `json:"platform"`
	Language Language `json:"language"`
	// Счетчики совпадений заголовков по платформам. Пусты, если платформа задана явно.
	PlatformCounts map[Platform]int `json:"platform_counts,omitempty"`
	// Счетчики маркеров по языкам выбранной платформы. Пусты, если язык задан явно.
	LanguageCounts map[Language]int `json:"language_counts,omitempty"`
}
