package resources

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// EmojiDictionary сопоставляет глиф эмодзи с его текстовым описанием.
type EmojiDictionary struct {
	byGlyph map[string]string
}

// Lookup возвращает описание глифа.
func (d *EmojiDictionary) Lookup(glyph string) (string, bool) {
	desc, ok := d.byGlyph[glyph]
	return desc, ok
}

// Len возвращает количество записей словаря.
func (d *EmojiDictionary) Len() int {
	return len(d.byGlyph)
}

// SmileyDictionary — множество текстовых смайликов с описаниями.
type SmileyDictionary struct {
	bySmiley map[string]string
}

// Contains сообщает, входит ли токен в словарь.
func (d *SmileyDictionary) Contains(token string) bool {
	_, ok := d.bySmiley[token]
	return ok
}

// Description возвращает описание смайлика.
func (d *SmileyDictionary) Description(token string) string {
	return d.bySmiley[token]
}

// Len возвращает количество записей словаря.
func (d *SmileyDictionary) Len() int {
	return len(d.bySmiley)
}

// LoadEmojiDictionary читает словарь эмодзи в формате CSV "emoji,description".
func LoadEmojiDictionary(r io.Reader) (*EmojiDictionary, error) {
	entries, err := readPairs(r, "emoji")
	if err != nil {
		return nil, fmt.Errorf("failed to load emoji dictionary: %w", err)
	}

	d := &EmojiDictionary{byGlyph: make(map[string]string, len(entries))}
	for _, e := range entries {
		d.byGlyph[e[0]] = e[1]
	}
	return d, nil
}

// LoadSmileyDictionary читает словарь смайликов в формате CSV "smiley,description".
func LoadSmileyDictionary(r io.Reader) (*SmileyDictionary, error) {
	entries, err := readPairs(r, "smiley")
	if err != nil {
		return nil, fmt.Errorf("failed to load smiley dictionary: %w", err)
	}

	d := &SmileyDictionary{bySmiley: make(map[string]string, len(entries))}
	for _, e := range entries {
		d.bySmiley[e[0]] = e[1]
	}
	return d, nil
}

// readPairs читает двухколоночный CSV. Первая строка считается заголовком,
// если ее первая ячейка совпадает с header.
func readPairs(r io.Reader, header string) ([][2]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.LazyQuotes = true

	var out [][2]string
	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if first {
			first = false
			if strings.EqualFold(rec[0], header) {
				continue
			}
		}
		key := strings.TrimSpace(rec[0])
		if key == "" {
			continue
		}
		out = append(out, [2]string{key, strings.TrimSpace(rec[1])})
	}
	if len(out) == 0 {
		return nil, errors.New("no entries")
	}
	return out, nil
}
