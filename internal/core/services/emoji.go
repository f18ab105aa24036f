package services

import (
	"strings"

	"github.com/rivo/uniseg"

	"whatsapp-chat-parser/internal/domain"
	"whatsapp-chat-parser/internal/resources"
)

const variationSelector16 = "\ufe0f"

// skinTones — модификаторы оттенка кожи (U+1F3FB..U+1F3FF).
var skinTones = []string{"\U0001F3FB", "\U0001F3FC", "\U0001F3FD", "\U0001F3FE", "\U0001F3FF"}

// extractEmoji разбивает текст на графемные кластеры и сопоставляет каждый
// со словарем. Порядок и повторы сохраняются.
func extractEmoji(text string, dict *resources.EmojiDictionary) []domain.Emoji {
	var out []domain.Emoji
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		g := gr.Str()
		if len(g) == 1 {
			// ASCII не бывает эмодзи.
			continue
		}
		if desc, ok := lookupEmoji(g, dict); ok {
			out = append(out, domain.Emoji{Glyph: g, Description: desc})
		}
	}
	return out
}

// lookupEmoji ищет глиф в словаре; при промахе пробует форму без U+FE0F,
// затем базовый глиф без оттенка кожи с добавлением названия оттенка.
func lookupEmoji(g string, dict *resources.EmojiDictionary) (string, bool) {
	if desc, ok := dict.Lookup(g); ok {
		return desc, true
	}

	stripped := strings.ReplaceAll(g, variationSelector16, "")
	if stripped != g {
		if desc, ok := dict.Lookup(stripped); ok {
			return desc, true
		}
	}

	for _, tone := range skinTones {
		if !strings.Contains(stripped, tone) {
			continue
		}
		base := strings.ReplaceAll(stripped, tone, "")
		desc, ok := dict.Lookup(base)
		if !ok {
			return "", false
		}
		if toneDesc, ok := dict.Lookup(tone); ok {
			desc += ": " + toneDesc
		}
		return desc, true
	}
	return "", false
}

// removeEmoji удаляет из текста графемы, найденные в словаре эмодзи.
func removeEmoji(text string, dict *resources.EmojiDictionary) string {
	var b strings.Builder
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		g := gr.Str()
		if len(g) > 1 {
			if _, ok := lookupEmoji(g, dict); ok {
				b.WriteByte(' ')
				continue
			}
		}
		b.WriteString(g)
	}
	return b.String()
}
