package services

import (
	"regexp"
	"strconv"
	"strings"

	"whatsapp-chat-parser/internal/domain"
	"whatsapp-chat-parser/internal/resources"
)

var (
	urlRe = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"]+`)
	// nonWordRe удаляет все, кроме букв, меток, цифр и пробелов, а также
	// селекторы вариантов и keycap, которые относятся к меткам.
	nonWordRe = regexp.MustCompile(`[^\p{L}\p{M}\p{N}\s]|[\x{FE0E}\x{FE0F}\x{20E3}]`)
)

const urlTrailingPunctuation = ".,;:!?)'\""

// Extractor извлекает из текста сообщения ссылки, вложения, геопозицию,
// эмодзи, смайлики, упрощенный текст и токены.
// Extractor не хранит изменяемого состояния и безопасен для одновременного использования.
type Extractor struct {
	ind     *resources.Indicators
	emoji   *resources.EmojiDictionary
	smilies smileyMatcher
	opts    domain.Options

	newlineTokens []string
	mediaTokens   []string
}

// NewExtractor создает экстрактор для строки индикаторов, словарей и опций разбора.
func NewExtractor(ind *resources.Indicators, res *resources.Set, opts domain.Options) *Extractor {
	opts = opts.WithDefaults()
	return &Extractor{
		ind:           ind,
		emoji:         res.Emoji,
		smilies:       newSmileyMatcher(opts.SmileyStrategy, res.Smilies),
		opts:          opts,
		newlineTokens: placeholderForms(opts.NewlinePlaceholder),
		mediaTokens:   placeholderForms(opts.MediaOmittedPlaceholder),
	}
}

// Extract заполняет поля записи, производные от RawMessage.
// Записи без текста получают пустые последовательности и нулевой TokenCount.
func (e *Extractor) Extract(rec *domain.MessageRecord) {
	if rec.RawMessage == nil {
		rec.TokenCount = 0
		return
	}
	text := *rec.RawMessage

	rawURLs := findURLs(text)
	rec.URLs = e.projectURLs(rawURLs)
	rec.MediaRefs = e.findMedia(text)
	rec.Location = e.findLocation(text)
	rec.Emoji = extractEmoji(text, e.emoji)

	flat := e.removeStructure(text, rawURLs)
	rec.Smilies, flat = extractSmilies(flat, e.smilies)
	flat = removeEmoji(flat, e.emoji)
	flat = strings.Join(strings.Fields(nonWordRe.ReplaceAllString(flat, " ")), " ")

	if flat != "" {
		rec.FlatMessage = &flat
	}
	rec.Tokens = Tokenize(flat)
	rec.TokenCount = len(rec.Tokens)
}

// removeStructure удаляет заполнители, индикаторы вложений, геопозиции,
// пропущенных звонков и ссылки, в этом порядке.
func (e *Extractor) removeStructure(text string, rawURLs []string) string {
	for _, t := range e.newlineTokens {
		text = strings.ReplaceAll(text, t, " ")
	}
	for _, t := range e.mediaTokens {
		text = strings.ReplaceAll(text, t, " ")
	}
	for _, re := range []*regexp.Regexp{e.ind.AttachedFileRe, e.ind.LocationRe, e.ind.LiveLocationRe, e.ind.MissedCallRe} {
		if re != nil {
			text = re.ReplaceAllString(text, " ")
		}
	}
	for _, u := range rawURLs {
		text = strings.ReplaceAll(text, u, " ")
	}
	return text
}

func (e *Extractor) projectURLs(raw []string) []string {
	if e.opts.URLMode != domain.URLDomain {
		return raw
	}
	var out []string
	for _, u := range raw {
		if d, ok := reduceToDomain(u); ok {
			out = append(out, d)
		}
	}
	return out
}

func (e *Extractor) findMedia(text string) []string {
	if e.ind.AttachedFileRe == nil {
		return nil
	}
	idx := e.ind.AttachedFileRe.SubexpIndex("file")
	var out []string
	for _, m := range e.ind.AttachedFileRe.FindAllStringSubmatch(text, -1) {
		if f := strings.TrimSpace(m[idx]); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// findLocation возвращает первую по положению в тексте отметку местоположения.
func (e *Extractor) findLocation(text string) *domain.Location {
	var static, live []int
	if e.ind.LocationRe != nil {
		static = e.ind.LocationRe.FindStringSubmatchIndex(text)
	}
	if e.ind.LiveLocationRe != nil {
		live = e.ind.LiveLocationRe.FindStringIndex(text)
	}

	switch {
	case static != nil && (live == nil || static[0] <= live[0]):
		loc := &domain.Location{Kind: domain.LocationStatic, Text: text[static[0]:static[1]]}
		loc.Latitude = parseCoordinate(e.ind.LocationRe, text, static, "lat")
		loc.Longitude = parseCoordinate(e.ind.LocationRe, text, static, "lon")
		return loc
	case live != nil:
		return &domain.Location{Kind: domain.LocationLive, Text: text[live[0]:live[1]]}
	default:
		return nil
	}
}

func parseCoordinate(re *regexp.Regexp, text string, loc []int, group string) *float64 {
	i := re.SubexpIndex(group)
	if i < 0 || loc[2*i] < 0 {
		return nil
	}
	v, err := strconv.ParseFloat(text[loc[2*i]:loc[2*i+1]], 64)
	if err != nil {
		return nil
	}
	return &v
}

// findURLs находит ссылки в тексте и отрезает от них завершающую пунктуацию.
func findURLs(text string) []string {
	var out []string
	for _, m := range urlRe.FindAllString(text, -1) {
		if u := strings.TrimRight(m, urlTrailingPunctuation); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// reduceToDomain сокращает ссылку до первых трех сегментов "scheme://host/".
func reduceToDomain(u string) (string, bool) {
	parts := strings.SplitN(u, "/", 4)
	if len(parts) < 3 || parts[1] != "" || parts[2] == "" {
		return "", false
	}
	return strings.Join(parts[:3], "/") + "/", true
}

// placeholderForms возвращает заполнитель в исходном виде и без краевых пробелов.
func placeholderForms(p string) []string {
	forms := []string{p}
	if t := strings.TrimSpace(p); t != "" && t != p {
		forms = append(forms, t)
	}
	return forms
}
