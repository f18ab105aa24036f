package services

import (
	"regexp"
	"strings"

	"whatsapp-chat-parser/internal/domain"
)

const (
	datePattern  = `\d{1,2}[./-]\d{1,2}[./-]\d{2,4}`
	clockPattern = `\d{1,2}:\d{2}(?::\d{2})?(?:[ \x{202F}\x{00A0}]?[AaPp]\.?[ ]?[Mm]\.?)?`
)

// headerPatterns — заголовки сообщений по платформам. Группа 1 — дата, группа 2 — время.
var headerPatterns = map[domain.Platform]*regexp.Regexp{
	// 01.02.21, 14:30 - Alice: ...
	domain.PlatformAndroid: regexp.MustCompile(`(?m)^(` + datePattern + `),?[ \x{00A0}](` + clockPattern + `) - `),
	// [01.02.21, 14:30:05] Alice: ...
	domain.PlatformIOS: regexp.MustCompile(`(?m)^\x{200E}?\[(` + datePattern + `),?[ \x{00A0}](` + clockPattern + `)\] `),
}

// Segment — один логический блок экспорта: заголовок и текст сообщения
// вместе со всеми строками продолжения.
type Segment struct {
	Index int
	// Header — заголовок блока в исходном виде.
	Header string
	Date   string
	Clock  string
	// Body — текст после заголовка; переводы строк заменены заполнителем.
	Body string
}

// Text возвращает блок целиком в том виде, в котором он хранится после сегментации.
func (s Segment) Text() string {
	return s.Header + s.Body
}

// SegmentText разбивает текст на блоки по заголовкам сообщений платформы.
// Каждый перевод строки внутри блока, включая завершающий, заменяется
// заполнителем. Текст до первого заголовка (преамбула) отбрасывается,
// возвращается его длина в байтах.
func SegmentText(text string, platform domain.Platform, placeholder string) ([]Segment, int) {
	re, ok := headerPatterns[platform]
	if !ok {
		return nil, len(text)
	}

	matches := re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil, len(text)
	}

	segments := make([]Segment, 0, len(matches))
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		segments = append(segments, Segment{
			Index:  i,
			Header: text[m[0]:m[1]],
			Date:   text[m[2]:m[3]],
			Clock:  text[m[4]:m[5]],
			Body:   strings.ReplaceAll(text[m[1]:end], "\n", placeholder),
		})
	}
	return segments, matches[0][0]
}

// JoinSegments восстанавливает текст из блоков, возвращая переводы строк
// на место заполнителей. Результат совпадает с исходным текстом без преамбулы,
// если сам заполнитель в тексте не встречался.
func JoinSegments(segments []Segment, placeholder string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Header)
		b.WriteString(strings.ReplaceAll(s.Body, placeholder, "\n"))
	}
	return b.String()
}

// CountHeaders считает совпадения заголовков платформы в образце текста.
func CountHeaders(sample string, platform domain.Platform) int {
	re, ok := headerPatterns[platform]
	if !ok {
		return 0
	}
	return len(re.FindAllStringIndex(sample, -1))
}
