package services

import (
	"strings"

	"whatsapp-chat-parser/internal/domain"
	"whatsapp-chat-parser/internal/resources"
)

const (
	leftToRightMark  = "\u200e"
	senderDelimiter  = ": "
	senderTerminator = ":"
)

// Classifier разделяет блок на метку времени, отправителя, текст
// и служебное событие по строке индикаторов одной пары (язык, платформа).
type Classifier struct {
	ind          *resources.Indicators
	opts         domain.Options
	senderEvents []*resources.EventPattern
	bodyEvents   []*resources.EventPattern
	slashOrder   string
}

// NewClassifier создает классификатор для строки индикаторов и опций разбора.
func NewClassifier(ind *resources.Indicators, opts domain.Options) *Classifier {
	return &Classifier{
		ind:          ind,
		opts:         opts.WithDefaults(),
		senderEvents: ind.SenderEvents(),
		bodyEvents:   ind.BodyEvents(),
		slashOrder:   ind.SlashDateOrder,
	}
}

// WithSlashDateOrder возвращает копию классификатора с порядком дня и месяца,
// определенным по всему экспорту.
func (c *Classifier) WithSlashDateOrder(order string) *Classifier {
	cp := *c
	cp.slashOrder = order
	return &cp
}

// Classify превращает блок в запись без извлеченных полей.
// Ошибка возвращается только для некорректной метки времени.
func (c *Classifier) Classify(seg Segment) (domain.MessageRecord, error) {
	ts, err := parseTimestamp(seg.Date, seg.Clock, c.slashOrder, c.opts.Location)
	if err != nil {
		return domain.MessageRecord{}, &domain.MalformedTimestampError{
			Index:  seg.Index,
			Prefix: strings.TrimSpace(seg.Header),
			Reason: err.Error(),
		}
	}

	rec := domain.MessageRecord{Timestamp: ts}
	remainder := c.cleanRemainder(seg.Body)

	// Строка целиком совпадает со служебным шаблоном: отправителя нет.
	if kind, ok := c.matchEvent(c.senderEvents, remainder); ok {
		rec.Sender = domain.SystemSender
		rec.System = true
		rec.SystemEvent = &domain.SystemEvent{Kind: kind, Text: remainder}
		return rec, nil
	}

	candidate, body, ok := splitSender(remainder)
	if !ok {
		// Без разделителя и без служебного шаблона строка остается артефактом.
		return rec, nil
	}
	body = c.replaceMediaOmitted(body)

	if kind, ok := c.matchEvent(c.senderEvents, candidate); ok {
		rec.Sender = domain.SystemSender
		rec.System = true
		rec.SystemEvent = &domain.SystemEvent{Kind: kind, Text: candidate}
		if body != "" {
			rec.RawMessage = &body
		}
		return rec, nil
	}

	rec.Sender = candidate
	if body == "" {
		rec.SystemEvent = &domain.SystemEvent{Kind: domain.EventSelfDeletingMedia, Text: candidate}
		return rec, nil
	}

	if kind, ok := c.matchEvent(c.bodyEvents, body); ok {
		rec.SystemEvent = &domain.SystemEvent{Kind: kind, Text: body}
		return rec, nil
	}

	rec.RawMessage = &body
	return rec, nil
}

func (c *Classifier) cleanRemainder(body string) string {
	body = strings.ReplaceAll(body, leftToRightMark, "")
	for {
		trimmed := strings.TrimRight(body, " \t")
		trimmed = strings.TrimSuffix(trimmed, strings.TrimSpace(c.opts.NewlinePlaceholder))
		if trimmed == body {
			break
		}
		body = trimmed
	}
	return strings.TrimSpace(body)
}

// replaceMediaOmitted заменяет тело, целиком состоящее из индикатора пропущенного
// вложения, заполнителем.
func (c *Classifier) replaceMediaOmitted(body string) string {
	for _, ind := range c.ind.MediaOmitted {
		if body == ind {
			return c.opts.MediaOmittedPlaceholder
		}
	}
	return body
}

func (c *Classifier) matchEvent(patterns []*resources.EventPattern, text string) (domain.EventKind, bool) {
	for _, p := range patterns {
		if _, ok := p.Match(text); ok {
			return p.Kind, true
		}
	}
	return "", false
}

// splitSender отделяет отправителя по первому ": ". Строка, оканчивающаяся
// двоеточием без текста ("Alice:"), дает отправителя с пустым телом.
func splitSender(remainder string) (sender, body string, ok bool) {
	if i := strings.Index(remainder, senderDelimiter); i >= 0 {
		sender, body = remainder[:i], remainder[i+len(senderDelimiter):]
	} else if strings.HasSuffix(remainder, senderTerminator) {
		sender = strings.TrimSuffix(remainder, senderTerminator)
	} else {
		return "", "", false
	}
	sender = strings.TrimSpace(sender)
	return sender, strings.TrimSpace(body), sender != ""
}
