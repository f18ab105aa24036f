package log

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// PhoneMaskerHandler - обертка для slog.Handler, которая маскирует номера телефонов в логах.
// Участники без сохраненного контакта попадают в экспорт под номером телефона,
// поэтому имена отправителей и тексты служебных сообщений могут содержать номера.
type PhoneMaskerHandler struct {
	handler slog.Handler
}

// NewPhoneMaskerHandler создает новый обработчик с маскировкой номеров
func NewPhoneMaskerHandler(handler slog.Handler) *PhoneMaskerHandler {
	return &PhoneMaskerHandler{
		handler: handler,
	}
}

// международный формат: +, код страны и не менее семи цифр с пробелами, дефисами или скобками
var phoneRegex = regexp.MustCompile(`\+\d[\d \-()\x{00a0}]{5,}\d`)

// maskPhones заменяет найденные номера на маску, сохраняя две последние цифры
func maskPhones(text string) string {
	return phoneRegex.ReplaceAllStringFunc(text, func(phone string) string {
		digits := 0
		for _, r := range phone {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits < 8 {
			return phone
		}
		return "+***" + phone[len(phone)-2:]
	})
}

// Enabled реализует интерфейс slog.Handler
func (h *PhoneMaskerHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle реализует интерфейс slog.Handler
func (h *PhoneMaskerHandler) Handle(ctx context.Context, record slog.Record) error {
	// Clone() не копирует атрибуты в изолированный срез, поэтому собираем новую запись.
	r := slog.NewRecord(record.Time, record.Level, maskPhones(record.Message), record.PC)

	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(maskAttr(a))
		return true
	})

	return h.handler.Handle(ctx, r)
}

// WithAttrs реализует интерфейс slog.Handler
func (h *PhoneMaskerHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	maskedAttrs := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		maskedAttrs[i] = maskAttr(attr)
	}
	return &PhoneMaskerHandler{
		handler: h.handler.WithAttrs(maskedAttrs),
	}
}

// WithGroup реализует интерфейс slog.Handler
func (h *PhoneMaskerHandler) WithGroup(name string) slog.Handler {
	return &PhoneMaskerHandler{
		handler: h.handler.WithGroup(name),
	}
}

func maskAttr(a slog.Attr) slog.Attr {
	return slog.Attr{Key: a.Key, Value: maskAttributeValue(a.Value)}
}

// maskAttributeValue рекурсивно маскирует значения атрибутов
func maskAttributeValue(value slog.Value) slog.Value {
	switch value.Kind() {
	case slog.KindString:
		return slog.StringValue(maskPhones(value.String()))
	case slog.KindAny:
		switch v := value.Any().(type) {
		case error:
			return slog.StringValue(maskPhones(v.Error()))
		case []string:
			masked := make([]string, len(v))
			for i, s := range v {
				masked[i] = maskPhones(s)
			}
			return slog.StringValue(strings.Join(masked, ", "))
		}
		return value
	case slog.KindGroup:
		group := value.Group()
		maskedGroup := make([]slog.Attr, len(group))
		for i, attr := range group {
			maskedGroup[i] = maskAttr(attr)
		}
		return slog.GroupValue(maskedGroup...)
	case slog.KindLogValuer:
		return maskAttributeValue(value.Resolve())
	default:
		return value
	}
}
