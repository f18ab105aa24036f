package parser

import (
	"context"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/xerrors"

	"whatsapp-chat-parser/internal/domain"
	"whatsapp-chat-parser/internal/ports"
)

// TextParser реализует интерфейс Parser для текстового экспорта чата:
// декодирует байты и передает текст в ChatParser.
type TextParser struct {
	chat ports.ChatParser
}

// NewTextParser создает новый экземпляр TextParser.
func NewTextParser(chat ports.ChatParser) ports.Parser {
	return &TextParser{chat: chat}
}

// Parse декодирует данные и разбирает их в таблицу сообщений.
func (p *TextParser) Parse(ctx context.Context, data []byte, opts domain.Options) (*domain.ParseResult, error) {
	text, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return p.chat.Parse(ctx, text, opts)
}

// Detect декодирует данные и определяет платформу и язык экспорта.
func (p *TextParser) Detect(_ context.Context, data []byte, opts domain.Options) (*domain.Detection, error) {
	text, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return p.chat.Detect(text, opts)
}

// Decode приводит байты экспорта к нормализованному тексту:
// BOM определяет кодировку (UTF-8 по умолчанию, UTF-16 LE/BE с BOM),
// переводы строк CRLF и CR заменяются на LF, текст приводится к NFC.
func Decode(data []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	decoded, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", xerrors.Errorf("failed to decode chat export: %w", err)
	}

	text := strings.ReplaceAll(string(decoded), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return norm.NFC.String(text), nil
}
