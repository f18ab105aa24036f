package ports

import (
	"context"

	"whatsapp-chat-parser/internal/domain"
)

// DataSource определяет интерфейс для получения исходных данных чата.
type DataSource interface {
	// Fetch загружает данные из источника и возвращает их в виде байтового среза.
	Fetch() ([]byte, error)
}

// Parser определяет интерфейс для разбора текстового экспорта чата.
type Parser interface {
	// Parse декодирует сырые байты экспорта и преобразует их в таблицу сообщений.
	Parse(ctx context.Context, data []byte, opts domain.Options) (*domain.ParseResult, error)
	// Detect определяет платформу и язык экспорта без полного разбора.
	Detect(ctx context.Context, data []byte, opts domain.Options) (*domain.Detection, error)
}

// ChatParser разбирает уже декодированный текст экспорта.
type ChatParser interface {
	Parse(ctx context.Context, text string, opts domain.Options) (*domain.ParseResult, error)
	Detect(text string, opts domain.Options) (*domain.Detection, error)
}

// Exporter определяет интерфейс для вывода результата.
type Exporter interface {
	// Export принимает результат разбора и выводит его таблицу.
	Export(result *domain.ParseResult) error
}
