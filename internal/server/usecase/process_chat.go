package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"whatsapp-chat-parser/internal/adapters/source"
	"whatsapp-chat-parser/internal/cache"
	"whatsapp-chat-parser/internal/domain"
	"whatsapp-chat-parser/internal/pkg/config"
	"whatsapp-chat-parser/internal/ports"
)

// ProcessChatUseCase инкапсулирует бизнес-логику для обработки загруженного экспорта чата.
type ProcessChatUseCase struct {
	cfg        *config.Config
	parser     ports.Parser
	cacheStore *cache.CacheStore
	log        *slog.Logger
}

// NewProcessChatUseCase создает новый экземпляр ProcessChatUseCase.
func NewProcessChatUseCase(
	cfg *config.Config,
	parser ports.Parser,
	cacheStore *cache.CacheStore,
	logger *slog.Logger,
) *ProcessChatUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessChatUseCase{
		cfg:        cfg,
		parser:     parser,
		cacheStore: cacheStore,
		log:        logger,
	}
}

// ProcessChat разбирает загруженные данные (текст или .zip экспорта).
// Результат кешируется по хешу содержимого и опций.
func (uc *ProcessChatUseCase) ProcessChat(ctx context.Context, data []byte, opts domain.Options) (*domain.ParseResult, error) {
	ds := source.NewMemorySource(data)
	text, err := ds.Fetch()
	if err != nil {
		return nil, fmt.Errorf("не удалось извлечь данные: %w", err)
	}

	key := cache.CalculateKey(text, opts)
	if cachedItem, found := uc.cacheStore.Get(key); found {
		uc.log.InfoContext(ctx, "Попадание в кеш", "hash", key)
		return cachedItem.Result, nil
	}

	result, err := uc.parser.Parse(ctx, text, opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось разобрать экспорт: %w", err)
	}
	uc.log.InfoContext(ctx, "Разобран чат",
		"rows", result.Table.Len(),
		"platform", result.Diagnostics.Platform,
		"language", result.Diagnostics.Language,
		"malformed", result.Diagnostics.MalformedCount(),
		"pruned", result.Diagnostics.Pruned,
	)

	ttl := uc.cfg.Processing.CacheTTL
	uc.cacheStore.Put(key, result, ttl)
	uc.log.DebugContext(ctx, "Результат кеширован", "hash", key, "ttl", ttl.String())

	return result, nil
}
