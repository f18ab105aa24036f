package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"whatsapp-chat-parser/internal/domain"
)

// CacheItem представляет кэшированный результат разбора
type CacheItem struct {
	Result    *domain.ParseResult
	ExpiresAt time.Time
}

// CacheStore управляет хранением и извлечением кэшированных результатов
type CacheStore struct {
	cache map[string]*CacheItem
	mutex sync.RWMutex
}

// NewCacheStore создает новый экземпляр CacheStore
func NewCacheStore() *CacheStore {
	return &CacheStore{
		cache: make(map[string]*CacheItem),
	}
}

// Get извлекает кэшированный элемент по его ключу (хешу)
func (cs *CacheStore) Get(key string) (*CacheItem, bool) {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	item, exists := cs.cache[key]
	if !exists || time.Now().After(item.ExpiresAt) {
		// Элемент не существует или срок его действия истек
		return nil, false
	}

	return item, true
}

// Put сохраняет элемент в кэш с указанным сроком действия
func (cs *CacheStore) Put(key string, result *domain.ParseResult, ttl time.Duration) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	cs.cache[key] = &CacheItem{
		Result:    result,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// Len возвращает количество элементов, включая еще не удаленные просроченные
func (cs *CacheStore) Len() int {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()
	return len(cs.cache)
}

// CleanupExpired удаляет просроченные элементы из кэша
func (cs *CacheStore) CleanupExpired() {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	now := time.Now()
	for key, item := range cs.cache {
		if now.After(item.ExpiresAt) {
			delete(cs.cache, key)
		}
	}
}

// StartCleanupTicker запускает таймер для периодической очистки просроченных элементов
func (cs *CacheStore) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cs.CleanupExpired()
			}
		}
	}()
}

// CalculateKey вычисляет ключ кэша: SHA256 содержимого экспорта и опций разбора.
// Один и тот же файл, разобранный с разными опциями, дает разные ключи.
func CalculateKey(data []byte, opts domain.Options) string {
	hasher := sha256.New()
	hasher.Write(data)
	hasher.Write([]byte{0})
	fmt.Fprint(hasher, optionsFingerprint(opts))
	return hex.EncodeToString(hasher.Sum(nil))
}

func optionsFingerprint(opts domain.Options) string {
	consent := "<nil>"
	if opts.ConsentText != nil {
		consent = fmt.Sprintf("%q", *opts.ConsentText)
	}
	location := time.UTC.String()
	if opts.Location != nil {
		location = opts.Location.String()
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%q|%q|%s|%t|%s",
		opts.Platform, opts.Language, opts.SmileyStrategy, opts.URLMode, opts.AnonMode, opts.Order,
		opts.NewlinePlaceholder, opts.MediaOmittedPlaceholder, consent, opts.AnonymizeMentions, location)
}
