package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"stark_bridge/internal/models"
	"stark_bridge/pkg/logger"
	"stark_bridge/pkg/metrics"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultTTL = 10 * time.Minute
	// fetchTimeout: запрос живёт отдельно от контекста первого вызова, ждущие не получают чужую отмену
	fetchTimeout = 20 * time.Second
)

type Fetcher interface {
	GetMarket(ctx context.Context, name string) (*models.Market, error)
}

type entry struct {
	market    *models.Market
	expiresAt time.Time
}

// Cache: метаданные рынков с TTL. Параллельные промахи по одному рынку дают один запрос к бирже.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
}

func NewCache(fetcher Fetcher, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// WithClock подменяет часы, нужно тестам.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

func (c *Cache) lookup(name string) (*models.Market, bool) {
	c.mu.RLock()
	e, ok := c.entries[name]
	c.mu.RUnlock()
	if ok && c.now().Before(e.expiresAt) {
		return e.market, true
	}
	return nil, false
}

// Get отдаёт рынок из кеша или обновляет запись. Закешированный *Market не меняется, его можно делить.
func (c *Cache) Get(ctx context.Context, name string) (*models.Market, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty market name", models.ErrUnknownMarket)
	}

	if m, ok := c.lookup(name); ok {
		metrics.MarketCacheHit()
		return m, nil
	}
	metrics.MarketCacheMiss()

	v, err, _ := c.group.Do(name, func() (any, error) {
		// пока ждали, запись мог обновить соседний вызов
		if m, ok := c.lookup(name); ok {
			return m, nil
		}

		metrics.MarketCacheRefresh()
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		m, err := c.fetcher.GetMarket(fctx, name)
		if err != nil {
			return nil, err
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", models.ErrUnknownMarket, err)
		}

		c.mu.Lock()
		c.entries[name] = entry{market: m, expiresAt: c.now().Add(c.ttl)}
		c.mu.Unlock()

		logger.Debug("market %s refreshed, ttl %s", name, c.ttl)
		return m, nil
	})
	if err != nil {
		return nil, fmt.Errorf("market %s: %w", name, err)
	}
	return v.(*models.Market), nil
}

// Invalidate выкидывает рынок из кеша.
func (c *Cache) Invalidate(name string) {
	c.mu.Lock()
	delete(c.entries, strings.TrimSpace(name))
	c.mu.Unlock()
}
