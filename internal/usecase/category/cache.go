package category

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/repository"
	"github.com/workmatch/marketplace-backend/internal/goroutine"
)

const (
	listActiveKey = "categories:active"
	listAllKey    = "categories:all"
)

// Cache кэширует категории в памяти с TTL.
// Все изменения категорий проходят через Invalidate.
type Cache struct {
	repo repository.CategoryRepository
	ttl  time.Duration

	mu      sync.RWMutex
	entries map[string]*cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	data      interface{}
	expiresAt time.Time
}

func NewCache(repo repository.CategoryRepository, ttl time.Duration) *Cache {
	return &Cache{
		repo:    repo,
		ttl:     ttl,
		entries: make(map[string]*cacheEntry),
		now:     time.Now,
	}
}

func categoryKey(id uuid.UUID) string {
	return "category:" + id.String()
}

func (c *Cache) lookup(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.data, true
}

func (c *Cache) store(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &cacheEntry{data: value, expiresAt: c.now().Add(c.ttl)}
}

// Get возвращает категорию по id. Ошибки репозитория не кэшируются.
func (c *Cache) Get(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	key := categoryKey(id)
	if v, ok := c.lookup(key); ok {
		cp := *v.(*entity.Category)
		return &cp, nil
	}

	category, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cp := *category
	c.store(key, &cp)
	return category, nil
}

func (c *Cache) List(ctx context.Context, onlyActive bool) ([]*entity.Category, error) {
	key := listAllKey
	if onlyActive {
		key = listActiveKey
	}
	if v, ok := c.lookup(key); ok {
		return copyCategories(v.([]*entity.Category)), nil
	}

	categories, err := c.repo.List(ctx, onlyActive)
	if err != nil {
		return nil, err
	}
	c.store(key, copyCategories(categories))
	return categories, nil
}

func copyCategories(src []*entity.Category) []*entity.Category {
	out := make([]*entity.Category, len(src))
	for i, category := range src {
		cp := *category
		out[i] = &cp
	}
	return out
}

// Invalidate сбрасывает запись категории и все закэшированные списки.
func (c *Cache) Invalidate(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, categoryKey(id))
	for key := range c.entries {
		if strings.HasPrefix(key, "categories:") {
			delete(c.entries, key)
		}
	}
}

// RunCleanup периодически удаляет просроченные записи до отмены ctx.
func (c *Cache) RunCleanup(ctx context.Context, interval time.Duration) {
	goroutine.SafeGoWithContext(ctx, func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.evictExpired()
			}
		}
	})
}

func (c *Cache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}
