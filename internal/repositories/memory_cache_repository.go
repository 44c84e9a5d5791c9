package repositories

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryCacheRepository - кеш в памяти процесса (CACHE_DRIVER=memory).
// TTL общий для всех ключей и задаётся при создании; expiration в Set игнорируется.
// Счётчики Incr живут отдельно от LRU и не вытесняются.
type MemoryCacheRepository struct {
	mu       sync.Mutex
	cache    *expirable.LRU[string, string]
	counters map[string]int64
}

func NewMemoryCacheRepository(size int, ttl time.Duration) CacheRepositoryInterface {
	if size <= 0 {
		size = 1024
	}
	return &MemoryCacheRepository{
		cache:    expirable.NewLRU[string, string](size, nil, ttl),
		counters: make(map[string]int64),
	}
}

func (r *MemoryCacheRepository) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	counter, isCounter := r.counters[key]
	r.mu.Unlock()
	if isCounter {
		return strconv.FormatInt(counter, 10), nil
	}

	val, ok := r.cache.Get(key)
	if !ok {
		return "", ErrCacheMiss
	}
	return val, nil
}

func (r *MemoryCacheRepository) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	r.mu.Lock()
	delete(r.counters, key)
	r.mu.Unlock()

	switch v := value.(type) {
	case string:
		r.cache.Add(key, v)
	case []byte:
		r.cache.Add(key, string(v))
	default:
		r.cache.Add(key, fmt.Sprint(v))
	}
	return nil
}

func (r *MemoryCacheRepository) Del(_ context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		delete(r.counters, key)
		r.cache.Remove(key)
	}
	return nil
}

// Incr - счётчик вне LRU; если ключ уже лежит в кеше строкой, продолжает с его значения.
func (r *MemoryCacheRepository) Incr(_ context.Context, key string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.counters[key]
	if !ok {
		if val, cached := r.cache.Get(key); cached {
			parsed, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("значение ключа %s не число: %w", key, err)
			}
			current = parsed
			r.cache.Remove(key)
		}
	}
	current++
	r.counters[key] = current
	return current, nil
}
