package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"gmao-system/internal/repositories"
	"gmao-system/pkg/constants"
)

// BaseService - общий кэш для сервисов. Ошибки кэша не фатальны: пишем в лог и идём в БД.
type BaseService struct {
	cache  repositories.CacheRepositoryInterface
	ttl    time.Duration
	logger *zap.Logger
}

func NewBaseService(cache repositories.CacheRepositoryInterface, ttl time.Duration, logger *zap.Logger) *BaseService {
	return &BaseService{cache: cache, ttl: ttl, logger: logger}
}

// CacheGet получает данные из кэша
func (s *BaseService) CacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s == nil || s.cache == nil {
		return false
	}
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repositories.ErrCacheMiss) {
			s.logger.Warn("Ошибка чтения кэша", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(cached), dest); err != nil {
		s.logger.Warn("Повреждённые данные в кэше", zap.String("key", key), zap.Error(err))
		return false
	}
	s.logger.Debug("Данные получены из кэша", zap.String("key", key))
	return true
}

// CacheSet сохраняет данные в кэш
func (s *BaseService) CacheSet(ctx context.Context, key string, data interface{}) {
	if s == nil || s.cache == nil {
		return
	}
	serialized, err := json.Marshal(data)
	if err != nil {
		s.logger.Warn("Не удалось сериализовать данные для кэша", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, serialized, s.ttl); err != nil {
		s.logger.Warn("Ошибка записи в кэш", zap.String("key", key), zap.Error(err))
	}
}

// Generation - текущее поколение связей. Входит в ключи кэша выборок.
func (s *BaseService) Generation(ctx context.Context) int64 {
	if s == nil || s.cache == nil {
		return 0
	}
	val, err := s.cache.Get(ctx, constants.CacheKeyJunctionGeneration)
	if err != nil {
		if !errors.Is(err, repositories.ErrCacheMiss) {
			s.logger.Warn("Ошибка чтения поколения связей", zap.Error(err))
		}
		return 0
	}
	gen, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}
	return gen
}

// BumpGeneration делает все закэшированные выборки устаревшими.
func (s *BaseService) BumpGeneration(ctx context.Context) {
	if s == nil || s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, constants.CacheKeyJunctionGeneration); err != nil {
		s.logger.Warn("Не удалось обновить поколение связей", zap.Error(err))
	}
}
