// Package catalog serves board variants from PostgreSQL with Redis as a
// cache-aside layer in front of it.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iamasit07/4-in-a-row/arena/internal/domain"
)

const (
	variantKeyPrefix = "variant:"
	allVariantsKey   = "variants:all"
	cacheTTL         = 10 * time.Minute
)

type Repository interface {
	CreateVariant(ctx context.Context, v domain.Variant) error
	GetVariant(ctx context.Context, name string) (domain.Variant, error)
	ListVariants(ctx context.Context) ([]domain.Variant, error)
}

// Cache is optional. Any error from it, a miss included, falls through to
// the repository.
type Cache interface {
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, keys ...string) error
}

type Service struct {
	repo   Repository
	cache  Cache
	logger *zap.Logger
}

func NewService(repo Repository, cache Cache, logger *zap.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

func (s *Service) Get(ctx context.Context, name string) (domain.Variant, error) {
	key := variantKeyPrefix + name
	var v domain.Variant
	if s.fromCache(ctx, key, &v) {
		return v, nil
	}

	v, err := s.repo.GetVariant(ctx, name)
	if err != nil {
		return domain.Variant{}, err
	}
	s.toCache(ctx, key, v)
	return v, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Variant, error) {
	var vs []domain.Variant
	if s.fromCache(ctx, allVariantsKey, &vs) {
		return vs, nil
	}

	vs, err := s.repo.ListVariants(ctx)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, allVariantsKey, vs)
	return vs, nil
}

// Create validates and stores a new variant, then drops the cached list.
func (s *Service) Create(ctx context.Context, v domain.Variant) (domain.Variant, error) {
	if err := v.Validate(); err != nil {
		return domain.Variant{}, err
	}
	if err := s.repo.CreateVariant(ctx, v); err != nil {
		return domain.Variant{}, err
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, allVariantsKey, variantKeyPrefix+v.Name); err != nil {
			s.logger.Warn("variant cache invalidation failed", zap.Error(err))
		}
	}
	s.logger.Info("variant created", zap.String("variant", v.Name),
		zap.Int("columns", v.Columns), zap.Int("rows", v.Rows), zap.Int("connect", v.Connect))
	return v, nil
}

func (s *Service) fromCache(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("dropping unreadable cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Service) toCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err == nil {
		err = s.cache.Set(ctx, key, data, cacheTTL)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("variant cache write failed", zap.String("key", key), zap.Error(err))
	}
}
