package catalog

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iamasit07/4-in-a-row/arena/internal/domain"
	"github.com/iamasit07/4-in-a-row/arena/internal/repository/postgres"
	"github.com/iamasit07/4-in-a-row/arena/internal/repository/redis"
)

type memRepo struct {
	variants map[string]domain.Variant
	gets     int
	lists    int
}

func newMemRepo(vs ...domain.Variant) *memRepo {
	r := &memRepo{variants: map[string]domain.Variant{}}
	for _, v := range vs {
		r.variants[v.Name] = v
	}
	return r
}

func (r *memRepo) CreateVariant(_ context.Context, v domain.Variant) error {
	if _, ok := r.variants[v.Name]; ok {
		return postgres.ErrConflict
	}
	r.variants[v.Name] = v
	return nil
}

func (r *memRepo) GetVariant(_ context.Context, name string) (domain.Variant, error) {
	r.gets++
	v, ok := r.variants[name]
	if !ok {
		return domain.Variant{}, postgres.ErrNotFound
	}
	return v, nil
}

func (r *memRepo) ListVariants(context.Context) ([]domain.Variant, error) {
	r.lists++
	vs := []domain.Variant{}
	for _, v := range r.variants {
		vs = append(vs, v)
	}
	return vs, nil
}

func newCache(t *testing.T) *redis.RedisCache {
	t.Helper()
	srv := miniredis.RunT(t)
	cache, err := redis.Connect(context.Background(), srv.Addr(), "", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestGetServesFromCache(t *testing.T) {
	repo := newMemRepo(domain.Classic)
	svc := NewService(repo, newCache(t), zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		v, err := svc.Get(ctx, "classic")
		require.NoError(t, err)
		assert.Equal(t, domain.Classic, v)
	}
	assert.Equal(t, 1, repo.gets)
}

func TestGetWithoutCache(t *testing.T) {
	repo := newMemRepo(domain.Classic)
	svc := NewService(repo, nil, zap.NewNop())

	_, err := svc.Get(context.Background(), "classic")
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), "classic")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.gets)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, postgres.ErrNotFound)
}

func TestCreateInvalidatesList(t *testing.T) {
	repo := newMemRepo(domain.Classic)
	svc := NewService(repo, newCache(t), zap.NewNop())
	ctx := context.Background()

	vs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, vs, 1)

	tiny := domain.Variant{Name: "tiny", Columns: 3, Rows: 2, Connect: 3}
	_, err = svc.Create(ctx, tiny)
	require.NoError(t, err)

	vs, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, vs, 2)
	assert.Equal(t, 2, repo.lists)
}

func TestCreateValidates(t *testing.T) {
	svc := NewService(newMemRepo(), nil, zap.NewNop())

	_, err := svc.Create(context.Background(), domain.Variant{Name: "huge", Columns: 17, Rows: 6, Connect: 4})
	assert.ErrorIs(t, err, domain.ErrInvalidVariant)

	_, err = svc.Create(context.Background(), domain.Variant{Name: "long", Columns: 7, Rows: 6, Connect: 8})
	assert.ErrorIs(t, err, domain.ErrInvalidVariant)
}
