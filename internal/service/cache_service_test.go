package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
)

func TestCacheServiceInvalidatePublished(t *testing.T) {
	metrics := NewMetricsService()
	cache := NewCacheService(repository.NewMemoryCacheRepository(time.Minute, time.Minute), metrics, time.Minute, zap.NewNop(), true)
	ctx := context.Background()
	g1 := models.GroupKey{Year: "Y1", Group: "G1"}
	g2 := models.GroupKey{Year: "Y1", Group: "G2"}

	require.NoError(t, cache.Set(ctx, publishedGroupCacheKey(g1), map[string]string{"v": "1"}, 0))
	require.NoError(t, cache.Set(ctx, publishedGroupCacheKey(g2), map[string]string{"v": "2"}, 0))
	require.NoError(t, cache.Set(ctx, professorCacheKey("P1"), map[string]string{"v": "p"}, 0))

	cache.InvalidatePublished(ctx, g1)

	var dest map[string]string
	hit, err := cache.Get(ctx, publishedGroupCacheKey(g1), &dest)
	require.NoError(t, err)
	assert.False(t, hit)
	hit, _ = cache.Get(ctx, professorCacheKey("P1"), &dest)
	assert.False(t, hit)
	hit, _ = cache.Get(ctx, publishedGroupCacheKey(g2), &dest)
	assert.True(t, hit, "other groups keep their cached view")

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(2), snapshot.CacheMisses)
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	var nilCache *CacheService
	hit, err := nilCache.Get(context.Background(), "k", &struct{}{})
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, nilCache.Set(context.Background(), "k", 1, 0))
	nilCache.InvalidatePublished(context.Background(), models.GroupKey{Year: "Y1", Group: "G1"})

	disabled := NewCacheService(repository.NewMemoryCacheRepository(time.Minute, time.Minute), nil, 0, nil, false)
	assert.False(t, disabled.Enabled())
}
