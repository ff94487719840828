package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

func TestCacheRepositoryNamespacesKeys(t *testing.T) {
	repo := NewCacheRepository(nil, "sma-timetable:", nil)
	assert.Equal(t, "sma-timetable:published:Y1:G1", repo.key("published:Y1:G1"))

	bare := NewCacheRepository(nil, "", nil)
	assert.Equal(t, "published:Y1:G1", bare.key("published:Y1:G1"))
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "ns", nil)
	ctx := context.Background()

	var dest map[string]string
	assert.ErrorIs(t, repo.Get(ctx, "k", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "k", map[string]string{"a": "b"}, 0))
	assert.NoError(t, repo.DeleteByPattern(ctx, "professor:*"))
	assert.NoError(t, repo.Close())
}
