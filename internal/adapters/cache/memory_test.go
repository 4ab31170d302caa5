package cache

import (
	"context"
	"testing"
	"time"

	"github.com/feriahub/marketplace-backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(25 * time.Millisecond)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheDeletePrefix(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	pending := domain.StatusPending
	require.NoError(t, c.Set(ctx, ListKey(&pending, 20, 0), []byte("page1"), time.Minute))
	require.NoError(t, c.Set(ctx, ListKey(nil, 20, 20), []byte("page2"), time.Minute))
	require.NoError(t, c.Set(ctx, ApplicationKey(primitive.NewObjectID()), []byte("app"), time.Minute))

	require.NoError(t, c.DeletePrefix(ctx, ListKeyPrefix))

	_, ok, _ := c.Get(ctx, ListKey(&pending, 20, 0))
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, ListKey(nil, 20, 20))
	assert.False(t, ok)
}

func TestKeys(t *testing.T) {
	id := primitive.NewObjectID()
	assert.Equal(t, "application:"+id.Hex(), ApplicationKey(id))
	assert.Equal(t, "principal:"+id.Hex(), PrincipalKey(id))

	approved := domain.StatusApproved
	assert.Equal(t, "applications:status=approved:limit=10:skip=20", ListKey(&approved, 10, 20))
	assert.Equal(t, "applications:status=all:limit=0:skip=0", ListKey(nil, 0, 0))
}
