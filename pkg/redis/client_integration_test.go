//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"profile-service/internal/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := goredis.ParseURL(uri)
	require.NoError(t, err)

	rdb := goredis.NewClient(opts)
	require.NoError(t, rdb.Ping(ctx).Err())
	t.Cleanup(func() { _ = rdb.Close() })

	return Wrap(rdb, time.Minute)
}

func TestAddressCache(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, gen, err := c.CachedAddresses(ctx, 7)
	require.ErrorIs(t, err, ErrMiss)
	require.Zero(t, gen)

	list := []models.AddressView{{ID: 1, City: "Tehran", Line: "Valiasr", PostalCode: "1"}}
	require.NoError(t, c.CacheAddresses(ctx, 7, gen, list))

	got, _, err := c.CachedAddresses(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, list, got)

	ttl, err := c.rdb.TTL(ctx, addressesKey(7)).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.InvalidateAddresses(ctx, 7))
	_, gen, err = c.CachedAddresses(ctx, 7)
	require.ErrorIs(t, err, ErrMiss)
	require.Equal(t, int64(1), gen)
}

func TestAddressCacheRefusesFillAfterInvalidation(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, gen, err := c.CachedAddresses(ctx, 7)
	require.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.InvalidateAddresses(ctx, 7))
	old := []models.AddressView{{ID: 1, City: "Tehran", Line: "Valiasr"}}
	require.ErrorIs(t, c.CacheAddresses(ctx, 7, gen, old), ErrStale)

	_, gen, err = c.CachedAddresses(ctx, 7)
	require.ErrorIs(t, err, ErrMiss)
	require.NoError(t, c.CacheAddresses(ctx, 7, gen, nil))
	got, _, err := c.CachedAddresses(ctx, 7)
	require.NoError(t, err)
	require.Empty(t, got)
}
