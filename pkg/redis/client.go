package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"profile-service/internal/models"
	"profile-service/pkg/logger"
)

const connectAttempts = 20

var (
	// ErrMiss is returned by CachedAddresses when nothing is cached for the caller.
	ErrMiss = errors.New("redis: cache miss")
	// ErrStale is returned by CacheAddresses when the list was invalidated
	// after it was read.
	ErrStale = errors.New("redis: cached list invalidated meanwhile")
)

// Client wraps the Redis connection.
type Client struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewClient connects to Redis with retry.
func NewClient(ctx context.Context, addr, password string, db int, ttl time.Duration, log logger.ILogger) (*Client, error) {
	c := Wrap(goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db}), ttl)
	for i := 0; i < connectAttempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := c.Ping(pingCtx)
		cancel()
		if err == nil {
			log.Info("connected to Redis", logger.String("addr", addr), logger.Duration("ttl", ttl))
			return c, nil
		}
		log.Warning("waiting for Redis", logger.Int("attempt", i+1), logger.Error(err))

		select {
		case <-ctx.Done():
			c.Close()
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	c.Close()
	return nil, fmt.Errorf("redis: failed to connect after %d attempts", connectAttempts)
}

// Wrap uses an existing go-redis client.
func Wrap(rdb *goredis.Client, ttl time.Duration) *Client {
	return &Client{rdb: rdb, ttl: ttl}
}

func addressesKey(uid models.CallerID) string {
	return "addresses:" + strconv.FormatInt(int64(uid), 10)
}

// generationKey counts invalidations of the caller's list. It has no TTL.
func generationKey(uid models.CallerID) string {
	return addressesKey(uid) + ":gen"
}

// CachedAddresses returns the cached list, or ErrMiss, together with the
// current generation. Pass the generation to CacheAddresses when filling
// the cache after a miss.
func (c *Client) CachedAddresses(ctx context.Context, uid models.CallerID) ([]models.AddressView, int64, error) {
	vals, err := c.rdb.MGet(ctx, addressesKey(uid), generationKey(uid)).Result()
	if err != nil {
		return nil, 0, err
	}
	gen, err := parseGeneration(vals[1])
	if err != nil {
		return nil, 0, err
	}
	data, ok := vals[0].(string)
	if !ok {
		return nil, gen, ErrMiss
	}
	var list []models.AddressView
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		return nil, gen, err
	}
	return list, gen, nil
}

// CacheAddresses stores the caller's address list with the configured TTL,
// unless the list was invalidated since gen was read. In that case it
// returns ErrStale and writes nothing.
func (c *Client) CacheAddresses(ctx context.Context, uid models.CallerID, gen int64, list []models.AddressView) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	genKey := generationKey(uid)
	err = c.rdb.Watch(ctx, func(tx *goredis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return err
		}
		if cur != gen {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, addressesKey(uid), data, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, goredis.TxFailedErr) {
		return ErrStale
	}
	return err
}

// InvalidateAddresses drops the caller's cached list and bumps its
// generation so in-flight fills are discarded.
func (c *Client) InvalidateAddresses(ctx context.Context, uid models.CallerID) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(uid))
		pipe.Del(ctx, addressesKey(uid))
		return nil
	})
	return err
}

func parseGeneration(v interface{}) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

// Ping reports whether Redis answers.
func (c *Client) Ping(ctx context.Context) error { return c.rdb.Ping(ctx).Err() }

// Close tears down the Redis connection.
func (c *Client) Close() error { return c.rdb.Close() }
