package redisclient

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"estimate-service/internal/util"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:embed scripts/release_lock.lua
var releaseLockScript string

// ErrLockTimeout is returned when a lock could not be acquired before the deadline
var ErrLockTimeout = errors.New("timed out waiting for lock")

const catalogCacheKey = "catalog:standard-prices"

type Client struct {
	rdb           *redis.Client
	releaseScript *redis.Script
	lockTTL       time.Duration
	lockWait      time.Duration
	retryEvery    time.Duration
	logger        *zap.Logger
}

// NewClient creates a new Redis client and verifies the connection
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewClientWithRedis(rdb), nil
}

// NewClientWithRedis wraps an existing go-redis client
func NewClientWithRedis(rdb *redis.Client) *Client {
	return &Client{
		rdb:           rdb,
		releaseScript: redis.NewScript(releaseLockScript),
		lockTTL:       10 * time.Second,
		lockWait:      5 * time.Second,
		retryEvery:    50 * time.Millisecond,
		logger:        util.GetLogger(),
	}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Lock blocks until the distributed lock for key is held, the wait deadline
// passes, or ctx is done. The returned func releases the lock only if this
// holder still owns it.
func (c *Client) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := fmt.Sprintf("lock:%s", key)
	token := uuid.NewString()
	deadline := time.Now().Add(c.lockWait)

	for {
		ok, err := c.rdb.SetNX(ctx, lockKey, token, c.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return func() { c.release(lockKey, token) }, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryEvery):
		}
	}
}

// release deletes lockKey if token still owns it. A failure leaves the
// key to expire with its TTL.
func (c *Client) release(lockKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.releaseScript.Run(ctx, c.rdb, []string{lockKey}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn("Failed to release lock",
			zap.String("key", lockKey),
			zap.Duration("expires_within", c.lockTTL),
			zap.Error(err))
	}
}

// GetCatalog returns the cached catalog payload; ok is false on a miss
func (c *Client) GetCatalog(ctx context.Context) (data []byte, ok bool, err error) {
	data, err = c.rdb.Get(ctx, catalogCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// SetCatalog caches the catalog payload with a TTL
func (c *Client) SetCatalog(ctx context.Context, data []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, catalogCacheKey, data, ttl).Err()
}

// InvalidateCatalog drops the cached catalog
func (c *Client) InvalidateCatalog(ctx context.Context) error {
	return c.rdb.Del(ctx, catalogCacheKey).Err()
}
