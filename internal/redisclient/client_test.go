package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func unreachableClient() *Client {
	return NewClientWithRedis(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	}))
}

func TestReleaseScriptEmbedded(t *testing.T) {
	assert.Contains(t, releaseLockScript, `redis.call("DEL", KEYS[1])`)
}

func TestLockFailsWithoutRedis(t *testing.T) {
	c := unreachableClient()
	defer c.Close()

	unlock, err := c.Lock(context.Background(), "standard-price:욕실:욕실수전")
	require.Error(t, err)
	assert.Nil(t, unlock)
	assert.Contains(t, err.Error(), "acquire lock")
}

func TestCatalogCacheErrorsWithoutRedis(t *testing.T) {
	c := unreachableClient()
	defer c.Close()

	_, ok, err := c.GetCatalog(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestReleaseFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	c := unreachableClient()
	defer c.Close()
	c.logger = zap.New(core)

	c.release("lock:standard-price:욕실:욕실수전", "token")

	entries := logs.FilterMessage("Failed to release lock").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "lock:standard-price:욕실:욕실수전", entries[0].ContextMap()["key"])
}
