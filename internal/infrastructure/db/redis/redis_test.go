package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigOptions(t *testing.T) {
	opts, err := Config{Addr: "cache:6379", DB: 2, PoolSize: 5}.options()
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 5, opts.PoolSize)

	opts, err = Config{URL: "redis://:secret@redis.internal:6380/3", Addr: "ignored:1"}.options()
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6380", opts.Addr)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, "secret", opts.Password)

	_, err = Config{URL: "http://not-redis"}.options()
	assert.Error(t, err)
}

func TestKeysShareNamespace(t *testing.T) {
	assert.Equal(t, "marketplace:handled:index-listing:e1", handledKey("index-listing", "e1"))
	assert.Equal(t, "marketplace:listing:l1", docKey("l1"))
	assert.Equal(t, "marketplace:listing-tag:bikes", tagKey("Bikes"))
}
