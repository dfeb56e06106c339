// Package redis backs event deduplication and the listing search index with
// Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// Config selects the server. URL, when set, wins over Addr and DB.
type Config struct {
	URL      string
	Addr     string
	DB       int
	PoolSize int
}

func (c Config) options() (*redis.Options, error) {
	if c.URL != "" {
		opts, err := redis.ParseURL(c.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		if c.PoolSize > 0 {
			opts.PoolSize = c.PoolSize
		}
		return opts, nil
	}
	return &redis.Options{Addr: c.Addr, DB: c.DB, PoolSize: c.PoolSize}, nil
}

// Connect opens a client and pings it; an unreachable server is a startup
// error rather than a silent fallback.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return client, nil
}

// Every key this service writes lives under the marketplace: namespace so the
// server can be shared.
const namespace = "marketplace:"

func handledKey(handler, eventID string) string {
	return namespace + "handled:" + handler + ":" + eventID
}
