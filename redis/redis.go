// Package redis implements the cache-tier calendar repository over a
// Redis key/value store: dehydrated calendars as JSON blobs, relation
// records as JSON link sets, and watch-based optimistic concurrency on
// writes. Component entities live in a backing store and are reached
// through the ComponentStore delegation interface.
package redis

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int

	// TLSConfig enables TLS when non-nil.
	TLSConfig *tls.Config
}

// Open connects to Redis and verifies the connection with a ping.
func Open(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:      opts.Addr,
		Password:  opts.Password,
		DB:        opts.DB,
		TLSConfig: opts.TLSConfig,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
