package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	latestKey     = "market:overview:latest"
	updateChannel = "market.updates"
)

// RedisSnapshots keeps the last broadcast message in Redis and publishes every
// new one so other processes can follow the feed.
type RedisSnapshots struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSnapshots(client *redis.Client, ttl time.Duration) *RedisSnapshots {
	return &RedisSnapshots{client: client, ttl: ttl}
}

// Store saves payload as the latest snapshot and publishes it.
func (r *RedisSnapshots) Store(ctx context.Context, payload []byte) error {
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, latestKey, payload, r.ttl)
	pipe.Publish(ctx, updateChannel, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// Latest returns the last stored snapshot, or nil if there is none.
func (r *RedisSnapshots) Latest(ctx context.Context) ([]byte, error) {
	b, err := r.client.Get(ctx, latestKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return b, nil
}

// Follow delivers every published snapshot to onMessage until ctx is done.
func (r *RedisSnapshots) Follow(ctx context.Context, onMessage func(payload []byte)) error {
	ps := r.client.Subscribe(ctx, updateChannel)
	defer ps.Close()
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", updateChannel, err)
	}
	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			onMessage([]byte(msg.Payload))
		}
	}
}

func (r *RedisSnapshots) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisSnapshots) Close() error {
	return r.client.Close()
}
