// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RelayChannel is the Redis pub/sub channel snapshots travel on.
const RelayChannel = "livepoll:survey-results"

// RedisRelay fans snapshots out to every server instance subscribed to
// RelayChannel.
type RedisRelay struct {
	client *redis.Client

	mu     sync.Mutex
	pubsub *redis.PubSub
	done   chan struct{}
}

func NewRedisRelay(client *redis.Client) *RedisRelay {
	return &RedisRelay{client: client}
}

// NewRedisClient parses a redis:// or rediss:// URL and checks the
// server is reachable.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (r *RedisRelay) Publish(ctx context.Context, key RoomKey, frame []byte) error {
	msg, err := encodeRelay(key, frame)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, RelayChannel, msg).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", RelayChannel, err)
	}
	return nil
}

// Start subscribes to RelayChannel and calls deliver for every message
// until Close. It returns once the subscription is confirmed.
func (r *RedisRelay) Start(ctx context.Context, deliver func(RoomKey, []byte)) error {
	pubsub := r.client.Subscribe(ctx, RelayChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("subscribe to %s: %w", RelayChannel, err)
	}

	r.mu.Lock()
	r.pubsub = pubsub
	r.done = make(chan struct{})
	done := r.done
	r.mu.Unlock()

	go func() {
		defer close(done)
		for msg := range pubsub.Channel() {
			key, frame, err := decodeRelay([]byte(msg.Payload))
			if err != nil {
				slog.Warn("dropping relay message", "error", err)
				continue
			}
			deliver(key, frame)
		}
	}()

	slog.Info("redis relay subscribed", "channel", RelayChannel)
	return nil
}

// Close stops the subscriber and closes the client.
func (r *RedisRelay) Close() error {
	r.mu.Lock()
	pubsub, done := r.pubsub, r.done
	r.pubsub = nil
	r.mu.Unlock()

	if pubsub != nil {
		if err := pubsub.Close(); err != nil {
			slog.Warn("failed to close redis subscription", "error", err)
		}
		<-done
	}
	return r.client.Close()
}
