package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "paylink:webhook:seen:"

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedis connects and pings once so a bad address fails at startup.
func NewRedis(ctx context.Context, o RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        o.Addr,
		Password:    o.Password,
		DB:          o.DB,
		DialTimeout: 2 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", o.Addr, err)
	}
	return &Redis{client: client, ttl: o.TTL}, nil
}

func (r *Redis) Seen(ctx context.Context, eventID string) (bool, error) {
	_, err := r.client.Get(ctx, keyPrefix+eventID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) MarkSeen(ctx context.Context, eventID string) error {
	return r.client.SetNX(ctx, keyPrefix+eventID, time.Now().UTC().Format(time.RFC3339), r.ttl).Err()
}

func (r *Redis) Close() error { return r.client.Close() }
