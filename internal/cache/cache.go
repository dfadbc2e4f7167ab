package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	KeyCatalogList = "catalog:list"
	KeyAdminStats  = "admin:stats"
)

type Redis struct {
	client *redis.Client
}

func New(addr string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Redis{client: client}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return value, true
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) {
	r.client.Set(ctx, key, value, ttl)
}

func (r *Redis) Delete(ctx context.Context, keys ...string) {
	r.client.Del(ctx, keys...)
}

func (r *Redis) Close() error {
	return r.client.Close()
}
