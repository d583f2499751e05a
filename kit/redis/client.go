package redis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	goRedis "github.com/redis/go-redis/v9"
)

// Script is a lua script whose sha is computed once. Eval tries EVALSHA first
// and only ships the source when the server has not cached it yet.
type Script struct {
	script *goRedis.Script
}

func CreateScript(src string) *Script {
	return &Script{script: goRedis.NewScript(src)}
}

type Cache struct {
	redisClient *goRedis.Client
}

type cacheOption func(*goRedis.Options)

func WithDialTimeout(timeout time.Duration) cacheOption {
	return func(o *goRedis.Options) {
		o.DialTimeout = timeout
	}
}

func WithPoolSize(size int) cacheOption {
	return func(o *goRedis.Options) {
		o.PoolSize = size
	}
}

func CreateCache(ctx context.Context, address, password string, dbSelect int, options ...cacheOption) (*Cache, error) {
	redisOptions := &goRedis.Options{
		Addr:     address,
		Password: password,
		DB:       dbSelect,
	}
	for _, option := range options {
		option(redisOptions)
	}
	redisClient := goRedis.NewClient(redisOptions)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, errors.Wrapf(err, "redis connect to %s failed", address)
	}
	return &Cache{redisClient: redisClient}, nil
}

func (cache *Cache) Eval(ctx context.Context, script *Script, keys []string, args ...interface{}) ([]interface{}, error) {
	result, err := script.script.Run(ctx, cache.redisClient, keys, args...).Slice()
	if err != nil {
		return nil, errors.Wrap(err, "eval script failed")
	}
	return result, nil
}

func (cache *Cache) Close() error {
	return cache.redisClient.Close()
}
