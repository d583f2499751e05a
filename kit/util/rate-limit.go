package util

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	redisKit "github.com/superj80820/session-auth/kit/redis"
)

var fixedWindowScript = redisKit.CreateScript(`
	local key = KEYS[1]
	local requests = tonumber(redis.call('GET', key) or '-1')
	local max_requests = tonumber(ARGV[1])
	local expiry = tonumber(ARGV[2])
	if (requests == -1) then
		redis.call('INCR', key)
		redis.call('EXPIRE', key, expiry)
		return {1, 1, expiry}
	end

	local cur_expiry = tonumber(redis.call('TTL', key) or '-1')
	if (requests < max_requests) then
		redis.call('INCR', key)
		return {1, requests + 1, cur_expiry}
	else
		return {0, requests, cur_expiry}
	end
`)

// CacheRateLimit is a fixed window counter kept in redis, so every replica
// shares one budget per key.
type CacheRateLimit struct {
	cache       *redisKit.Cache
	keyPrefix   string
	maxRequests int
	expiry      int
}

type CacheRateLimitOption func(*CacheRateLimit)

func WithKeyPrefix(prefix string) CacheRateLimitOption {
	return func(c *CacheRateLimit) {
		c.keyPrefix = prefix
	}
}

func CreateCacheRateLimit(cache *redisKit.Cache, maxRequests int, window time.Duration, options ...CacheRateLimitOption) *CacheRateLimit {
	expiry := int(window / time.Second)
	if expiry < 1 {
		expiry = 1
	}
	c := &CacheRateLimit{cache: cache, keyPrefix: "rate-limit:", maxRequests: maxRequests, expiry: expiry}
	for _, option := range options {
		option(c)
	}
	return c
}

// Pass consumes one request of key's window. lastRequests is what remains of
// the budget and curExpiry the seconds until the window resets.
func (c *CacheRateLimit) Pass(ctx context.Context, key string) (pass bool, lastRequests, curExpiry int, err error) {
	result, err := c.cache.Eval(ctx, fixedWindowScript, []string{c.keyPrefix + key}, c.maxRequests, c.expiry)
	if err != nil {
		return false, 0, 0, errors.Wrap(err, "run fixed window script failed")
	}
	if len(result) != 3 {
		return false, 0, 0, errors.New(fmt.Sprintf("unexpected lua result length=%d", len(result)))
	}
	pass, err = toBool(result[0])
	if err != nil {
		return false, 0, 0, errors.Wrap(err, "convert result failed")
	}
	curRequests, ok := result[1].(int64)
	if !ok {
		return false, 0, 0, errors.New(fmt.Sprintf("unexpected type=%T for requests", result[1]))
	}
	expiry, ok := result[2].(int64)
	if !ok {
		return false, 0, 0, errors.New(fmt.Sprintf("unexpected type=%T for expiry", result[2]))
	}
	return pass, c.maxRequests - int(curRequests), int(expiry), nil
}

func toBool(val interface{}) (bool, error) {
	if val == nil {
		return false, nil
	}

	switch val := val.(type) {
	case bool:
		return val, nil
	case int64:
		return val != 0, nil
	case string:
		return strconv.ParseBool(val)
	default:
		return false, errors.New(fmt.Sprintf("unexpected type=%T for Bool", val))
	}
}
