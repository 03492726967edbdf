package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "titulky:"
	redisOpTimeout   = 2 * time.Second
)

func init() {
	Register("redis", newRedisCache)
}

// redisCache implements Cache on Redis/Valkey with one string key per entry
// and a sorted set tracking recency:
//
//   - {prefix}e:{key} holds the value with a PX expiry that is refreshed on
//     every hit, so entries live TTL past their last access.
//   - {prefix}lru scores each key by its last access in microseconds.
//
// Lua scripts keep the value and its recency score in step. Members whose
// score is older than TTL belong to expired entries and are pruned on Set.
type redisCache struct {
	client  *redis.Client
	ttl     time.Duration
	maxSize int
	onEvict EvictCallback
	logger  Logger
	prefix  string
	lruKey  string
}

// getAndTouch returns the value and refreshes its expiry and recency.
//
// KEYS[1] = entry key, KEYS[2] = LRU sorted set
// ARGV[1] = now µs, ARGV[2] = member, ARGV[3] = TTL ms
var getAndTouch = redis.NewScript(`
local val = redis.call('GET', KEYS[1])
if val then
    redis.call('PEXPIRE', KEYS[1], ARGV[3])
    redis.call('ZADD', KEYS[2], ARGV[1], ARGV[2])
end
return val
`)

// setAndEvict stores the value, records its recency, prunes members of
// expired entries and evicts the least recently used keys above maxSize.
//
// KEYS[1] = entry key, KEYS[2] = LRU sorted set
// ARGV[1] = value, ARGV[2] = now µs, ARGV[3] = member, ARGV[4] = maxSize,
// ARGV[5] = TTL ms, ARGV[6] = entry key prefix, ARGV[7] = expiry cutoff µs
//
// Returns the evicted members.
var setAndEvict = redis.NewScript(`
local member  = ARGV[3]
local maxSize = tonumber(ARGV[4])

redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[5])
redis.call('ZADD', KEYS[2], ARGV[2], member)
redis.call('ZREMRANGEBYSCORE', KEYS[2], '-inf', '(' .. ARGV[7])

local evicted = {}
if maxSize > 0 then
    local size = redis.call('ZCARD', KEYS[2])
    while size > maxSize do
        local oldest = redis.call('ZPOPMIN', KEYS[2], 1)
        if #oldest == 0 then break end
        redis.call('DEL', ARGV[6] .. oldest[1])
        table.insert(evicted, oldest[1])
        size = size - 1
    end
end
return evicted
`)

func newRedisCache(cfg ProviderConfig) (Cache, error) {
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("redis cache requires a positive TTL")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &redisCache{
		client:  client,
		ttl:     cfg.TTL,
		maxSize: cfg.Size,
		onEvict: cfg.OnEvict,
		logger:  cfg.Logger,
		prefix:  prefix,
		lruKey:  prefix + "lru",
	}, nil
}

func (r *redisCache) entryKey(key string) string {
	return r.prefix + "e:" + key
}

func (r *redisCache) logError(msg string, err error) {
	if r.logger != nil {
		r.logger.Error(msg, err)
	}
}

func nowMicros() string {
	return strconv.FormatInt(time.Now().UnixMicro(), 10)
}

func (r *redisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	ttlMs := strconv.FormatInt(r.ttl.Milliseconds(), 10)
	result, err := getAndTouch.Run(ctx, r.client, []string{r.entryKey(key), r.lruKey}, nowMicros(), key, ttlMs).Text()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logError("redis cache Get failed", err)
		}
		return nil, false
	}
	return []byte(result), true
}

func (r *redisCache) Set(key string, value []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	now := time.Now()
	evicted, err := setAndEvict.Run(ctx, r.client, []string{r.entryKey(key), r.lruKey},
		value,
		strconv.FormatInt(now.UnixMicro(), 10),
		key,
		strconv.Itoa(r.maxSize),
		strconv.FormatInt(r.ttl.Milliseconds(), 10),
		r.prefix+"e:",
		strconv.FormatInt(now.Add(-r.ttl).UnixMicro(), 10),
	).StringSlice()
	if err != nil {
		r.logError("redis cache Set failed", err)
		return
	}

	if r.onEvict != nil {
		for _, evictedKey := range evicted {
			r.onEvict(evictedKey, nil)
		}
	}
}

func (r *redisCache) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.entryKey(key))
	pipe.ZRem(ctx, r.lruKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logError("redis cache Delete failed", err)
	}
}

func (r *redisCache) Contains(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	n, err := r.client.Exists(ctx, r.entryKey(key)).Result()
	if err != nil {
		r.logError("redis cache Contains failed", err)
		return false
	}
	return n == 1
}

// Len counts recency members touched within the TTL, which matches the live
// entries without scanning the keyspace.
func (r *redisCache) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	minScore := strconv.FormatInt(time.Now().Add(-r.ttl).UnixMicro(), 10)
	n, err := r.client.ZCount(ctx, r.lruKey, minScore, "+inf").Result()
	if err != nil {
		r.logError("redis cache Len failed", err)
		return 0
	}
	return int(n)
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
