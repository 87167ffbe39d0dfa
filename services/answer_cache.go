package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang/groupcache/lru"
	"go.uber.org/zap"
)

// AnswerCache memoises assistant answers by normalised query.
type AnswerCache interface {
	Get(ctx context.Context, query string) (string, bool)
	Set(ctx context.Context, query, answer string)
}

func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return hex.EncodeToString(sum[:])
}

// LRUAnswerCache is an in-process cache bounded by entry count.
type LRUAnswerCache struct {
	mu    sync.Mutex
	cache *lru.Cache
}

func NewLRUAnswerCache(size int) *LRUAnswerCache {
	return &LRUAnswerCache{cache: lru.New(size)}
}

func (c *LRUAnswerCache) Get(_ context.Context, query string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.cache.Get(cacheKey(query))
	if !ok {
		return "", false
	}
	return v.(string), true
}

func (c *LRUAnswerCache) Set(_ context.Context, query, answer string) {
	c.mu.Lock()
	c.cache.Add(cacheKey(query), answer)
	c.mu.Unlock()
}

func (c *LRUAnswerCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}

// RedisAnswerCache shares answers between instances. Redis failures are
// logged and treated as misses.
type RedisAnswerCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewRedisAnswerCache(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *RedisAnswerCache {
	return &RedisAnswerCache{rdb: rdb, ttl: ttl, log: log}
}

// NewRedisClient builds the pooled client backing the shared answer cache.
func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

func (c *RedisAnswerCache) key(query string) string { return "answer:" + cacheKey(query) }

func (c *RedisAnswerCache) Get(ctx context.Context, query string) (string, bool) {
	v, err := c.rdb.Get(ctx, c.key(query)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		c.log.Warn("redis answer cache get", zap.Error(err))
		return "", false
	}
	return v, true
}

func (c *RedisAnswerCache) Set(ctx context.Context, query, answer string) {
	if err := c.rdb.Set(ctx, c.key(query), answer, c.ttl).Err(); err != nil {
		c.log.Warn("redis answer cache set", zap.Error(err))
	}
}
