// Package cache stores JSON-encoded values in Redis. When Redis is not
// connected it falls back to an in-process map so single-node deployments
// and tests keep working.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shashiranjanraj/cafe/config"
	"github.com/shashiranjanraj/cafe/pkg/metrics"
)

var RDB *redis.Client
var Ctx = context.Background()

// Connect initialises the Redis client and verifies the connection with a ping.
// Returns an error so the caller can react (log warning, fall back, or abort).
func Connect() error {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})

	if err := RDB.Ping(Ctx).Err(); err != nil {
		RDB = nil // fall back to the memory store
		return fmt.Errorf("cache: redis ping: %w", err)
	}
	return nil
}

func driver() string {
	if RDB != nil {
		return "redis"
	}
	return "memory"
}

// Get retrieves a cached value by key and unmarshals into dest.
// Returns true on a cache hit, false on miss or error.
func Get(key string, dest interface{}) bool {
	raw, ok := getRaw(key)
	if !ok {
		metrics.CacheMisses.WithLabelValues(driver()).Inc()
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		metrics.CacheMisses.WithLabelValues(driver()).Inc()
		return false
	}

	metrics.CacheHits.WithLabelValues(driver()).Inc()
	return true
}

// Set stores value under key for the given TTL. A zero TTL never expires.
func Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if RDB == nil {
		mem.set(key, data, ttl)
		return nil
	}
	return RDB.Set(Ctx, key, data, ttl).Err()
}

// Remember returns the cached value for key, or calls fn, caches its result
// and copies it into dest.
func Remember(key string, ttl time.Duration, dest interface{}, fn func() (interface{}, error)) error {
	if Get(key, dest) {
		return nil
	}

	v, err := fn()
	if err != nil {
		return err
	}
	if err := Set(key, v, ttl); err != nil {
		return err
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Del removes one or more keys.
func Del(keys ...string) error {
	if RDB == nil {
		mem.del(keys...)
		return nil
	}
	return RDB.Del(Ctx, keys...).Err()
}

// Forget drops a single key.
func Forget(key string) error {
	return Del(key)
}

// ForgetPrefix removes every key starting with prefix.
func ForgetPrefix(prefix string) error {
	if RDB == nil {
		mem.delPrefix(prefix)
		return nil
	}

	iter := RDB.Scan(Ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(Ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache: scan %s: %w", prefix, err)
	}
	if len(keys) == 0 {
		return nil
	}
	return RDB.Del(Ctx, keys...).Err()
}

// Hit counts one event against key inside a fixed window that starts with
// the first hit. It returns the running count and the time left in the
// window.
func Hit(key string, window time.Duration) (int64, time.Duration, error) {
	if RDB == nil {
		n, left := mem.incr(key, window)
		return n, left, nil
	}

	pipe := RDB.TxPipeline()
	incr := pipe.Incr(Ctx, key)
	ttl := pipe.PTTL(Ctx, key)
	if _, err := pipe.Exec(Ctx); err != nil {
		return 0, 0, fmt.Errorf("cache: hit %s: %w", key, err)
	}
	left := ttl.Val()
	if left < 0 {
		// First hit of the window: the key has no expiry yet.
		if err := RDB.PExpire(Ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("cache: hit %s: %w", key, err)
		}
		left = window
	}
	return incr.Val(), left, nil
}

// Flush empties the memory store. Redis is never flushed from here.
func Flush() {
	mem.flush()
}

func getRaw(key string) ([]byte, bool) {
	if RDB == nil {
		return mem.get(key)
	}

	val, err := RDB.Get(Ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

// ─── Memory store ────────────────────────────────────────────────────────────

type entry struct {
	data      []byte
	expiresAt time.Time
}

type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
}

var mem = &memoryStore{entries: map[string]entry{}}

func (m *memoryStore) get(key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		m.del(key)
		return nil, false
	}
	return e.data, true
}

func (m *memoryStore) set(key string, data []byte, ttl time.Duration) {
	e := entry{data: data}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
}

func (m *memoryStore) del(keys ...string) {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	m.mu.Unlock()
}

func (m *memoryStore) delPrefix(prefix string) {
	m.mu.Lock()
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	m.mu.Unlock()
}

func (m *memoryStore) incr(key string, window time.Duration) (int64, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	e, ok := m.entries[key]
	if !ok || (!e.expiresAt.IsZero() && now.After(e.expiresAt)) {
		e = entry{data: []byte("0"), expiresAt: now.Add(window)}
	}
	n, _ := strconv.ParseInt(string(e.data), 10, 64)
	n++
	e.data = strconv.AppendInt(nil, n, 10)
	m.entries[key] = e
	return n, e.expiresAt.Sub(now)
}

func (m *memoryStore) flush() {
	m.mu.Lock()
	m.entries = map[string]entry{}
	m.mu.Unlock()
}
