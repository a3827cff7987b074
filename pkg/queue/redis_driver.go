package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/cafe/pkg/logger"
)

const (
	readyKey   = "cafe:queue:ready"
	delayedKey = "cafe:queue:delayed"
)

// RedisDriver keeps ready jobs in a list (LPUSH/BRPOP) and delayed ones in a
// sorted set scored by due time in unix milliseconds.
type RedisDriver struct {
	rdb      *redis.Client
	popWait  time.Duration
	interval time.Duration
}

func NewRedisDriver(rdb *redis.Client) *RedisDriver {
	return &RedisDriver{rdb: rdb, popWait: 5 * time.Second, interval: time.Second}
}

func (d *RedisDriver) Push(ctx context.Context, payload []byte) error {
	if err := d.rdb.LPush(ctx, readyKey, payload).Err(); err != nil {
		return fmt.Errorf("queue: redis push: %w", err)
	}
	return nil
}

func (d *RedisDriver) PushDelayed(ctx context.Context, payload []byte, delay time.Duration) error {
	due := float64(time.Now().Add(delay).UnixMilli())
	if err := d.rdb.ZAdd(ctx, delayedKey, redis.Z{Score: due, Member: string(payload)}).Err(); err != nil {
		return fmt.Errorf("queue: redis push delayed: %w", err)
	}
	return nil
}

func (d *RedisDriver) Pop(ctx context.Context) ([]byte, error) {
	res, err := d.rdb.BRPop(ctx, d.popWait, readyKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("queue: redis pop: %w", err)
	}
	if len(res) < 2 {
		return nil, nil
	}
	return []byte(res[1]), nil
}

// Promote moves due delayed jobs to the ready list until ctx ends. Several
// processes may promote at once: only the one whose ZREM succeeds pushes.
func (d *RedisDriver) Promote(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := d.promoteDue(ctx, time.Now()); err != nil && ctx.Err() == nil {
				logger.Warn("queue: promote delayed jobs", "error", err)
			} else if n > 0 {
				logger.Info("queue: promoted delayed jobs", "count", n)
			}
		}
	}
}

func (d *RedisDriver) promoteDue(ctx context.Context, now time.Time) (int, error) {
	due, err := d.rdb.ZRangeByScore(ctx, delayedKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, err
	}

	moved := 0
	for _, job := range due {
		removed, err := d.rdb.ZRem(ctx, delayedKey, job).Result()
		if err != nil {
			return moved, err
		}
		if removed == 0 {
			continue
		}
		if err := d.rdb.LPush(ctx, readyKey, job).Err(); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}
