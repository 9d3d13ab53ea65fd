package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const tickLockKey = "bdc:sequences:tick-lock"

// TickLock is a Redis SETNX single-flight lock. It keeps overlapping
// sequence ticks from processing the same due assignments concurrently.
type TickLock struct {
	rdb   *redis.Client
	key   string
	ttl   time.Duration
	token string
}

func NewTickLock(rdb *redis.Client, ttl time.Duration) *TickLock {
	return &TickLock{rdb: rdb, key: tickLockKey, ttl: ttl}
}

// Acquire takes the lock, returning false when another holder has it.
func (l *TickLock) Acquire(ctx context.Context) (bool, error) {
	token := uuid.New().String()
	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return false, err
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

// Release frees the lock if this instance still holds it. A lock that
// expired and was taken by another holder is left alone.
func (l *TickLock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	defer func() { l.token = "" }()

	current, err := l.rdb.Get(ctx, l.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	if current != l.token {
		return nil
	}
	return l.rdb.Del(ctx, l.key).Err()
}
