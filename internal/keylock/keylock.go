// Package keylock serializes work on a key across processes.
package keylock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker grants at most one holder per key until release or ttl expiry.
type Locker interface {
	// TryAcquire does not block. When acquired is false another holder owns key.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (release func(), acquired bool, err error)
}

// Noop always grants the lock. Used when only one process serves requests.
type Noop struct{}

func (Noop) TryAcquire(context.Context, string, time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}

const lockPrefix = "skimmer:lock:"

// only the holder's token may delete the key
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type Redis struct {
	Rdb *redis.Client
}

func (l Redis) TryAcquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	lockKey := lockPrefix + key
	token := uuid.NewString()
	ok, err := l.Rdb.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		// release must work even when the request context is already done
		_ = releaseScript.Run(context.Background(), l.Rdb, []string{lockKey}, token).Err()
	}
	return release, true, nil
}
