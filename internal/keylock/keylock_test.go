package keylock

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisLockIsExclusive(t *testing.T) {
	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer server.Close()
	rdb := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer rdb.Close()

	l := Redis{Rdb: rdb}
	ctx := context.Background()

	release, ok, err := l.TryAcquire(ctx, "less:Go", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	if _, ok, err := l.TryAcquire(ctx, "less:Go", time.Minute); err != nil || ok {
		t.Fatalf("second acquire should fail: ok=%v err=%v", ok, err)
	}
	if _, ok, _ := l.TryAcquire(ctx, "high:Go", time.Minute); !ok {
		t.Fatal("different key must not be blocked")
	}

	release()
	if server.Exists("skimmer:lock:less:Go") {
		t.Fatal("expected lock key to be removed on release")
	}
	if _, ok, _ := l.TryAcquire(ctx, "less:Go", time.Minute); !ok {
		t.Fatal("expected acquire after release")
	}
}

func TestRedisLockExpires(t *testing.T) {
	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer server.Close()
	rdb := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer rdb.Close()

	l := Redis{Rdb: rdb}
	ctx := context.Background()
	staleRelease, ok, _ := l.TryAcquire(ctx, "k", time.Second)
	if !ok {
		t.Fatal("expected acquire")
	}
	server.FastForward(2 * time.Second)

	_, ok, _ = l.TryAcquire(ctx, "k", time.Minute)
	if !ok {
		t.Fatal("expected acquire after ttl expiry")
	}
	staleRelease()
	if !server.Exists("skimmer:lock:k") {
		t.Fatal("stale holder must not release the new holder's lock")
	}
}

func TestNoopAlwaysAcquires(t *testing.T) {
	for i := 0; i < 2; i++ {
		release, ok, err := Noop{}.TryAcquire(context.Background(), "k", time.Second)
		if err != nil || !ok {
			t.Fatalf("noop acquire: ok=%v err=%v", ok, err)
		}
		release()
	}
}
