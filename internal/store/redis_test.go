package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

// Set MLMATHR_TEST_REDIS_ADDR to run against a disposable Redis server.
func TestRedisKV(t *testing.T) {
	addr := os.Getenv("MLMATHR_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MLMATHR_TEST_REDIS_ADDR not set")
	}
	kv, err := OpenRedis(context.Background(), RedisConfig{
		Addr:        addr,
		Prefix:      fmt.Sprintf("mlmathr-test-%d:", time.Now().UnixNano()),
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("open redis: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	testKV(t, kv)
}

func TestOpenRedis_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := OpenRedis(ctx, RedisConfig{Addr: "127.0.0.1:1", DialTimeout: 500 * time.Millisecond})
	if err == nil {
		t.Fatal("expected error connecting to a closed port")
	}
}
