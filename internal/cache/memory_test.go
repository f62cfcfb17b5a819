package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("lb")

	if _, err := c.Get(ctx, "k"); !IsNotFound(err) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatal(err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(ctx, "k"); !IsNotFound(err) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}
}

func TestMemory_Expires(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("")
	_ = c.Set(ctx, "k", "v", 20*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	if _, err := c.Get(ctx, "k"); !IsNotFound(err) {
		t.Fatalf("want expired key, got %v", err)
	}
}

func TestDialRedis_Unreachable(t *testing.T) {
	// puerto 1 en loopback: conexión rechazada sin esperar el timeout
	rdb, err := DialRedis(context.Background(), RedisConfig{Addr: "127.0.0.1:1"})
	if err == nil {
		_ = rdb.Close()
		t.Fatal("expected ping failure")
	}
	if rdb != nil {
		t.Fatal("client must not be returned on failure")
	}
}
