package cache

import (
	"context"
	"testing"
	"time"
)

func TestFSCacheSetGet(t *testing.T) {
	c, err := NewFSCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "hash/ab/cd", []byte("payload"), time.Hour); err != nil {
		t.Fatal(err)
	}
	got, ok, err := c.Get(ctx, "hash/ab/cd")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(got) != "payload" {
		t.Errorf("got %q", got)
	}
}

func TestFSCacheMiss(t *testing.T) {
	c, err := NewFSCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_, ok, err := c.Get(context.Background(), "missing")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected cache miss")
	}
}

func TestFSCacheExpiry(t *testing.T) {
	c, err := NewFSCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("v"), -time.Second); err != nil {
		t.Fatal(err)
	}
	_, ok, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected expired entry to be reported as a miss")
	}
}

func TestFSCacheNoTTLNeverExpires(t *testing.T) {
	c, err := NewFSCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	_, ok, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("expected entry without TTL to remain cached")
	}
}

func TestFSCacheDelete(t *testing.T) {
	c, err := NewFSCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatal(err)
	}
	_, ok, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected deleted entry to be gone")
	}
}

func TestFSCacheDeleteMissingIsNoop(t *testing.T) {
	c, err := NewFSCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(context.Background(), "never-existed"); err != nil {
		t.Errorf("deleting a missing key should not error: %v", err)
	}
}
