package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok, err := m.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("expected miss on empty store, ok=%v err=%v", ok, err)
	}
	if err := m.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := m.Get(ctx, "k")
	if err != nil || !ok || string(got) != "v" {
		t.Errorf("expected hit with v, got %q ok=%v err=%v", got, ok, err)
	}
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	m.Set(ctx, "k", []byte("v"), time.Second)
	now = now.Add(time.Second)
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Error("expected entry to expire")
	}
	if m.Len() != 0 {
		t.Errorf("expected expired entry to be dropped, %d left", m.Len())
	}
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Set(ctx, "a", []byte("1"), time.Minute)
	m.Set(ctx, "b", []byte("2"), time.Minute)
	m.Set(ctx, "c", []byte("3"), time.Minute)

	m.Delete(ctx, "a", "b", "missing")
	if m.Len() != 1 {
		t.Errorf("expected one entry left, got %d", m.Len())
	}
	if _, ok, _ := m.Get(ctx, "c"); !ok {
		t.Error("expected c to survive")
	}
}

func TestMemory_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	m.Set(ctx, "short", []byte("1"), time.Second)
	m.Set(ctx, "long", []byte("2"), time.Hour)
	now = now.Add(time.Minute)
	m.sweep()
	if m.Len() != 1 {
		t.Errorf("expected only the long-lived entry, got %d", m.Len())
	}
}

func TestRedis(t *testing.T) {
	url := os.Getenv("CLINIC_TEST_REDIS_URL")
	if url == "" {
		t.Skip("CLINIC_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	r, err := NewRedis(ctx, url)
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	defer r.Close()

	key := "clinic:test:" + time.Now().Format(time.RFC3339Nano)
	if _, ok, err := r.Get(ctx, key); ok || err != nil {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	if err := r.Set(ctx, key, []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, ok, _ := r.Get(ctx, key); !ok || string(got) != "v" {
		t.Errorf("expected hit, got %q ok=%v", got, ok)
	}
	if err := r.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := r.Get(ctx, key); ok {
		t.Error("expected miss after delete")
	}
}

func TestNewRedis_BadURL(t *testing.T) {
	if _, err := NewRedis(context.Background(), "http://not-redis"); err == nil {
		t.Error("expected error for non-redis url")
	}
}
