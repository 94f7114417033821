package kv

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_GetSet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); err != ErrNotFound {
		t.Fatalf("Get missing = %v, want ErrNotFound", err)
	}

	if err := s.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "v" {
		t.Errorf("Get = %q, want %q", got, "v")
	}
}

func TestMemoryStore_SetNX(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	ok, err := s.SetNX(ctx, "claim", "1", time.Hour)
	if err != nil {
		t.Fatalf("SetNX: %v", err)
	}
	if !ok {
		t.Fatal("first SetNX = false, want true")
	}

	ok, err = s.SetNX(ctx, "claim", "2", time.Hour)
	if err != nil {
		t.Fatalf("SetNX: %v", err)
	}
	if ok {
		t.Fatal("second SetNX = true, want false")
	}

	got, _ := s.Get(ctx, "claim")
	if got != "1" {
		t.Errorf("value = %q, want original %q", got, "1")
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return now })

	if err := s.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	now = now.Add(2 * time.Minute)

	if _, err := s.Get(ctx, "k"); err != ErrNotFound {
		t.Errorf("Get after expiry = %v, want ErrNotFound", err)
	}

	// An expired key is treated as absent by SetNX.
	ok, err := s.SetNX(ctx, "k", "v2", 0)
	if err != nil {
		t.Fatalf("SetNX: %v", err)
	}
	if !ok {
		t.Error("SetNX on expired key = false, want true")
	}
}

func TestMemoryStore_ListOps(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.ListAppend(ctx, "l", "a", "b", "c"); err != nil {
		t.Fatalf("ListAppend: %v", err)
	}

	n, err := s.ListLen(ctx, "l")
	if err != nil {
		t.Fatalf("ListLen: %v", err)
	}
	if n != 3 {
		t.Errorf("ListLen = %d, want 3", n)
	}

	all, err := s.ListRange(ctx, "l", 0, -1)
	if err != nil {
		t.Fatalf("ListRange: %v", err)
	}
	if len(all) != 3 || all[0] != "a" || all[2] != "c" {
		t.Errorf("ListRange(0,-1) = %v, want [a b c]", all)
	}

	tail, err := s.ListRange(ctx, "l", -2, -1)
	if err != nil {
		t.Fatalf("ListRange: %v", err)
	}
	if len(tail) != 2 || tail[0] != "b" {
		t.Errorf("ListRange(-2,-1) = %v, want [b c]", tail)
	}

	if err := s.ListRemove(ctx, "l", "b"); err != nil {
		t.Fatalf("ListRemove: %v", err)
	}
	all, _ = s.ListRange(ctx, "l", 0, -1)
	if len(all) != 2 || all[1] != "c" {
		t.Errorf("after remove = %v, want [a c]", all)
	}

	out, err := s.ListRange(ctx, "empty", 0, -1)
	if err != nil || out != nil {
		t.Errorf("ListRange on missing key = %v, %v; want nil, nil", out, err)
	}
}
