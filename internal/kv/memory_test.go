package kv

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if _, ok, err := m.Get(ctx, "counter"); ok || err != nil {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := m.Set(ctx, "counter", "12"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := m.Get(ctx, "counter")
	if err != nil || !ok || v != "12" {
		t.Fatalf("get = %q %v %v", v, ok, err)
	}
	if m.Writes() != 1 {
		t.Fatalf("writes = %d", m.Writes())
	}
}

func TestMemoryInjectedFailures(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	boom := errors.New("boom")

	m.FailWrites(boom)
	if err := m.Set(ctx, "k", "v"); !errors.Is(err, boom) {
		t.Fatalf("expected injected write error, got %v", err)
	}
	m.FailWrites(nil)

	m.Put("k", "v")
	m.FailReads(boom)
	if _, _, err := m.Get(ctx, "k"); !errors.Is(err, boom) {
		t.Fatalf("expected injected read error, got %v", err)
	}
	m.FailReads(nil)
	if v, ok, _ := m.Get(ctx, "k"); !ok || v != "v" {
		t.Fatalf("put value lost: %q %v", v, ok)
	}
}

func TestMemorySnapshotIsCopy(t *testing.T) {
	m := NewMemory()
	m.Put("a", "1")
	snap := m.Snapshot()
	snap["a"] = "2"
	if v, _, _ := m.Get(context.Background(), "a"); v != "1" {
		t.Fatalf("snapshot aliased store data")
	}
}
