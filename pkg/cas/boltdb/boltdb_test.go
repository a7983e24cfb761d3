package boltdb

import (
	"context"
	"testing"
)

func TestPutGetAndCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	b, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer b.Close()

	if err := b.Put(ctx, "index", []byte("k1"), []byte("v1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := b.Get(ctx, "index", []byte("k1"))
	if err != nil || !ok || string(got) != "v1" {
		t.Fatalf("get mismatch: %q ok=%v err=%v", got, ok, err)
	}

	ok, _, err = b.CompareAndSwap(ctx, "cell", []byte("branch"), nil, []byte("rev1"))
	if err != nil || !ok {
		t.Fatalf("first cas should succeed: ok=%v err=%v", ok, err)
	}
	ok, current, err := b.CompareAndSwap(ctx, "cell", []byte("branch"), []byte("stale"), []byte("rev2"))
	if err != nil {
		t.Fatalf("cas: %v", err)
	}
	if ok {
		t.Fatalf("cas with stale expected value should fail")
	}
	if string(current) != "rev1" {
		t.Fatalf("expected current rev1, got %q", current)
	}
}

func TestGetFromUnknownCatalogIsMiss(t *testing.T) {
	ctx := context.Background()
	b, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer b.Close()

	_, ok, err := b.Get(ctx, "does-not-exist", []byte("k"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("expected miss on unknown catalog")
	}
}
