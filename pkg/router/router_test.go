package router_test

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/dialogdb/dialog/pkg/capability"
	"github.com/dialogdb/dialog/pkg/cas"
	"github.com/dialogdb/dialog/pkg/errs"
	"github.com/dialogdb/dialog/pkg/router"
	"github.com/dialogdb/dialog/pkg/router/memory"
)

func testSubject(t *testing.T) capability.Subject {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return capability.NewSubject(pub)
}

func TestRouterDialsOnceAndCachesConnection(t *testing.T) {
	dials := 0
	peer := memory.NewPeer()
	r := router.New(func(ctx context.Context, address string) (router.Connection, error) {
		dials++
		return peer, nil
	})
	subject := testSubject(t)

	ctx := context.Background()
	archiveChain := capability.ArchiveChain(subject, "index")
	if err := r.ArchivePut(ctx, "peer-a", capability.NewInvocation[capability.ArchivePut](archiveChain, capability.ArchivePutInput{Catalog: "index", Bytes: []byte("hello")})); err != nil {
		t.Fatalf("ArchivePut: %v", err)
	}
	cellChain := capability.CellChain(subject, "main")
	if err := r.MemoryPublish(ctx, "peer-a", capability.NewInvocation[capability.MemoryPublish](cellChain, capability.MemoryPublishInput{BranchID: "main", New: []byte("rev-1")})); err != nil {
		t.Fatalf("MemoryPublish: %v", err)
	}

	if dials != 1 {
		t.Fatalf("expected exactly one dial, got %d", dials)
	}
}

func TestRouterPropagatesDialError(t *testing.T) {
	wantErr := errs.New(errs.KindStorage, "unreachable")
	r := router.New(func(ctx context.Context, address string) (router.Connection, error) {
		return nil, wantErr
	})
	subject := testSubject(t)
	cellChain := capability.CellChain(subject, "main")

	_, _, err := r.MemoryResolve(context.Background(), "peer-b", capability.NewInvocation[capability.MemoryResolve](cellChain, capability.MemoryResolveInput{BranchID: "main"}))
	if err == nil {
		t.Fatal("expected dial error to propagate")
	}
}

func TestRouterRoundTripsThroughMemoryPeer(t *testing.T) {
	peer := memory.NewPeer()
	r := router.New(func(ctx context.Context, address string) (router.Connection, error) {
		return peer, nil
	})
	ctx := context.Background()
	subject := testSubject(t)
	archiveChain := capability.ArchiveChain(subject, "index")

	in := capability.ArchivePutInput{Catalog: "index", Bytes: []byte("payload")}
	if err := r.ArchivePut(ctx, "peer-a", capability.NewInvocation[capability.ArchivePut](archiveChain, in)); err != nil {
		t.Fatalf("ArchivePut: %v", err)
	}
	hash := [32]byte(cas.Sum(in.Bytes))

	got, ok, err := r.ArchiveGet(ctx, "peer-a", capability.NewInvocation[capability.ArchiveGet](archiveChain, capability.ArchiveGetInput{Catalog: "index", Hash: hash}))
	if err != nil {
		t.Fatalf("ArchiveGet: %v", err)
	}
	if !ok {
		t.Fatal("expected archive hit after put")
	}
	if string(got) != "payload" {
		t.Fatalf("got %q, want %q", got, "payload")
	}
}

func TestRouterDeniesMismatchedChain(t *testing.T) {
	peer := memory.NewPeer()
	r := router.New(func(ctx context.Context, address string) (router.Connection, error) {
		return peer, nil
	})
	ctx := context.Background()
	subject := testSubject(t)
	wrongChain := capability.CellChain(subject, "other-branch")

	err := r.ArchivePut(ctx, "peer-a", capability.NewInvocation[capability.ArchivePut](wrongChain, capability.ArchivePutInput{Catalog: "index", Bytes: []byte("nope")}))
	kind, ok := errs.KindOf(err)
	if !ok || kind != errs.KindCapabilityDenied {
		t.Fatalf("expected KindCapabilityDenied, got %v", err)
	}
}
