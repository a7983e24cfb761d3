package grpc_test

import (
	"context"
	"crypto/ed25519"
	"net"
	"testing"

	"github.com/dialogdb/dialog/pkg/capability"
	"github.com/dialogdb/dialog/pkg/cas"
	"github.com/dialogdb/dialog/pkg/cas/memory"
	rgrpc "github.com/dialogdb/dialog/pkg/router/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func testSubject(t *testing.T) capability.Subject {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return capability.NewSubject(pub)
}

func startTestServer(t *testing.T) (addr string, stop func()) {
	t.Helper()
	backend := memory.New()
	handler := rgrpc.NewHandler(backend)
	server := rgrpc.NewServer(handler)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		_ = server.Serve(lis)
	}()
	return lis.Addr().String(), server.Stop
}

func TestGRPCArchiveRoundTrip(t *testing.T) {
	addr, stop := startTestServer(t)
	defer stop()

	client, err := rgrpc.Dial(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	archiveChain := capability.ArchiveChain(testSubject(t), "index")
	payload := []byte("tree node bytes")
	if err := client.ArchivePut(ctx, capability.NewInvocation[capability.ArchivePut](archiveChain, capability.ArchivePutInput{Catalog: "index", Bytes: payload})); err != nil {
		t.Fatalf("ArchivePut: %v", err)
	}

	hash := [32]byte(cas.Sum(payload))
	got, ok, err := client.ArchiveGet(ctx, capability.NewInvocation[capability.ArchiveGet](archiveChain, capability.ArchiveGetInput{Catalog: "index", Hash: hash}))
	if err != nil {
		t.Fatalf("ArchiveGet: %v", err)
	}
	if !ok {
		t.Fatal("expected hit after put")
	}
	if string(got) != string(payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestGRPCMemoryPublishConflict(t *testing.T) {
	addr, stop := startTestServer(t)
	defer stop()

	client, err := rgrpc.Dial(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	cellChain := capability.CellChain(testSubject(t), "main")
	if err := client.MemoryPublish(ctx, capability.NewInvocation[capability.MemoryPublish](cellChain, capability.MemoryPublishInput{BranchID: "main", New: []byte("rev-1")})); err != nil {
		t.Fatalf("initial publish: %v", err)
	}

	err = client.MemoryPublish(ctx, capability.NewInvocation[capability.MemoryPublish](cellChain, capability.MemoryPublishInput{BranchID: "main", Expected: []byte("rev-0"), New: []byte("rev-2")}))
	if err == nil {
		t.Fatal("expected conflict on stale expected value")
	}

	v, ok, err := client.MemoryResolve(ctx, capability.NewInvocation[capability.MemoryResolve](cellChain, capability.MemoryResolveInput{BranchID: "main"}))
	if err != nil {
		t.Fatalf("MemoryResolve: %v", err)
	}
	if !ok || string(v) != "rev-1" {
		t.Fatalf("expected rev-1 to survive the failed CAS, got %q (ok=%v)", v, ok)
	}
}
