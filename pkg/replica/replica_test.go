package replica_test

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/dialogdb/dialog/pkg/artifact"
	"github.com/dialogdb/dialog/pkg/branch"
	"github.com/dialogdb/dialog/pkg/capability"
	"github.com/dialogdb/dialog/pkg/cas"
	"github.com/dialogdb/dialog/pkg/cas/memory"
	"github.com/dialogdb/dialog/pkg/errs"
	"github.com/dialogdb/dialog/pkg/replica"
	"github.com/dialogdb/dialog/pkg/router"
)

// remoteCellConnection stands in for a real remote dialogd process: a
// router.Connection implemented directly over the backend a second
// *replica.Replica uses, so Push/Pull exercise the real node-transfer
// and CAS-advance paths against that replica's own cell and index
// catalogs without a network hop.
type remoteCellConnection struct {
	store *cas.Store
	cell  *branch.Cell
}

func (r *remoteCellConnection) ArchiveGet(ctx context.Context, inv capability.Invocation[capability.ArchiveGet, capability.ArchiveGetInput]) ([]byte, bool, error) {
	return r.store.Get(ctx, cas.Hash(inv.Input.Hash))
}

func (r *remoteCellConnection) ArchivePut(ctx context.Context, inv capability.Invocation[capability.ArchivePut, capability.ArchivePutInput]) error {
	_, err := r.store.Put(ctx, inv.Input.Bytes)
	return err
}

func (r *remoteCellConnection) MemoryResolve(ctx context.Context, inv capability.Invocation[capability.MemoryResolve, capability.MemoryResolveInput]) ([]byte, bool, error) {
	return r.cell.Resolve(ctx)
}

func (r *remoteCellConnection) MemoryPublish(ctx context.Context, inv capability.Invocation[capability.MemoryPublish, capability.MemoryPublishInput]) error {
	return r.cell.CompareAndSwapPublish(ctx, inv.Input.Expected, inv.Input.New)
}

func newSubject(t *testing.T) capability.Subject {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return capability.NewSubject(pub)
}

func TestBranchIsIdempotentAndCached(t *testing.T) {
	ctx := context.Background()
	r := replica.Open(newSubject(t), memory.New())

	b1, err := r.Branch(ctx, "main")
	if err != nil {
		t.Fatalf("open branch: %v", err)
	}
	b2, err := r.Branch(ctx, "main")
	if err != nil {
		t.Fatalf("re-open branch: %v", err)
	}
	if b1 != b2 {
		t.Fatal("expected the same cached *branch.Branch handle on the second open")
	}
}

func TestTwoSubjectsDoNotCollideOnTheSameBranchName(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	alice := replica.Open(newSubject(t), backend)
	bob := replica.Open(newSubject(t), backend)

	aliceBranch, err := alice.Branch(ctx, "main")
	if err != nil {
		t.Fatalf("alice open: %v", err)
	}
	attr, err := artifact.NewAttribute("profile/name")
	if err != nil {
		t.Fatalf("new attribute: %v", err)
	}
	entity, err := artifact.NewEntity()
	if err != nil {
		t.Fatalf("new entity: %v", err)
	}
	a := artifact.Artifact{The: attr, Of: entity, Is: artifact.StringValue("alice-only")}
	rev, err := aliceBranch.Commit(ctx, []artifact.Instruction{artifact.AssertInstruction(a)})
	if err != nil {
		t.Fatalf("alice commit: %v", err)
	}

	bobBranch, err := bob.Branch(ctx, "main")
	if err != nil {
		t.Fatalf("bob open: %v", err)
	}
	bobState, err := bobBranch.State(ctx)
	if err != nil {
		t.Fatalf("bob state: %v", err)
	}
	if bobState.Revision == rev {
		t.Fatal("bob's same-named branch should not see alice's commit")
	}
}

func TestLoadRemoteUnknownSiteFails(t *testing.T) {
	r := replica.Open(newSubject(t), memory.New())
	_, err := r.LoadRemote("origin")
	kind, ok := errs.KindOf(err)
	if !ok || kind != errs.KindRemoteNotFound {
		t.Fatalf("expected KindRemoteNotFound, got %v", err)
	}
}

func TestAddRemoteThenLoadRemoteRoundTrips(t *testing.T) {
	r := replica.Open(newSubject(t), memory.New())
	r.AddRemote("origin", "grpc://peer:7000")

	remote, err := r.LoadRemote("origin")
	if err != nil {
		t.Fatalf("load remote: %v", err)
	}
	if remote.Address != "grpc://peer:7000" {
		t.Fatalf("address = %q, want grpc://peer:7000", remote.Address)
	}
}

func TestPushRoutesThroughReplicaRemote(t *testing.T) {
	ctx := context.Background()
	localBackend := memory.New()
	remoteBackend := memory.New()

	subject := newSubject(t)
	local := replica.Open(subject, localBackend)
	remote := replica.Open(subject, remoteBackend)

	// Seed the remote's branch so it exists before local pushes to it.
	if _, err := remote.Branch(ctx, "main"); err != nil {
		t.Fatalf("seed remote branch: %v", err)
	}

	remoteStore := cas.New(remoteBackend, "index")
	chain := capability.CellChain(subject, "main")
	remoteCell := branch.NewCell(cas.New(remoteBackend, "cell"), chain.Subject().String()+chain.AbilityPath())
	conn := &remoteCellConnection{store: remoteStore, cell: remoteCell}
	rt := router.New(func(ctx context.Context, address string) (router.Connection, error) {
		return conn, nil
	})
	local.AddRemote("origin", "memory://peer")

	b, err := local.Branch(ctx, "main")
	if err != nil {
		t.Fatalf("open local branch: %v", err)
	}
	attr, err := artifact.NewAttribute("profile/name")
	if err != nil {
		t.Fatalf("new attribute: %v", err)
	}
	entity, err := artifact.NewEntity()
	if err != nil {
		t.Fatalf("new entity: %v", err)
	}
	a := artifact.Artifact{The: attr, Of: entity, Is: artifact.StringValue("pushed")}
	if _, err := b.Commit(ctx, []artifact.Instruction{artifact.AssertInstruction(a)}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := local.Push(ctx, rt, "main", "origin"); err != nil {
		t.Fatalf("push: %v", err)
	}
}
