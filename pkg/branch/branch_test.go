package branch

import (
	"context"
	"testing"

	"github.com/dialogdb/dialog/pkg/artifact"
	"github.com/dialogdb/dialog/pkg/cas"
	"github.com/dialogdb/dialog/pkg/cas/memory"
	"github.com/dialogdb/dialog/pkg/errs"
	"github.com/dialogdb/dialog/pkg/index"
)

func newTestBranch(t *testing.T, id string) *Branch {
	t.Helper()
	backend := memory.New()
	idxStore := index.New(cas.New(backend, "index"))
	cell := NewCell(cas.New(backend, "cell"), "local/"+id)
	b, err := Open(context.Background(), cell, idxStore, id)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return b
}

func TestOpenIsIdempotent(t *testing.T) {
	backend := memory.New()
	idxStore := index.New(cas.New(backend, "index"))
	cell := NewCell(cas.New(backend, "cell"), "local/main")

	b1, err := Open(context.Background(), cell, idxStore, "main")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s1, err := b1.State(context.Background())
	if err != nil {
		t.Fatalf("state: %v", err)
	}

	b2, err := Open(context.Background(), cell, idxStore, "main")
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	s2, err := b2.State(context.Background())
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if s1 != s2 {
		t.Fatalf("second open reset state: %+v vs %+v", s1, s2)
	}
}

func TestLoadFailsForNeverPublishedBranch(t *testing.T) {
	backend := memory.New()
	idxStore := index.New(cas.New(backend, "index"))
	cell := NewCell(cas.New(backend, "cell"), "local/ghost")

	_, err := Load(context.Background(), cell, idxStore, "ghost")
	kind, ok := errs.KindOf(err)
	if !ok || kind != errs.KindBranchNotFound {
		t.Fatalf("expected KindBranchNotFound, got %v", err)
	}
}

func TestCommitAdvancesRevisionAndIsReadableByLoad(t *testing.T) {
	ctx := context.Background()
	b := newTestBranch(t, "main")

	attr, _ := artifact.NewAttribute("profile/name")
	entity, _ := artifact.NewEntity()
	a := artifact.Artifact{The: attr, Of: entity, Is: artifact.StringValue("ok")}

	before, err := b.State(ctx)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	rev, err := b.Commit(ctx, []artifact.Instruction{artifact.AssertInstruction(a)})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if rev == before.Revision {
		t.Fatalf("commit did not advance the revision")
	}

	after, err := b.State(ctx)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if after.Revision != rev {
		t.Fatalf("persisted state does not match commit's returned revision")
	}
}

func TestResetSetsRevisionAndBaseEqual(t *testing.T) {
	ctx := context.Background()
	b := newTestBranch(t, "main")

	attr, _ := artifact.NewAttribute("profile/name")
	entity, _ := artifact.NewEntity()
	a := artifact.Artifact{The: attr, Of: entity, Is: artifact.StringValue("ok")}
	rev, err := b.Commit(ctx, []artifact.Instruction{artifact.AssertInstruction(a)})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := b.Reset(ctx, rev); err != nil {
		t.Fatalf("reset: %v", err)
	}
	s, err := b.State(ctx)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if s.Revision != rev || s.Base != rev {
		t.Fatalf("reset should set revision and base both to rev: %+v", s)
	}
}
