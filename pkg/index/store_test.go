package index

import (
	"context"
	"testing"

	"github.com/dialogdb/dialog/pkg/artifact"
	"github.com/dialogdb/dialog/pkg/cas"
	"github.com/dialogdb/dialog/pkg/cas/memory"
	"github.com/dialogdb/dialog/pkg/errs"
)

func newTestStore(t *testing.T) *ArtifactStore {
	t.Helper()
	backend := memory.New()
	store := cas.New(backend, "index")
	return New(store)
}

func makeArtifact(t *testing.T, attr string) artifact.Artifact {
	t.Helper()
	a, err := artifact.NewAttribute(attr)
	if err != nil {
		t.Fatalf("new attribute: %v", err)
	}
	entity, err := artifact.NewEntity()
	if err != nil {
		t.Fatalf("new entity: %v", err)
	}
	return artifact.Artifact{
		The: a,
		Of:  entity,
		Is:  artifact.StringValue("hello"),
	}
}

func TestCommitAndSelectRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	empty, err := s.EmptyRevision(ctx)
	if err != nil {
		t.Fatalf("empty revision: %v", err)
	}

	a := makeArtifact(t, "profile/name")
	rev, err := s.Commit(ctx, empty, []artifact.Instruction{artifact.AssertInstruction(a)})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	entity := a.Of
	var got []artifact.Artifact
	for res, err := range s.Select(ctx, rev, Selector{Entity: &entity}) {
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		got = append(got, res)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(got))
	}
	if got[0].Of != a.Of || got[0].The != a.The {
		t.Fatalf("selected artifact mismatch: %+v", got[0])
	}
}

func TestRetractionHidesArtifactButChangesRoot(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	empty, err := s.EmptyRevision(ctx)
	if err != nil {
		t.Fatalf("empty revision: %v", err)
	}

	a := makeArtifact(t, "profile/name")
	afterAssert, err := s.Commit(ctx, empty, []artifact.Instruction{artifact.AssertInstruction(a)})
	if err != nil {
		t.Fatalf("commit assert: %v", err)
	}
	afterRetract, err := s.Commit(ctx, afterAssert, []artifact.Instruction{artifact.RetractInstruction(a)})
	if err != nil {
		t.Fatalf("commit retract: %v", err)
	}

	if afterRetract == afterAssert {
		t.Fatalf("retraction did not change the revision")
	}
	if afterRetract == empty {
		t.Fatalf("retraction should not roll back to the empty revision (tombstone is recorded)")
	}

	entity := a.Of
	var got []artifact.Artifact
	for res, err := range s.Select(ctx, afterRetract, Selector{Entity: &entity}) {
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		got = append(got, res)
	}
	if len(got) != 0 {
		t.Fatalf("expected no live artifacts after retraction, got %d", len(got))
	}
}

func TestSelectEmptySelectorFails(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	empty, _ := s.EmptyRevision(ctx)

	for _, err := range s.Select(ctx, empty, Selector{}) {
		kind, ok := errs.KindOf(err)
		if !ok || kind != errs.KindEmptySelector {
			t.Fatalf("expected empty_selector error, got %v", err)
		}
		return
	}
	t.Fatalf("expected Select to yield an error for an empty selector")
}
