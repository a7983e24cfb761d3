package branch

import (
	"context"

	"github.com/dialogdb/dialog/pkg/artifact"
	"github.com/dialogdb/dialog/pkg/errs"
	"github.com/dialogdb/dialog/pkg/index"
	"github.com/dialogdb/dialog/pkg/log"
	"github.com/dialogdb/dialog/pkg/metrics"
	"github.com/dialogdb/dialog/pkg/revision"
)

// Branch wraps a Cell and the triple-indexed ArtifactStore it commits
// through: Open/Load/Commit/Advance/Reset are the five operations
// §4.4 names.
type Branch struct {
	id    string
	cell  *Cell
	store *index.ArtifactStore
	refs  *RefCounter
}

// Open loads the branch's cell, or creates it with the default state
// (revision and base both set to the empty revision — three real
// empty-tree roots, not the all-zero sentinel) if absent. Every
// Commit descends from this revision's roots via tree.Set, which
// requires an actual stored node to read, so Open must materialize
// the empty tree rather than leave the roots as the zero Hash.
func Open(ctx context.Context, cell *Cell, store *index.ArtifactStore, id string) (*Branch, error) {
	empty, err := store.EmptyRevision(ctx)
	if err != nil {
		return nil, err
	}
	def := State{ID: id, Revision: empty, Base: empty}
	encDef, err := def.Encode()
	if err != nil {
		return nil, err
	}
	if _, err := cell.GetOrInit(ctx, encDef); err != nil {
		return nil, err
	}
	return &Branch{id: id, cell: cell, store: store}, nil
}

// Load reads an existing branch's cell, failing BranchNotFound if it
// has never been published.
func Load(ctx context.Context, cell *Cell, store *index.ArtifactStore, id string) (*Branch, error) {
	_, ok, err := cell.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.New(errs.KindBranchNotFound, "branch "+id+" has never been published")
	}
	return &Branch{id: id, cell: cell, store: store}, nil
}

// State returns the branch's current persisted state.
func (b *Branch) State(ctx context.Context) (State, error) {
	v, ok, err := b.cell.Resolve(ctx)
	if err != nil {
		return State{}, err
	}
	if !ok {
		return State{}, errs.New(errs.KindBranchNotFound, "branch "+b.id+" has never been published")
	}
	return DecodeState(v)
}

// Commit applies instructions to the branch's current revision and
// publishes the result, retrying is the caller's responsibility on
// ConflictOnPublish (per §5's race-and-retry model).
func (b *Branch) Commit(ctx context.Context, instructions []artifact.Instruction) (revision.Revision, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.BranchCommitDuration, b.id)

	cur, err := b.State(ctx)
	if err != nil {
		return revision.Revision{}, err
	}

	newRev, err := b.store.Commit(ctx, cur.Revision, instructions)
	if err != nil {
		return revision.Revision{}, err
	}

	curEnc, err := cur.Encode()
	if err != nil {
		return revision.Revision{}, err
	}
	newState := State{ID: b.id, Revision: newRev, Base: cur.Base}
	newEnc, err := newState.Encode()
	if err != nil {
		return revision.Revision{}, err
	}

	if err := b.cell.CompareAndSwapPublish(ctx, curEnc, newEnc); err != nil {
		metrics.BranchPublishTotal.WithLabelValues(b.id, "conflict").Inc()
		return revision.Revision{}, err
	}
	metrics.BranchPublishTotal.WithLabelValues(b.id, "ok").Inc()
	log.WithBranch(b.id).Info().Str("component", "branch").Msg("branch committed")
	if b.refs != nil {
		b.refs.Track(newRev)
	}
	return newRev, nil
}

// Advance sets both revision and base explicitly, as pull does after
// fast-forwarding to a remote's head.
func (b *Branch) Advance(ctx context.Context, rev, base revision.Revision) error {
	cur, err := b.State(ctx)
	if err != nil {
		return err
	}
	curEnc, err := cur.Encode()
	if err != nil {
		return err
	}
	newState := State{ID: b.id, Revision: rev, Base: base}
	newEnc, err := newState.Encode()
	if err != nil {
		return err
	}
	if err := b.cell.CompareAndSwapPublish(ctx, curEnc, newEnc); err != nil {
		metrics.BranchPublishTotal.WithLabelValues(b.id, "conflict").Inc()
		return err
	}
	metrics.BranchPublishTotal.WithLabelValues(b.id, "ok").Inc()
	log.WithBranch(b.id).Info().Str("component", "branch").Msg("branch advanced")
	if b.refs != nil {
		b.refs.Track(rev)
		if base != rev {
			b.refs.Track(base)
		}
	}
	return nil
}

// Reset sets both revision and base to rev: a local rollback to a
// known-good point.
func (b *Branch) Reset(ctx context.Context, rev revision.Revision) error {
	return b.Advance(ctx, rev, rev)
}

// TrackRefs attaches a RefCounter that Commit and Advance will feed
// every revision they produce through, so the counter accumulates a
// picture of which index tree roots are still reachable from this
// branch's history. A branch with no RefCounter attached (the default)
// simply skips this bookkeeping.
func (b *Branch) TrackRefs(refs *RefCounter) {
	b.refs = refs
}

// ID returns the branch's human-readable name.
func (b *Branch) ID() string { return b.id }

// Store returns the branch's underlying ArtifactStore, for Select
// reads against its current or historical revisions.
func (b *Branch) Store() *index.ArtifactStore { return b.store }
