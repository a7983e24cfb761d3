// Package index implements the triple indexes: three prolly trees
// keyed by the EAV, AEV, and VAE orderings, presented as a single
// ArtifactStore that commits instructions and answers selector-based
// reads.
package index

import (
	"context"
	"iter"

	"github.com/dialogdb/dialog/pkg/artifact"
	"github.com/dialogdb/dialog/pkg/cas"
	"github.com/dialogdb/dialog/pkg/errs"
	"github.com/dialogdb/dialog/pkg/prolly"
	"github.com/dialogdb/dialog/pkg/revision"
)

// BranchFactor is the rank-boundary parameter used by the triple
// indexes, smaller than the tree default so that index nodes stay
// compact given the 128-byte fixed key width (§4.2).
const BranchFactor = 64

// ArtifactStore is the triple-indexed view over one branch's current
// revision: one prolly.Tree handle over the "index" CAS catalog, used
// with a separate root per key ordering (the three roots of a Revision).
type ArtifactStore struct {
	store *cas.Store
	tree  *prolly.Tree
}

// New returns an ArtifactStore reading and writing index nodes through
// store, which must be scoped to the "index" catalog.
func New(store *cas.Store) *ArtifactStore {
	return &ArtifactStore{store: store, tree: prolly.New(store, prolly.Config{BranchFactor: BranchFactor})}
}

// Store returns the underlying CAS store, for callers (like pkg/sync)
// that need to read or write raw tree nodes directly.
func (s *ArtifactStore) Store() *cas.Store { return s.store }

// EmptyRevision returns the revision whose three roots are each the
// canonical empty tree.
func (s *ArtifactStore) EmptyRevision(ctx context.Context) (revision.Revision, error) {
	h, err := s.tree.EmptyHash(ctx)
	if err != nil {
		return revision.Revision{}, err
	}
	return revision.Revision{EntityIndexRoot: h, AttributeIndexRoot: h, ValueIndexRoot: h}, nil
}

// Commit applies instructions to from in order and returns the
// resulting revision. Each Assert writes State::Added(Datum) at all
// three index keys; each Retract writes State::Removed. The returned
// revision is not itself published anywhere — that is pkg/branch's
// job, so a crash between Commit returning and the branch cell
// advancing leaves the prior revision observable.
func (s *ArtifactStore) Commit(ctx context.Context, from revision.Revision, instructions []artifact.Instruction) (revision.Revision, error) {
	roots := [3]cas.Hash{from.EntityIndexRoot, from.AttributeIndexRoot, from.ValueIndexRoot}
	orderings := [3]artifact.Ordering{artifact.EAV, artifact.AEV, artifact.VAE}

	for _, instr := range instructions {
		d := artifact.NewDatum(instr.Artifact)

		var state artifact.State[artifact.Datum]
		switch instr.Kind {
		case artifact.Assert:
			state = artifact.Added(d)
		case artifact.Retract:
			state = artifact.Removed[artifact.Datum]()
		default:
			return revision.Revision{}, errs.New(errs.KindInvalidState, "unknown instruction kind")
		}

		value, err := artifact.EncodeDatumState(state)
		if err != nil {
			return revision.Revision{}, errs.Wrap(errs.KindInvalidState, "encode datum state", err)
		}

		for i, ordering := range orderings {
			key := artifact.BuildKey(ordering, d)
			newRoot, err := s.tree.Set(ctx, roots[i], key, value)
			if err != nil {
				return revision.Revision{}, err
			}
			roots[i] = newRoot
		}
	}

	return revision.Revision{
		EntityIndexRoot:    roots[0],
		AttributeIndexRoot: roots[1],
		ValueIndexRoot:     roots[2],
	}, nil
}

// Select streams the live artifacts matching sel within the revision
// at. It picks the index whose ordering places the most of sel's set
// fields as a prefix, scans [prefix, next(prefix)), drops
// State::Removed entries, filters the residual (non-prefix) fields,
// and decodes Datum back to Artifact.
func (s *ArtifactStore) Select(ctx context.Context, at revision.Revision, sel Selector) iter.Seq2[artifact.Artifact, error] {
	return func(yield func(artifact.Artifact, error) bool) {
		pl, ok := choosePlan(sel)
		if !ok {
			yield(artifact.Artifact{}, errs.New(errs.KindEmptySelector, "selector has no fields set"))
			return
		}

		var lower, upper artifact.Key
		copy(lower[:], pl.prefixBytes)
		next, hasNext := artifact.NextPrefix(lower, len(pl.prefixBytes))
		openUpper := !hasNext
		if hasNext {
			upper = next
		}

		root := at.Root(pl.ordering)
		cur, err := prolly.StreamRange(ctx, s.store, root, lower, upper, openUpper)
		if err != nil {
			yield(artifact.Artifact{}, err)
			return
		}

		for {
			entry, has, err := cur.Next(ctx)
			if err != nil {
				yield(artifact.Artifact{}, err)
				return
			}
			if !has {
				return
			}
			if !hasPrefix(entry.Key, pl.prefixBytes) {
				return
			}

			state, err := artifact.DecodeDatumState(entry.Value)
			if err != nil {
				yield(artifact.Artifact{}, err)
				return
			}
			d, isAdded := state.Value()
			if !isAdded {
				continue
			}
			a := d.Artifact()
			if !matchesResidual(sel, a, pl) {
				continue
			}
			if !yield(a, nil) {
				return
			}
		}
	}
}

func hasPrefix(key artifact.Key, prefix []byte) bool {
	b := key.Bytes()
	for i, pb := range prefix {
		if b[i] != pb {
			return false
		}
	}
	return true
}
