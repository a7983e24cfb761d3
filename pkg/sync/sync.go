// Package sync implements the push/pull protocol between a local
// branch and a remote one addressed by a router.Connection: nodes
// reachable from one side's revision but not the other's are computed
// with pkg/prolly's tree-difference algorithm and carried across the
// wire as opaque (hash, bytes) pairs.
package sync

import (
	"context"

	"github.com/dialogdb/dialog/pkg/artifact"
	"github.com/dialogdb/dialog/pkg/branch"
	"github.com/dialogdb/dialog/pkg/capability"
	"github.com/dialogdb/dialog/pkg/cas"
	"github.com/dialogdb/dialog/pkg/errs"
	"github.com/dialogdb/dialog/pkg/metrics"
	"github.com/dialogdb/dialog/pkg/prolly"
	"github.com/dialogdb/dialog/pkg/router"
)

// NodeTransport is the wire pair sent in either direction: a node's
// content address and its encoded bytes. Because hashes self-describe
// their bytes, delivery order never matters to the receiver.
type NodeTransport struct {
	Hash  cas.Hash
	Bytes []byte
}

const archiveCatalog = "index"

var orderings = [3]artifact.Ordering{artifact.EAV, artifact.AEV, artifact.VAE}

// Push sends every node reachable from local's current revision but
// not from its base to remote, then asks remote to CAS-advance its
// branch cell from whatever State it currently holds to one with the
// same Revision, leaving the remote's own Base field (its bookkeeping
// for whatever it in turn syncs with) untouched. On success local's
// base catches up to its revision (§4.5 step 4). On a remote conflict
// — the remote's branch advanced between our read and our publish —
// the error remote.MemoryPublish returns is returned unwrapped
// (errs.KindConflictOnPublish) so the caller can Pull, merge, and
// retry per §4.5 "Conflicts".
func Push(ctx context.Context, local *branch.Branch, subject capability.Subject, remote router.Connection) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.SyncDuration, "push")

	cellChain := capability.CellChain(subject, local.ID())
	archiveChain := capability.ArchiveChain(subject, archiveCatalog)

	state, err := local.State(ctx)
	if err != nil {
		return err
	}
	if state.Revision == state.Base {
		return nil
	}

	remoteBytes, ok, err := remote.MemoryResolve(ctx, capability.NewInvocation[capability.MemoryResolve](cellChain, capability.MemoryResolveInput{BranchID: local.ID()}))
	if err != nil {
		return err
	}
	if !ok {
		return errs.New(errs.KindBranchNotFound, "remote has never published branch "+local.ID())
	}
	remoteState, err := branch.DecodeState(remoteBytes)
	if err != nil {
		return err
	}
	if remoteState.Revision != state.Base {
		metrics.SyncConflictsTotal.WithLabelValues(local.ID()).Inc()
		return errs.ConflictOnPublish(remoteBytes)
	}

	store := local.Store().Store()
	novelCount := 0
	for _, ordering := range orderings {
		known := state.Base.Root(ordering)
		n, err := transmitDifference(ctx, store, archiveChain, remote, &known, state.Revision.Root(ordering))
		if err != nil {
			return err
		}
		novelCount += n
	}
	metrics.SyncNovelNodesTotal.WithLabelValues("push").Add(float64(novelCount))

	newRemoteState := branch.State{ID: remoteState.ID, Revision: state.Revision, Base: remoteState.Base}
	want, err := newRemoteState.Encode()
	if err != nil {
		return err
	}

	if err := remote.MemoryPublish(ctx, capability.NewInvocation[capability.MemoryPublish](cellChain, capability.MemoryPublishInput{
		BranchID: local.ID(),
		Expected: remoteBytes,
		New:      want,
	})); err != nil {
		metrics.SyncConflictsTotal.WithLabelValues(local.ID()).Inc()
		return err
	}

	return local.Reset(ctx, state.Revision)
}

// Pull reads remote's current revision for the branch, fetches every
// node reachable from it but not yet known locally, writes them to
// local CAS, and fast-forwards local so both revision and base equal
// the remote's revision (§4.5 pull steps 1-4).
func Pull(ctx context.Context, local *branch.Branch, subject capability.Subject, remote router.Connection) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.SyncDuration, "pull")

	cellChain := capability.CellChain(subject, local.ID())
	archiveChain := capability.ArchiveChain(subject, archiveCatalog)

	remoteBytes, ok, err := remote.MemoryResolve(ctx, capability.NewInvocation[capability.MemoryResolve](cellChain, capability.MemoryResolveInput{BranchID: local.ID()}))
	if err != nil {
		return err
	}
	if !ok {
		return errs.New(errs.KindBranchNotFound, "remote has never published branch "+local.ID())
	}
	remoteState, err := branch.DecodeState(remoteBytes)
	if err != nil {
		return err
	}
	remoteRevision := remoteState.Revision

	state, err := local.State(ctx)
	if err != nil {
		return err
	}
	if remoteRevision == state.Revision {
		return nil
	}

	store := local.Store().Store()
	novelCount := 0
	for _, ordering := range orderings {
		known := state.Base.Root(ordering)
		n, err := fetchDifference(ctx, store, archiveChain, remote, &known, remoteRevision.Root(ordering))
		if err != nil {
			return err
		}
		novelCount += n
	}
	metrics.SyncNovelNodesTotal.WithLabelValues("pull").Add(float64(novelCount))

	return local.Advance(ctx, remoteRevision, remoteRevision)
}

// transmitDifference drains the novelty between known and novel out of
// the local store and hands each node to remote via ArchivePut.
func transmitDifference(ctx context.Context, store *cas.Store, archiveChain capability.Chain, remote router.Connection, known *cas.Hash, novel cas.Hash) (int, error) {
	cur := prolly.Difference(ctx, store, known, novel)
	count := 0
	for {
		n, has, err := cur.Next(ctx)
		if err != nil {
			return count, err
		}
		if !has {
			return count, nil
		}
		if err := remote.ArchivePut(ctx, capability.NewInvocation[capability.ArchivePut](archiveChain, capability.ArchivePutInput{Catalog: archiveCatalog, Bytes: n.Bytes})); err != nil {
			return count, err
		}
		count++
	}
}

// fetchDifference enumerates the novelty between known and novel using
// a store that transparently fetches missing nodes from remote and
// writes them through to local CAS as it reads them (§4.5 "the
// tree-walk on the receiving side reads lazily").
func fetchDifference(ctx context.Context, local *cas.Store, archiveChain capability.Chain, remote router.Connection, known *cas.Hash, novel cas.Hash) (int, error) {
	fetching := cas.New(&remoteBackingBackend{local: local.Backend(), remote: remote, archiveChain: archiveChain}, local.Catalog())
	cur := prolly.Difference(ctx, fetching, known, novel)
	count := 0
	for {
		_, has, err := cur.Next(ctx)
		if err != nil {
			return count, err
		}
		if !has {
			return count, nil
		}
		count++
	}
}

// remoteBackingBackend satisfies cas.Backend by checking local first
// and, on a miss, fetching from remote and writing the result through
// to local before returning it.
type remoteBackingBackend struct {
	local        cas.Backend
	remote       router.Connection
	archiveChain capability.Chain
}

func (b *remoteBackingBackend) Get(ctx context.Context, catalog string, key []byte) ([]byte, bool, error) {
	v, ok, err := b.local.Get(ctx, catalog, key)
	if err != nil {
		return nil, false, err
	}
	if ok {
		return v, true, nil
	}

	var hash [32]byte
	copy(hash[:], key)
	remoteBytes, found, err := b.remote.ArchiveGet(ctx, capability.NewInvocation[capability.ArchiveGet](b.archiveChain, capability.ArchiveGetInput{Catalog: catalog, Hash: hash}))
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	if err := b.local.Put(ctx, catalog, key, remoteBytes); err != nil {
		return nil, false, err
	}
	return remoteBytes, true, nil
}

func (b *remoteBackingBackend) Put(ctx context.Context, catalog string, key []byte, value []byte) error {
	return b.local.Put(ctx, catalog, key, value)
}
