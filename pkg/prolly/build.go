package prolly

import (
	"context"

	"github.com/dialogdb/dialog/pkg/artifact"
	"github.com/dialogdb/dialog/pkg/cas"
	"github.com/dialogdb/dialog/pkg/errs"
)

// MaxNodeBytes is the soft cap on an encoded node's size. A node that
// cannot be cut by the rank boundary rule before reaching this cap
// fails the commit rather than silently growing past it (§4.2,
// §9 — chosen over forcing a shape-dependent split, which would make
// the root hash depend on more than just the key set).
const MaxNodeBytes = 64 * 1024

type chunk struct {
	hash       cas.Hash
	upperBound artifact.Key
}

// buildAndStore rebuilds an entire tree from a fully materialized,
// key-sorted entry list and writes every node to store. It is the
// building block both Set and Delete use: they read the current tree's
// full entry set, apply one change, and rebuild from scratch. Because
// node boundaries are a pure function of key rank, the result is
// identical to whatever a path-local incremental edit would have
// produced — rebuilding is a deliberate simplicity-over-locality
// tradeoff, not a correctness cut (see DESIGN.md).
func buildAndStore(ctx context.Context, store *cas.Store, entries []Entry, m int) (cas.Hash, error) {
	chunks, err := buildSegments(ctx, store, entries, m)
	if err != nil {
		return cas.Hash{}, err
	}

	level := 0
	for len(chunks) > 1 {
		level++
		chunks, err = buildBranchLevel(ctx, store, chunks, level, m)
		if err != nil {
			return cas.Hash{}, err
		}
	}
	return chunks[0].hash, nil
}

func buildSegments(ctx context.Context, store *cas.Store, entries []Entry, m int) ([]chunk, error) {
	if len(entries) == 0 {
		node := &Node{Kind: KindSegment, Level: 0}
		h, err := storeNode(ctx, store, node)
		if err != nil {
			return nil, err
		}
		return []chunk{{hash: h}}, nil
	}

	var chunks []chunk
	var cur []Entry
	for i, e := range entries {
		cur = append(cur, e)
		rank := Rank(e.Key[:], m)
		last := i == len(entries)-1
		if isBoundary(rank, 0) || last {
			node := &Node{Kind: KindSegment, Level: 0, Entries: cur}
			if len(node.Encode()) > MaxNodeBytes && len(cur) > 1 {
				return nil, errs.New(errs.KindTree, "segment exceeds soft cap before a rank boundary cuts it")
			}
			h, err := storeNode(ctx, store, node)
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, chunk{hash: h, upperBound: e.Key})
			cur = nil
		}
	}
	return chunks, nil
}

func buildBranchLevel(ctx context.Context, store *cas.Store, children []chunk, level, m int) ([]chunk, error) {
	var out []chunk
	var cur []Link
	for i, c := range children {
		cur = append(cur, Link{UpperBound: c.upperBound, Child: c.hash})
		rank := Rank(c.upperBound[:], m)
		last := i == len(children)-1
		if isBoundary(rank, level) || last {
			node := &Node{Kind: KindBranch, Level: uint8(level), Links: cur}
			if len(node.Encode()) > MaxNodeBytes && len(cur) > 1 {
				return nil, errs.New(errs.KindTree, "branch exceeds soft cap before a rank boundary cuts it")
			}
			h, err := storeNode(ctx, store, node)
			if err != nil {
				return nil, err
			}
			out = append(out, chunk{hash: h, upperBound: cur[len(cur)-1].UpperBound})
			cur = nil
		}
	}
	return out, nil
}

func storeNode(ctx context.Context, store *cas.Store, n *Node) (cas.Hash, error) {
	return store.Put(ctx, n.Encode())
}

func loadNode(ctx context.Context, store *cas.Store, h cas.Hash) (*Node, error) {
	b, err := store.MustGet(ctx, h)
	if err != nil {
		return nil, err
	}
	n, err := DecodeNode(b)
	if err != nil {
		return nil, errs.Wrap(errs.KindTree, "decode node "+h.String(), err)
	}
	return n, nil
}
