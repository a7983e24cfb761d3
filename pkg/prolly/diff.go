package prolly

import (
	"context"

	"github.com/dialogdb/dialog/pkg/cas"
)

// NovelNode is a node reachable from b's tree but not from a's: one
// that sync needs to read and transmit. Bytes is the node's raw
// encoding, ready to hash-verify and store on the receiving side.
type NovelNode struct {
	Hash  cas.Hash
	Bytes []byte
}

// pendingPair is one unit of comparison work: a node present only on
// the b side (aHash == nil) or a node present on both sides to be
// compared structurally (aHash != nil).
type pendingPair struct {
	aHash *cas.Hash
	bHash cas.Hash
}

// DiffCursor walks two tree roots in tandem and yields, in order, every
// node on the b side whose subtree is not already present on the a
// side — the "novelty" a push or pull needs to transfer. Any subtree
// whose hash matches on both sides is skipped without being read.
type DiffCursor struct {
	store   *cas.Store
	pending []pendingPair
}

// Difference opens a DiffCursor comparing aRoot (what the peer already
// has) against bRoot (what is being sent). Passing a nil aRoot treats
// every node reachable from bRoot as novel.
func Difference(_ context.Context, store *cas.Store, aRoot *cas.Hash, bRoot cas.Hash) *DiffCursor {
	return &DiffCursor{
		store:   store,
		pending: []pendingPair{{aHash: aRoot, bHash: bRoot}},
	}
}

// Next returns the next novel node, or ok=false once the entire
// difference has been streamed.
func (d *DiffCursor) Next(ctx context.Context) (NovelNode, bool, error) {
	for len(d.pending) > 0 {
		pair := d.pending[len(d.pending)-1]
		d.pending = d.pending[:len(d.pending)-1]

		if pair.aHash != nil && *pair.aHash == pair.bHash {
			continue // identical subtree: zero reads, nothing novel.
		}

		bNode, err := loadNode(ctx, d.store, pair.bHash)
		if err != nil {
			return NovelNode{}, false, err
		}
		bBytes := bNode.Encode()
		novel := NovelNode{Hash: pair.bHash, Bytes: bBytes}

		if bNode.Kind == KindSegment || pair.aHash == nil {
			if bNode.Kind == KindBranch {
				d.enqueueAllChildren(bNode)
			}
			return novel, true, nil
		}

		aNode, err := loadNode(ctx, d.store, *pair.aHash)
		if err != nil {
			return NovelNode{}, false, err
		}
		if aNode.Kind != KindBranch {
			// Shape diverged (branch vs segment at this position): treat
			// every b child as novel against an absent a side.
			d.enqueueAllChildren(bNode)
			return novel, true, nil
		}

		d.enqueueMergeJoin(aNode, bNode)
		return novel, true, nil
	}
	return NovelNode{}, false, nil
}

// enqueueAllChildren pushes every link of a branch node as novel
// against an absent a side.
func (d *DiffCursor) enqueueAllChildren(b *Node) {
	for i := len(b.Links) - 1; i >= 0; i-- {
		h := b.Links[i].Child
		d.pending = append(d.pending, pendingPair{aHash: nil, bHash: h})
	}
}

// enqueueMergeJoin pairs up a's and b's links by upper bound so that
// children can be compared even when rebalancing has shifted how keys
// are grouped between the two branches. Children present only in b (no
// a link with exactly the same upper bound) are treated as fully
// novel; a's extra children need no comparison since only b's novelty
// is being streamed.
func (d *DiffCursor) enqueueMergeJoin(a, b *Node) {
	ai, bi := 0, 0
	type work struct {
		aHash *cas.Hash
		bHash cas.Hash
	}
	var items []work
	for bi < len(b.Links) {
		bLink := b.Links[bi]
		for ai < len(a.Links) && a.Links[ai].UpperBound.Less(bLink.UpperBound) {
			ai++
		}
		if ai < len(a.Links) && a.Links[ai].UpperBound == bLink.UpperBound {
			h := a.Links[ai].Child
			items = append(items, work{aHash: &h, bHash: bLink.Child})
		} else {
			items = append(items, work{aHash: nil, bHash: bLink.Child})
		}
		bi++
	}
	for i := len(items) - 1; i >= 0; i-- {
		d.pending = append(d.pending, pendingPair{aHash: items[i].aHash, bHash: items[i].bHash})
	}
}
