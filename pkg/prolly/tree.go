// Package prolly implements the prolly tree: an ordered, content-
// addressed search tree whose node boundaries are a deterministic
// function of each key's hash, so two trees holding the same key set
// always converge on the same shape and the same root hash regardless
// of insertion order.
package prolly

import (
	"context"
	"sort"

	"github.com/dialogdb/dialog/pkg/artifact"
	"github.com/dialogdb/dialog/pkg/cas"
)

// Config holds the parameters a tree is built with. BranchFactor (m)
// controls the expected fan-out via the rank boundary rule; it must
// match across every tree an operation compares or diffs.
type Config struct {
	BranchFactor int
}

func (c Config) branchFactor() int {
	if c.BranchFactor <= 0 {
		return DefaultBranchFactor
	}
	return c.BranchFactor
}

// Tree is a prolly tree view bound to a CAS store and a branch factor.
// It holds no mutable state itself — every operation takes and returns
// an explicit root hash, matching the revision model's "root is just a
// value" semantics.
type Tree struct {
	store  *cas.Store
	config Config
}

// New returns a Tree reading and writing nodes through store.
func New(store *cas.Store, config Config) *Tree {
	return &Tree{store: store, config: config}
}

// EmptyHash is the content address of the canonical empty tree: a
// single empty segment node at level 0.
func (t *Tree) EmptyHash(ctx context.Context) (cas.Hash, error) {
	return storeNode(ctx, t.store, &Node{Kind: KindSegment, Level: 0})
}

// Get descends from root looking for key, returning the stored value
// bytes (wire-encoded State[Datum]) if present.
func (t *Tree) Get(ctx context.Context, root cas.Hash, key artifact.Key) ([]byte, bool, error) {
	h := root
	for {
		node, err := loadNode(ctx, t.store, h)
		if err != nil {
			return nil, false, err
		}
		if node.Kind == KindSegment {
			i := sort.Search(len(node.Entries), func(i int) bool {
				return !node.Entries[i].Key.Less(key)
			})
			if i < len(node.Entries) && node.Entries[i].Key == key {
				return node.Entries[i].Value, true, nil
			}
			return nil, false, nil
		}
		i := sort.Search(len(node.Links), func(i int) bool {
			return !node.Links[i].UpperBound.Less(key)
		})
		if i == len(node.Links) {
			return nil, false, nil
		}
		h = node.Links[i].Child
	}
}

// Set returns the root of the tree obtained by writing value at key,
// replacing any existing entry. It materializes the full entry set and
// rebuilds from scratch (see build.go): correct because node shape
// depends only on the key set, not on edit history.
func (t *Tree) Set(ctx context.Context, root cas.Hash, key artifact.Key, value []byte) (cas.Hash, error) {
	entries, err := t.collectAll(ctx, root)
	if err != nil {
		return cas.Hash{}, err
	}
	entries = upsert(entries, Entry{Key: key, Value: value})
	return buildAndStore(ctx, t.store, entries, t.config.branchFactor())
}

// Delete returns the root of the tree obtained by removing key, or the
// same root unchanged if key was absent.
func (t *Tree) Delete(ctx context.Context, root cas.Hash, key artifact.Key) (cas.Hash, error) {
	entries, err := t.collectAll(ctx, root)
	if err != nil {
		return cas.Hash{}, err
	}
	out, removed := remove(entries, key)
	if !removed {
		return root, nil
	}
	return buildAndStore(ctx, t.store, out, t.config.branchFactor())
}

// collectAll reads every entry in the tree rooted at h, in key order.
func (t *Tree) collectAll(ctx context.Context, h cas.Hash) ([]Entry, error) {
	node, err := loadNode(ctx, t.store, h)
	if err != nil {
		return nil, err
	}
	if node.Kind == KindSegment {
		return append([]Entry(nil), node.Entries...), nil
	}
	var out []Entry
	for _, link := range node.Links {
		sub, err := t.collectAll(ctx, link.Child)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

func upsert(entries []Entry, e Entry) []Entry {
	i := sort.Search(len(entries), func(i int) bool {
		return !entries[i].Key.Less(e.Key)
	})
	if i < len(entries) && entries[i].Key == e.Key {
		out := append([]Entry(nil), entries...)
		out[i] = e
		return out
	}
	out := make([]Entry, 0, len(entries)+1)
	out = append(out, entries[:i]...)
	out = append(out, e)
	out = append(out, entries[i:]...)
	return out
}

func remove(entries []Entry, key artifact.Key) ([]Entry, bool) {
	i := sort.Search(len(entries), func(i int) bool {
		return !entries[i].Key.Less(key)
	})
	if i >= len(entries) || entries[i].Key != key {
		return entries, false
	}
	out := make([]Entry, 0, len(entries)-1)
	out = append(out, entries[:i]...)
	out = append(out, entries[i+1:]...)
	return out, true
}
