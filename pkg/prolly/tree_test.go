package prolly

import (
	"context"
	"math/rand"
	"testing"

	"github.com/dialogdb/dialog/pkg/artifact"
	"github.com/dialogdb/dialog/pkg/cas"
	"github.com/dialogdb/dialog/pkg/cas/memory"
)

func newTestTree() *Tree {
	store := cas.New(memory.New(), "index")
	return New(store, Config{BranchFactor: 16})
}

func randomKey(r *rand.Rand) artifact.Key {
	var k artifact.Key
	r.Read(k[:])
	return k
}

func buildFromKeys(t *testing.T, tree *Tree, keys []artifact.Key) cas.Hash {
	t.Helper()
	ctx := context.Background()
	root, err := tree.EmptyHash(ctx)
	if err != nil {
		t.Fatalf("empty hash: %v", err)
	}
	for _, k := range keys {
		root, err = tree.Set(ctx, root, k, []byte{1})
		if err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	return root
}

func TestTreeRootIndependentOfInsertionOrder(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	keys := make([]artifact.Key, 64)
	for i := range keys {
		keys[i] = randomKey(r)
	}

	tree1 := newTestTree()
	root1 := buildFromKeys(t, tree1, keys)

	shuffled := append([]artifact.Key(nil), keys...)
	r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	tree2 := newTestTree()
	root2 := buildFromKeys(t, tree2, shuffled)

	if root1 != root2 {
		t.Fatalf("root hash depends on insertion order: %s vs %s", root1, root2)
	}
}

func TestTreeGetSetDeleteRoundTrip(t *testing.T) {
	ctx := context.Background()
	tree := newTestTree()
	root, err := tree.EmptyHash(ctx)
	if err != nil {
		t.Fatalf("empty hash: %v", err)
	}

	r := rand.New(rand.NewSource(2))
	keys := make([]artifact.Key, 40)
	for i := range keys {
		keys[i] = randomKey(r)
		root, err = tree.Set(ctx, root, keys[i], []byte{byte(i)})
		if err != nil {
			t.Fatalf("set %d: %v", i, err)
		}
	}

	for i, k := range keys {
		v, ok, err := tree.Get(ctx, root, k)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !ok || len(v) != 1 || v[0] != byte(i) {
			t.Fatalf("get returned wrong value for key %d: %v ok=%v", i, v, ok)
		}
	}

	root, err = tree.Delete(ctx, root, keys[0])
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := tree.Get(ctx, root, keys[0]); ok {
		t.Fatalf("deleted key still present")
	}
	if _, ok, _ := tree.Get(ctx, root, keys[1]); !ok {
		t.Fatalf("unrelated key lost after delete")
	}
}

func TestTreeDeleteAbsentKeyIsNoop(t *testing.T) {
	ctx := context.Background()
	tree := newTestTree()
	root, _ := tree.EmptyHash(ctx)
	root, _ = tree.Set(ctx, root, keyFor(1), []byte{1})

	absent := keyFor(200)
	after, err := tree.Delete(ctx, root, absent)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if after != root {
		t.Fatalf("deleting an absent key changed the root")
	}
}

func TestTreeSetOverwritesExistingValue(t *testing.T) {
	ctx := context.Background()
	tree := newTestTree()
	root, _ := tree.EmptyHash(ctx)
	k := keyFor(1)
	root, _ = tree.Set(ctx, root, k, []byte{1})
	root, _ = tree.Set(ctx, root, k, []byte{9})

	v, ok, err := tree.Get(ctx, root, k)
	if err != nil || !ok {
		t.Fatalf("get failed: ok=%v err=%v", ok, err)
	}
	if v[0] != 9 {
		t.Fatalf("expected overwritten value 9, got %v", v)
	}
}
