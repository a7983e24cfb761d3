// Package branch implements the branch lifecycle: a named, durable
// pointer to a revision, published through compare-and-swap so
// concurrent writers converge instead of silently clobbering each
// other.
package branch

import (
	"context"

	"github.com/dialogdb/dialog/pkg/cas"
	"github.com/dialogdb/dialog/pkg/errs"
)

// Cell is a named, durable, monotonically advanced slot holding one
// encoded BranchState. It generalizes the teacher's single-purpose
// storage CRUD interface into the resolve/get-or-init/publish/CAS shape
// branches need.
type Cell struct {
	store *cas.Store
	key   []byte
}

// NewCell returns a Cell addressed by key (e.g. "local/<branch id>")
// within store's catalog. store should be scoped to the "cell"
// catalog, distinct from the "index" catalog tree nodes live in.
func NewCell(store *cas.Store, key string) *Cell {
	return &Cell{store: store, key: []byte(key)}
}

// Resolve reads the cell's current value, if any.
func (c *Cell) Resolve(ctx context.Context) ([]byte, bool, error) {
	return c.store.RawGet(ctx, c.key)
}

// GetOrInit resolves the cell; if absent, publishes def and returns it.
func (c *Cell) GetOrInit(ctx context.Context, def []byte) ([]byte, error) {
	v, ok, err := c.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		return v, nil
	}
	if err := c.Publish(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}

// Publish writes new unconditionally.
func (c *Cell) Publish(ctx context.Context, new []byte) error {
	return c.store.RawPut(ctx, c.key, new)
}

// CompareAndSwapPublish writes new iff the cell's current value equals
// expected. On mismatch it returns errs.ConflictOnPublish carrying the
// observed current bytes, per §4.5/§8 invariant 8.
func (c *Cell) CompareAndSwapPublish(ctx context.Context, expected, new []byte) error {
	ok, current, err := c.store.CAS(ctx, c.key, expected, new)
	if err != nil {
		return err
	}
	if !ok {
		return errs.ConflictOnPublish(current)
	}
	return nil
}
