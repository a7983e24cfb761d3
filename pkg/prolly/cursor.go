package prolly

import (
	"context"
	"sort"

	"github.com/dialogdb/dialog/pkg/artifact"
	"github.com/dialogdb/dialog/pkg/cas"
)

// frame is one level of an explicit descent stack: the node at this
// level, and the index of the next child/entry to visit within it.
type frame struct {
	node *Node
	idx  int
}

// RangeCursor yields entries in [lower, upper) (upper exclusive; with
// noUpper set there is no upper bound) in key order, reading nodes lazily —
// only the nodes on the path to the next entry are ever fetched. It is
// a plain pull-based iterator over an explicit stack, not a goroutine
// or generator, so abandoning it mid-stream costs nothing beyond the
// frames already pushed.
type RangeCursor struct {
	store *cas.Store
	upper artifact.Key
	noUpper bool
	stack []frame
	done  bool
}

// StreamRange opens a RangeCursor over [lower, upper) under root. A
// zero-value upper with openUpper=true streams to the end of the tree.
func StreamRange(ctx context.Context, store *cas.Store, root cas.Hash, lower artifact.Key, upper artifact.Key, openUpper bool) (*RangeCursor, error) {
	c := &RangeCursor{store: store, upper: upper, noUpper: openUpper}
	if err := c.descend(ctx, root, lower); err != nil {
		return nil, err
	}
	return c, nil
}

// descend pushes the path from root down to the first entry >= lower.
func (c *RangeCursor) descend(ctx context.Context, h cas.Hash, lower artifact.Key) error {
	for {
		node, err := loadNode(ctx, c.store, h)
		if err != nil {
			return err
		}
		if node.Kind == KindSegment {
			i := sort.Search(len(node.Entries), func(i int) bool {
				return !node.Entries[i].Key.Less(lower)
			})
			c.stack = append(c.stack, frame{node: node, idx: i})
			if i >= len(node.Entries) {
				c.advanceStack()
			}
			return nil
		}
		i := sort.Search(len(node.Links), func(i int) bool {
			return !node.Links[i].UpperBound.Less(lower)
		})
		if i >= len(node.Links) {
			c.stack = append(c.stack, frame{node: node, idx: i})
			c.done = true
			return nil
		}
		c.stack = append(c.stack, frame{node: node, idx: i + 1})
		h = node.Links[i].Child
	}
}

// advanceStack pops exhausted frames off the top of the stack so the
// next Next call starts from a frame with work left.
func (c *RangeCursor) advanceStack() {
	for len(c.stack) > 0 {
		top := &c.stack[len(c.stack)-1]
		if top.node.Kind == KindSegment {
			if top.idx < len(top.node.Entries) {
				return
			}
		} else if top.idx < len(top.node.Links) {
			return
		}
		c.stack = c.stack[:len(c.stack)-1]
	}
	c.done = true
}

// Next returns the next entry in range, or ok=false once the range (or
// the tree) is exhausted.
func (c *RangeCursor) Next(ctx context.Context) (Entry, bool, error) {
	for {
		if c.done || len(c.stack) == 0 {
			return Entry{}, false, nil
		}
		top := &c.stack[len(c.stack)-1]

		if top.node.Kind == KindSegment {
			e := top.node.Entries[top.idx]
			if !c.noUpper && !e.Key.Less(c.upper) {
				c.done = true
				return Entry{}, false, nil
			}
			top.idx++
			c.advanceStack()
			return e, true, nil
		}

		link := top.node.Links[top.idx]
		top.idx++
		if err := c.descendInto(ctx, link.Child); err != nil {
			return Entry{}, false, err
		}
	}
}

func (c *RangeCursor) descendInto(ctx context.Context, h cas.Hash) error {
	node, err := loadNode(ctx, c.store, h)
	if err != nil {
		return err
	}
	if node.Kind == KindSegment {
		c.stack = append(c.stack, frame{node: node, idx: 0})
		if len(node.Entries) == 0 {
			c.advanceStack()
		}
		return nil
	}
	c.stack = append(c.stack, frame{node: node, idx: 0})
	if len(node.Links) == 0 {
		c.advanceStack()
		return nil
	}
	link := node.Links[0]
	c.stack[len(c.stack)-1].idx = 1
	return c.descendInto(ctx, link.Child)
}
