package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dialogdb/dialog/pkg/cas"
	"github.com/dialogdb/dialog/pkg/prolly"
)

// treeLine is one rendered row of the Tree tab: its indentation depth
// and the text describing the node or entry at that depth.
type treeLine struct {
	depth int
	text  string
}

// renderTree walks the EAV-ordered index tree rooted at root and
// produces one line per node, indented by depth, followed by one line
// per leaf entry under its segment. Branch children are visited in
// link order, depth-first, the same traversal prolly.StreamRange uses
// internally — but here every node is shown, not just the entries in
// a range.
func renderTree(ctx context.Context, store *cas.Store, root cas.Hash) ([]treeLine, error) {
	var lines []treeLine
	var walk func(h cas.Hash, depth int) error
	walk = func(h cas.Hash, depth int) error {
		raw, ok, err := store.Get(ctx, h)
		if err != nil {
			return err
		}
		if !ok {
			lines = append(lines, treeLine{depth, fmt.Sprintf("<missing node %s>", h)})
			return nil
		}
		node, err := prolly.DecodeNode(raw)
		if err != nil {
			return err
		}

		if node.Kind == prolly.KindSegment {
			lines = append(lines, treeLine{depth, fmt.Sprintf("segment %s (%d entries)", h, len(node.Entries))})
			for _, e := range node.Entries {
				lines = append(lines, treeLine{depth + 1, fmt.Sprintf("key=%x", e.Key.Bytes())})
			}
			return nil
		}

		lines = append(lines, treeLine{depth, fmt.Sprintf("branch level=%d %s (%d children)", node.Level, h, len(node.Links))})
		for _, l := range node.Links {
			if err := walk(l.Child, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(root, 0); err != nil {
		return nil, err
	}
	return lines, nil
}

// renderTreeLinesCursor renders the same lines renderTree produced,
// prefixing the one at cursor with a marker so arrow-key navigation
// has something to show.
func renderTreeLinesCursor(lines []treeLine, cursor int) string {
	var b strings.Builder
	for i, l := range lines {
		marker := "  "
		if i == cursor {
			marker = "> "
		}
		b.WriteString(marker)
		b.WriteString(strings.Repeat("  ", l.depth))
		b.WriteString(l.text)
		b.WriteByte('\n')
	}
	return b.String()
}
