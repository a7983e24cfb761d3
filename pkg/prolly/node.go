package prolly

import (
	"encoding/binary"

	"github.com/dialogdb/dialog/pkg/artifact"
	"github.com/dialogdb/dialog/pkg/cas"
	"github.com/dialogdb/dialog/pkg/errs"
)

// Kind distinguishes the two node shapes. The numeric values match the
// wire tag in the node encoding (0 = branch, 1 = segment).
type Kind uint8

const (
	KindBranch  Kind = 0
	KindSegment Kind = 1
)

// Entry is one (key, value) pair inside a Segment (leaf) node. Value
// holds the wire-encoded State[Datum] bytes, not a decoded Datum.
type Entry struct {
	Key   artifact.Key
	Value []byte
}

// Link is one (upper_bound_key, child_hash) pair inside a Branch
// (internal) node. UpperBound is the maximum key in the referenced
// child's subtree.
type Link struct {
	UpperBound artifact.Key
	Child      cas.Hash
}

// Node is one prolly tree node: either a non-empty ordered Entries
// list (Segment, level 0) or a non-empty ordered Links list (Branch,
// level = children's level + 1).
type Node struct {
	Kind    Kind
	Level   uint8
	Entries []Entry // Segment only
	Links   []Link  // Branch only
}

// UpperBound returns the maximum key reachable from this node: the
// last entry's key for a segment, the last link's upper bound for a
// branch. Called on an empty segment (the empty tree's sole node) it
// returns the zero key, which is never a real key (real keys always
// carry a nonzero value reference).
func (n *Node) UpperBound() artifact.Key {
	if n.Kind == KindSegment {
		if len(n.Entries) == 0 {
			return artifact.Key{}
		}
		return n.Entries[len(n.Entries)-1].Key
	}
	if len(n.Links) == 0 {
		return artifact.Key{}
	}
	return n.Links[len(n.Links)-1].UpperBound
}

// Encode serializes the node per the wire framing: tag byte, level
// byte, varint entry/link count, then the entries or links themselves.
// Segment entries are (key_bytes, varint-len-prefixed value_bytes);
// branch links are (key_bytes, 32-byte hash).
func (n *Node) Encode() []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, byte(n.Kind), n.Level)

	var countBuf [binary.MaxVarintLen64]byte
	if n.Kind == KindSegment {
		c := binary.PutUvarint(countBuf[:], uint64(len(n.Entries)))
		buf = append(buf, countBuf[:c]...)
		for _, e := range n.Entries {
			buf = append(buf, e.Key[:]...)
			lenBuf := countBuf
			l := binary.PutUvarint(lenBuf[:], uint64(len(e.Value)))
			buf = append(buf, lenBuf[:l]...)
			buf = append(buf, e.Value...)
		}
		return buf
	}

	c := binary.PutUvarint(countBuf[:], uint64(len(n.Links)))
	buf = append(buf, countBuf[:c]...)
	for _, l := range n.Links {
		buf = append(buf, l.UpperBound[:]...)
		buf = append(buf, l.Child[:]...)
	}
	return buf
}

// Hash returns the BLAKE3 hash of the node's encoding, i.e. its
// content address within the CAS.
func (n *Node) Hash() cas.Hash { return cas.Sum(n.Encode()) }

// DecodeNode parses bytes produced by Encode.
func DecodeNode(b []byte) (*Node, error) {
	if len(b) < 2 {
		return nil, errs.New(errs.KindTree, "node encoding too short")
	}
	kind := Kind(b[0])
	level := b[1]
	rest := b[2:]

	count, n := binary.Uvarint(rest)
	if n <= 0 {
		return nil, errs.New(errs.KindTree, "malformed node count")
	}
	rest = rest[n:]

	node := &Node{Kind: kind, Level: level}
	if kind == KindSegment {
		entries := make([]Entry, 0, count)
		for i := uint64(0); i < count; i++ {
			if len(rest) < artifact.KeySize {
				return nil, errs.New(errs.KindTree, "truncated segment entry key")
			}
			var key artifact.Key
			copy(key[:], rest[:artifact.KeySize])
			rest = rest[artifact.KeySize:]

			valLen, m := binary.Uvarint(rest)
			if m <= 0 {
				return nil, errs.New(errs.KindTree, "malformed segment value length")
			}
			rest = rest[m:]
			if uint64(len(rest)) < valLen {
				return nil, errs.New(errs.KindTree, "truncated segment value")
			}
			value := append([]byte(nil), rest[:valLen]...)
			rest = rest[valLen:]

			entries = append(entries, Entry{Key: key, Value: value})
		}
		node.Entries = entries
		return node, nil
	}

	links := make([]Link, 0, count)
	for i := uint64(0); i < count; i++ {
		if len(rest) < artifact.KeySize+32 {
			return nil, errs.New(errs.KindTree, "truncated branch link")
		}
		var key artifact.Key
		copy(key[:], rest[:artifact.KeySize])
		rest = rest[artifact.KeySize:]
		var child cas.Hash
		copy(child[:], rest[:32])
		rest = rest[32:]
		links = append(links, Link{UpperBound: key, Child: child})
	}
	node.Links = links
	return node, nil
}
