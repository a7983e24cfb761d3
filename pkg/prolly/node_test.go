package prolly

import (
	"testing"

	"github.com/dialogdb/dialog/pkg/artifact"
	"github.com/dialogdb/dialog/pkg/cas"
)

func keyFor(b byte) artifact.Key {
	var k artifact.Key
	k[0] = b
	return k
}

func TestNodeEncodeDecodeSegmentRoundTrip(t *testing.T) {
	n := &Node{
		Kind:  KindSegment,
		Level: 0,
		Entries: []Entry{
			{Key: keyFor(1), Value: []byte("a")},
			{Key: keyFor(2), Value: []byte("bb")},
		},
	}
	got, err := DecodeNode(n.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != n.Kind || got.Level != n.Level || len(got.Entries) != 2 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if string(got.Entries[1].Value) != "bb" {
		t.Fatalf("value mismatch: %q", got.Entries[1].Value)
	}
}

func TestNodeEncodeDecodeBranchRoundTrip(t *testing.T) {
	n := &Node{
		Kind:  KindBranch,
		Level: 1,
		Links: []Link{
			{UpperBound: keyFor(5), Child: cas.Sum([]byte("x"))},
			{UpperBound: keyFor(9), Child: cas.Sum([]byte("y"))},
		},
	}
	got, err := DecodeNode(n.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != KindBranch || len(got.Links) != 2 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Links[0].Child != n.Links[0].Child {
		t.Fatalf("child hash mismatch")
	}
}

func TestNodeHashDeterministic(t *testing.T) {
	n1 := &Node{Kind: KindSegment, Entries: []Entry{{Key: keyFor(1), Value: []byte("v")}}}
	n2 := &Node{Kind: KindSegment, Entries: []Entry{{Key: keyFor(1), Value: []byte("v")}}}
	if n1.Hash() != n2.Hash() {
		t.Fatalf("identical nodes hashed differently")
	}
}

func TestDecodeNodeRejectsTruncated(t *testing.T) {
	n := &Node{Kind: KindSegment, Entries: []Entry{{Key: keyFor(1), Value: []byte("v")}}}
	enc := n.Encode()
	for cut := 0; cut < len(enc); cut++ {
		if _, err := DecodeNode(enc[:cut]); err == nil {
			t.Fatalf("expected error decoding truncated input of length %d", cut)
		}
	}
}

func TestUpperBoundEmptySegment(t *testing.T) {
	n := &Node{Kind: KindSegment}
	if n.UpperBound() != (artifact.Key{}) {
		t.Fatalf("expected zero key for empty segment")
	}
}
