package revision

import (
	"testing"

	"github.com/dialogdb/dialog/pkg/cas"
)

func TestEmptyRevisionIsAllZero(t *testing.T) {
	if !Empty.IsEmpty() {
		t.Fatalf("Empty revision should report IsEmpty")
	}
	r := Revision{EntityIndexRoot: cas.Sum([]byte("x"))}
	if r.IsEmpty() {
		t.Fatalf("revision with a nonzero root should not report IsEmpty")
	}
}

func TestRevisionEncodeDecodeRoundTrip(t *testing.T) {
	r := Revision{
		EntityIndexRoot:    cas.Sum([]byte("e")),
		AttributeIndexRoot: cas.Sum([]byte("a")),
		ValueIndexRoot:     cas.Sum([]byte("v")),
	}
	b, err := r.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != r {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, r)
	}
}

func TestRevisionHashIsDeterministic(t *testing.T) {
	r1 := Revision{EntityIndexRoot: cas.Sum([]byte("x"))}
	r2 := Revision{EntityIndexRoot: cas.Sum([]byte("x"))}
	h1, err := r1.Hash()
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := r2.Hash()
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("identical revisions hashed differently")
	}

	r3 := Revision{AttributeIndexRoot: cas.Sum([]byte("x"))}
	h3, err := r3.Hash()
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h3 == h1 {
		t.Fatalf("revisions with roots in different slots hashed the same")
	}
}
