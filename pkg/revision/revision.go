// Package revision implements the Revision value: the three index
// roots that describe one consistent snapshot of a branch's triple
// store, plus its own content address.
package revision

import (
	"github.com/dialogdb/dialog/pkg/artifact"
	"github.com/dialogdb/dialog/pkg/cas"
	"github.com/fxamacker/cbor/v2"
)

// Revision pairs the three index tree roots that together describe one
// consistent set of (entity, attribute, value, state) assertions.
type Revision struct {
	EntityIndexRoot    cas.Hash
	AttributeIndexRoot cas.Hash
	ValueIndexRoot     cas.Hash
}

// wire is the canonical CBOR shape of a Revision; field order is fixed
// and the encoder is configured for deterministic map keys, so two
// Revisions with the same roots always produce the same bytes.
type wire struct {
	EntityIndexRoot    [32]byte `cbor:"entity_index_root"`
	AttributeIndexRoot [32]byte `cbor:"attribute_index_root"`
	ValueIndexRoot     [32]byte `cbor:"value_index_root"`
}

var cborEncMode = func() cbor.EncMode {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic("revision: building canonical cbor mode: " + err.Error())
	}
	return mode
}()

// Empty is the all-zero-roots revision, the starting point of every
// fresh branch.
var Empty = Revision{}

// IsEmpty reports whether r is the all-zero-roots revision.
func (r Revision) IsEmpty() bool {
	return r.EntityIndexRoot.IsZero() && r.AttributeIndexRoot.IsZero() && r.ValueIndexRoot.IsZero()
}

// Encode serializes r as canonical CBOR.
func (r Revision) Encode() ([]byte, error) {
	w := wire{
		EntityIndexRoot:    [32]byte(r.EntityIndexRoot),
		AttributeIndexRoot: [32]byte(r.AttributeIndexRoot),
		ValueIndexRoot:     [32]byte(r.ValueIndexRoot),
	}
	return cborEncMode.Marshal(w)
}

// Decode is the inverse of Encode.
func Decode(b []byte) (Revision, error) {
	var w wire
	if err := cbor.Unmarshal(b, &w); err != nil {
		return Revision{}, err
	}
	return Revision{
		EntityIndexRoot:    cas.Hash(w.EntityIndexRoot),
		AttributeIndexRoot: cas.Hash(w.AttributeIndexRoot),
		ValueIndexRoot:     cas.Hash(w.ValueIndexRoot),
	}, nil
}

// Hash returns the revision's own content address: BLAKE3 of its
// canonical CBOR encoding.
func (r Revision) Hash() (cas.Hash, error) {
	b, err := r.Encode()
	if err != nil {
		return cas.Hash{}, err
	}
	return cas.Sum(b), nil
}

// Root returns the index root for the given key ordering.
func (r Revision) Root(ordering artifact.Ordering) cas.Hash {
	switch ordering {
	case artifact.EAV:
		return r.EntityIndexRoot
	case artifact.AEV:
		return r.AttributeIndexRoot
	default:
		return r.ValueIndexRoot
	}
}

// WithRoot returns a copy of r with the root for ordering replaced.
func (r Revision) WithRoot(ordering artifact.Ordering, h cas.Hash) Revision {
	switch ordering {
	case artifact.EAV:
		r.EntityIndexRoot = h
	case artifact.AEV:
		r.AttributeIndexRoot = h
	default:
		r.ValueIndexRoot = h
	}
	return r
}
