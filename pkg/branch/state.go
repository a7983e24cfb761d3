package branch

import (
	"github.com/dialogdb/dialog/pkg/revision"
	"github.com/fxamacker/cbor/v2"
)

// State is the value persisted in a branch's cell: its id, current
// head revision, and the last revision known to agree with upstream.
type State struct {
	ID       string
	Revision revision.Revision
	Base     revision.Revision
}

type stateWire struct {
	ID       string   `cbor:"id"`
	Revision [32]byte `cbor:"revision_entity"`
	RevAttr  [32]byte `cbor:"revision_attribute"`
	RevValue [32]byte `cbor:"revision_value"`
	Base     [32]byte `cbor:"base_entity"`
	BaseAttr [32]byte `cbor:"base_attribute"`
	BaseVal  [32]byte `cbor:"base_value"`
}

var cborEncMode = func() cbor.EncMode {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic("branch: building canonical cbor mode: " + err.Error())
	}
	return mode
}()

// Encode serializes s as canonical CBOR for storage in a Cell.
func (s State) Encode() ([]byte, error) {
	w := stateWire{
		ID:       s.ID,
		Revision: [32]byte(s.Revision.EntityIndexRoot),
		RevAttr:  [32]byte(s.Revision.AttributeIndexRoot),
		RevValue: [32]byte(s.Revision.ValueIndexRoot),
		Base:     [32]byte(s.Base.EntityIndexRoot),
		BaseAttr: [32]byte(s.Base.AttributeIndexRoot),
		BaseVal:  [32]byte(s.Base.ValueIndexRoot),
	}
	return cborEncMode.Marshal(w)
}

// DecodeState is the inverse of State.Encode.
func DecodeState(b []byte) (State, error) {
	var w stateWire
	if err := cbor.Unmarshal(b, &w); err != nil {
		return State{}, err
	}
	return State{
		ID: w.ID,
		Revision: revision.Revision{
			EntityIndexRoot:    w.Revision,
			AttributeIndexRoot: w.RevAttr,
			ValueIndexRoot:     w.RevValue,
		},
		Base: revision.Revision{
			EntityIndexRoot:    w.Base,
			AttributeIndexRoot: w.BaseAttr,
			ValueIndexRoot:     w.BaseVal,
		},
	}, nil
}
