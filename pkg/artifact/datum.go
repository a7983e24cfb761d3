package artifact

import "github.com/fxamacker/cbor/v2"

// datumWire is the CBOR-serializable shape of a Datum. Field order is
// fixed so that two Datums encoding the same Artifact produce the same
// bytes.
type datumWire struct {
	Entity    [EntitySize]byte `cbor:"entity"`
	Attribute string           `cbor:"attribute"`
	ValueType uint8            `cbor:"value_type"`
	Value     []byte           `cbor:"value_bytes"`
	Cause     []byte           `cbor:"cause,omitempty"`
}

// Datum is the value stored at a tree leaf: enough to reconstruct the
// originating Artifact without consulting the other two indexes.
type Datum struct {
	Entity    Entity
	Attribute Attribute
	ValueType Tag
	ValueRef  Reference
	Value     Value
	Cause     *Cause
}

// NewDatum builds the Datum that represents a.
func NewDatum(a Artifact) Datum {
	return Datum{
		Entity:    a.Of,
		Attribute: a.The,
		ValueType: a.Is.Tag(),
		ValueRef:  a.Is.Reference(),
		Value:     a.Is,
		Cause:     a.Cause,
	}
}

// Artifact reconstructs the Artifact this Datum represents.
func (d Datum) Artifact() Artifact {
	return Artifact{The: d.Attribute, Of: d.Entity, Is: d.Value, Cause: d.Cause}
}

// EncodeCBOR serializes the Datum via canonical CBOR, used as the
// payload of a State wrapper inside a tree leaf.
func (d Datum) EncodeCBOR() ([]byte, error) {
	w := datumWire{
		Entity:    d.Entity,
		Attribute: string(d.Attribute),
		ValueType: uint8(d.ValueType),
		Value:     d.Value.Encode(),
	}
	if d.Cause != nil {
		w.Cause = d.Cause[:]
	}
	return canonicalCBOR(w)
}

// DecodeDatumCBOR is the inverse of EncodeCBOR.
func DecodeDatumCBOR(b []byte) (Datum, error) {
	var w datumWire
	if err := cbor.Unmarshal(b, &w); err != nil {
		return Datum{}, err
	}
	attr := Attribute(w.Attribute)
	val, err := DecodeValue(w.Value)
	if err != nil {
		return Datum{}, err
	}
	d := Datum{
		Entity:    w.Entity,
		Attribute: attr,
		ValueType: val.Tag(),
		ValueRef:  val.Reference(),
		Value:     val,
	}
	if len(w.Cause) == 32 {
		var c Cause
		copy(c[:], w.Cause)
		d.Cause = &c
	}
	return d, nil
}
