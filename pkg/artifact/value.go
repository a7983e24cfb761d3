package artifact

import (
	"encoding/binary"
	"math"
	"math/big"

	"github.com/dialogdb/dialog/pkg/errs"
	"lukechampine.com/blake3"
)

// Tag identifies which variant of the Value sum type a payload encodes.
type Tag uint8

const (
	TagNull Tag = iota
	TagBytes
	TagEntity
	TagBoolean
	TagString
	TagUnsignedInt128
	TagSignedInt128
	TagFloat64
	TagStructured
	TagSymbol
)

func (t Tag) String() string {
	switch t {
	case TagNull:
		return "null"
	case TagBytes:
		return "bytes"
	case TagEntity:
		return "entity"
	case TagBoolean:
		return "boolean"
	case TagString:
		return "string"
	case TagUnsignedInt128:
		return "uint128"
	case TagSignedInt128:
		return "int128"
	case TagFloat64:
		return "float64"
	case TagStructured:
		return "structured"
	case TagSymbol:
		return "symbol"
	default:
		return "unknown"
	}
}

// Reference is the 32-byte BLAKE3 hash of a Value's encoded bytes.
// Keys within a tree carry only the Reference; the Datum at the leaf
// carries the full Value bytes.
type Reference [32]byte

// Value is a tagged sum over the ten variants the data model supports.
// The zero Value is TagNull.
type Value struct {
	tag     Tag
	bytes   []byte // Bytes, String, Symbol, Structured (pre-encoded CBOR)
	entity  Entity
	boolean bool
	u128    [16]byte
	i128    [16]byte
	f64     float64
}

func NullValue() Value { return Value{tag: TagNull} }

func BytesValue(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{tag: TagBytes, bytes: cp}
}

func EntityValue(e Entity) Value { return Value{tag: TagEntity, entity: e} }

func BooleanValue(b bool) Value { return Value{tag: TagBoolean, boolean: b} }

func StringValue(s string) Value { return Value{tag: TagString, bytes: []byte(s)} }

func SymbolValue(s string) Value { return Value{tag: TagSymbol, bytes: []byte(s)} }

func Float64Value(f float64) Value { return Value{tag: TagFloat64, f64: f} }

// UnsignedInt128Value accepts a non-negative big.Int of at most 128 bits.
func UnsignedInt128Value(n *big.Int) (Value, error) {
	if n.Sign() < 0 {
		return Value{}, errs.New(errs.KindInvalidValue, "unsigned int128 must be non-negative")
	}
	b := n.Bytes()
	if len(b) > 16 {
		return Value{}, errs.New(errs.KindInvalidValue, "unsigned int128 overflow")
	}
	var out [16]byte
	copy(out[16-len(b):], b)
	return Value{tag: TagUnsignedInt128, u128: out}, nil
}

// SignedInt128Value accepts a big.Int representable in 128-bit two's
// complement.
func SignedInt128Value(n *big.Int) (Value, error) {
	enc, err := encodeTwosComplement128(n)
	if err != nil {
		return Value{}, err
	}
	return Value{tag: TagSignedInt128, i128: enc}, nil
}

// StructuredValue accepts any CBOR-marshalable Go value (nested maps,
// slices, scalars) and stores its canonical CBOR encoding as payload.
func StructuredValue(v any) (Value, error) {
	b, err := canonicalCBOR(v)
	if err != nil {
		return Value{}, errs.Wrap(errs.KindInvalidValue, "encode structured value", err)
	}
	return Value{tag: TagStructured, bytes: b}, nil
}

func (v Value) Tag() Tag { return v.tag }

func (v Value) AsBytes() ([]byte, bool) {
	if v.tag != TagBytes {
		return nil, false
	}
	return v.bytes, true
}

func (v Value) AsEntity() (Entity, bool) {
	if v.tag != TagEntity {
		return Entity{}, false
	}
	return v.entity, true
}

func (v Value) AsBoolean() (bool, bool) {
	if v.tag != TagBoolean {
		return false, false
	}
	return v.boolean, true
}

func (v Value) AsString() (string, bool) {
	if v.tag != TagString {
		return "", false
	}
	return string(v.bytes), true
}

func (v Value) AsSymbol() (string, bool) {
	if v.tag != TagSymbol {
		return "", false
	}
	return string(v.bytes), true
}

func (v Value) AsFloat64() (float64, bool) {
	if v.tag != TagFloat64 {
		return 0, false
	}
	return v.f64, true
}

func (v Value) AsUnsignedInt128() (*big.Int, bool) {
	if v.tag != TagUnsignedInt128 {
		return nil, false
	}
	return new(big.Int).SetBytes(v.u128[:]), true
}

func (v Value) AsSignedInt128() (*big.Int, bool) {
	if v.tag != TagSignedInt128 {
		return nil, false
	}
	return decodeTwosComplement128(v.i128), true
}

func (v Value) AsStructuredCBOR() ([]byte, bool) {
	if v.tag != TagStructured {
		return nil, false
	}
	return v.bytes, true
}

// Encode serializes the value as (tag_byte, payload_bytes).
func (v Value) Encode() []byte {
	switch v.tag {
	case TagNull:
		return []byte{byte(TagNull)}
	case TagBytes, TagString, TagSymbol, TagStructured:
		out := make([]byte, 1+len(v.bytes))
		out[0] = byte(v.tag)
		copy(out[1:], v.bytes)
		return out
	case TagEntity:
		out := make([]byte, 1+EntitySize)
		out[0] = byte(TagEntity)
		copy(out[1:], v.entity[:])
		return out
	case TagBoolean:
		b := byte(0)
		if v.boolean {
			b = 1
		}
		return []byte{byte(TagBoolean), b}
	case TagUnsignedInt128:
		out := make([]byte, 1+16)
		out[0] = byte(TagUnsignedInt128)
		copy(out[1:], v.u128[:])
		return out
	case TagSignedInt128:
		out := make([]byte, 1+16)
		out[0] = byte(TagSignedInt128)
		copy(out[1:], v.i128[:])
		return out
	case TagFloat64:
		out := make([]byte, 1+8)
		out[0] = byte(TagFloat64)
		binary.BigEndian.PutUint64(out[1:], math.Float64bits(v.f64))
		return out
	default:
		return []byte{byte(TagNull)}
	}
}

// Reference returns the BLAKE3 hash of the value's encoded bytes.
func (v Value) Reference() Reference {
	return Reference(blake3.Sum256(v.Encode()))
}

// DecodeValue parses bytes produced by Encode.
func DecodeValue(b []byte) (Value, error) {
	if len(b) == 0 {
		return Value{}, errs.New(errs.KindInvalidValue, "empty value encoding")
	}
	tag := Tag(b[0])
	payload := b[1:]
	switch tag {
	case TagNull:
		return NullValue(), nil
	case TagBytes:
		return BytesValue(payload), nil
	case TagString:
		return StringValue(string(payload)), nil
	case TagSymbol:
		return SymbolValue(string(payload)), nil
	case TagStructured:
		return Value{tag: TagStructured, bytes: append([]byte(nil), payload...)}, nil
	case TagEntity:
		e, err := EntityFromBytes(payload)
		if err != nil {
			return Value{}, errs.Wrap(errs.KindInvalidValue, "decode entity value", err)
		}
		return EntityValue(e), nil
	case TagBoolean:
		if len(payload) != 1 {
			return Value{}, errs.New(errs.KindInvalidValue, "boolean payload must be 1 byte")
		}
		return BooleanValue(payload[0] != 0), nil
	case TagUnsignedInt128:
		if len(payload) != 16 {
			return Value{}, errs.New(errs.KindInvalidValue, "uint128 payload must be 16 bytes")
		}
		var out [16]byte
		copy(out[:], payload)
		return Value{tag: TagUnsignedInt128, u128: out}, nil
	case TagSignedInt128:
		if len(payload) != 16 {
			return Value{}, errs.New(errs.KindInvalidValue, "int128 payload must be 16 bytes")
		}
		var out [16]byte
		copy(out[:], payload)
		return Value{tag: TagSignedInt128, i128: out}, nil
	case TagFloat64:
		if len(payload) != 8 {
			return Value{}, errs.New(errs.KindInvalidValue, "float64 payload must be 8 bytes")
		}
		return Float64Value(math.Float64frombits(binary.BigEndian.Uint64(payload))), nil
	default:
		return Value{}, errs.New(errs.KindInvalidValue, "unknown value tag")
	}
}

func encodeTwosComplement128(n *big.Int) ([16]byte, error) {
	var out [16]byte
	max := new(big.Int).Lsh(big.NewInt(1), 127)
	min := new(big.Int).Neg(max)
	if n.Cmp(min) < 0 || n.Cmp(new(big.Int).Sub(max, big.NewInt(1))) > 0 {
		return out, errs.New(errs.KindInvalidValue, "signed int128 overflow")
	}
	mod := new(big.Int).Lsh(big.NewInt(1), 128)
	u := new(big.Int).Mod(n, mod)
	b := u.Bytes()
	copy(out[16-len(b):], b)
	return out, nil
}

func decodeTwosComplement128(b [16]byte) *big.Int {
	u := new(big.Int).SetBytes(b[:])
	signBit := new(big.Int).Lsh(big.NewInt(1), 127)
	if u.Cmp(signBit) >= 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), 128)
		u.Sub(u, mod)
	}
	return u
}
