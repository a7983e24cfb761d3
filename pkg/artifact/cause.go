package artifact

import "lukechampine.com/blake3"

// Cause binds an artifact to its predecessor with the same (entity,
// attribute), giving last-writer-wins semantics a causal paper trail.
type Cause [32]byte

// NewCause computes hash(attribute_key_bytes ‖ entity_bytes ‖
// value_bytes ‖ previous_cause?) for the artifact that follows
// previous (or none, for the first artifact on an entity/attribute
// pair).
func NewCause(attr Attribute, of Entity, is Value, previous *Cause) Cause {
	h := blake3.New(32, nil)
	padded := attr.Padded()
	h.Write(padded[:])
	h.Write(of[:])
	h.Write(is.Encode())
	if previous != nil {
		h.Write(previous[:])
	}
	var out Cause
	copy(out[:], h.Sum(nil))
	return out
}

// CauseFrom computes the Cause that a subsequent artifact on the same
// (entity, attribute) should carry, given the prior artifact.
func CauseFrom(prior Artifact) Cause {
	return NewCause(prior.The, prior.Of, prior.Is, prior.Cause)
}

func (c Cause) Bytes() []byte { return c[:] }
