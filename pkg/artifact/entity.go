package artifact

import (
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58"
)

// EntitySize is the fixed byte width of an Entity.
const EntitySize = 32

// Entity identifies a subject-of-discourse. It carries no attributes of
// its own; it is identity only. The zero Entity is never produced by
// NewEntity and is reserved as an invalid sentinel.
type Entity [EntitySize]byte

// NewEntity generates a fresh Entity from a cryptographically secure
// random source. Entities are never freed or reused.
func NewEntity() (Entity, error) {
	var e Entity
	if _, err := rand.Read(e[:]); err != nil {
		return Entity{}, fmt.Errorf("generate entity: %w", err)
	}
	return e, nil
}

// EntityFromBytes copies exactly EntitySize bytes into an Entity.
func EntityFromBytes(b []byte) (Entity, error) {
	var e Entity
	if len(b) != EntitySize {
		return Entity{}, fmt.Errorf("entity must be %d bytes, got %d", EntitySize, len(b))
	}
	copy(e[:], b)
	return e, nil
}

// IsZero reports whether e is the reserved all-zero sentinel.
func (e Entity) IsZero() bool { return e == Entity{} }

// Bytes returns the entity's raw 32 bytes.
func (e Entity) Bytes() []byte { return e[:] }

// didKeyPrefix is the multicodec varint prefix (0xed, 0x01) used by
// did:key for Ed25519 public keys. Entities are not Ed25519 keys, but
// the system renders them through the same did:key envelope so that
// entity references are visually consistent with subject DIDs at the
// boundary (rendering only; no cryptographic meaning is implied).
var didKeyPrefix = []byte{0xed, 0x01}

// String renders the entity as a did:key-prefixed base58 string, per
// the data model's "base58 with DID-key prefixes when exposed" rule.
func (e Entity) String() string {
	buf := make([]byte, 0, len(didKeyPrefix)+EntitySize)
	buf = append(buf, didKeyPrefix...)
	buf = append(buf, e[:]...)
	return "did:key:z" + base58.Encode(buf)
}
