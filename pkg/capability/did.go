// Package capability implements the attenuated capability chains that
// gate every effect the core performs: archive Get/Put, memory
// Resolve/Publish, and remote invocations routed to another replica.
package capability

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// didKeyPrefix is the multicodec prefix for an Ed25519 public key
// (0xed, 0x01), per the did:key method.
var didKeyPrefix = []byte{0xed, 0x01}

// Subject is the DID of the principal a capability chain originates
// from. The core never signs anything itself — a Subject is just the
// public identity a Signer proves possession of.
type Subject struct {
	publicKey ed25519.PublicKey
}

// NewSubject wraps an Ed25519 public key as a Subject.
func NewSubject(pub ed25519.PublicKey) Subject {
	cp := make(ed25519.PublicKey, len(pub))
	copy(cp, pub)
	return Subject{publicKey: cp}
}

// PublicKey returns the subject's raw Ed25519 public key bytes.
func (s Subject) PublicKey() ed25519.PublicKey { return s.publicKey }

// String renders the subject as a did:key URI.
func (s Subject) String() string {
	payload := append(append([]byte(nil), didKeyPrefix...), s.publicKey...)
	return "did:key:z" + base58.Encode(payload)
}
