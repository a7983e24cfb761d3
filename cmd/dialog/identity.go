package main

import (
	"crypto/ed25519"

	"github.com/dialogdb/dialog/pkg/capability"
	"lukechampine.com/blake3"
)

// subjectFromPassphrase derives this process's local identity the way
// the original's Operator::from_passphrase does: the passphrase's
// blake3 hash seeds an Ed25519 key deterministically, so the same
// passphrase always recovers the same Subject without a key file. This
// is meant for single-operator development and test deployments —
// pkg/capability.Signer is where a production caller would plug in a
// real key management story instead.
func subjectFromPassphrase(passphrase string) capability.Subject {
	seed := blake3.Sum256([]byte(passphrase))
	priv := ed25519.NewKeyFromSeed(seed[:])
	pub := priv.Public().(ed25519.PublicKey)
	return capability.NewSubject(pub)
}
