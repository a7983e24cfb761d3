package capability

import "context"

// Signer is consumed opaquely by the core: it proves possession of a
// Subject's private key without the core ever handling key material
// itself. No concrete implementation ships here — Ed25519 signing and
// UCAN delegation are explicitly out of scope (§1); callers inject a
// Signer built elsewhere.
type Signer interface {
	Subject() Subject
	Sign(ctx context.Context, bytes []byte) ([]byte, error)
}
