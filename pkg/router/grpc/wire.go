package grpc

import "github.com/dialogdb/dialog/pkg/capability"

// Wire message types for the RouterService, hand-maintained in place
// of protoc-generated request/response structs (see codec.go): each
// mirrors one capability input/output pair one-for-one.

// wireAttenuation mirrors one capability.Attenuation on the wire.
type wireAttenuation struct {
	Kind  uint8
	Param string
}

// wireChain mirrors a capability.Chain on the wire: the subject's raw
// public key plus its ordered attenuation steps. Every request carries
// one so the server can independently re-check authority — a client's
// own Router already gates locally, but a network peer cannot be
// trusted to have done so honestly.
type wireChain struct {
	SubjectKey []byte
	Steps      []wireAttenuation
}

func encodeChain(c capability.Chain) wireChain {
	steps := c.Attenuations()
	wireSteps := make([]wireAttenuation, len(steps))
	for i, a := range steps {
		wireSteps[i] = wireAttenuation{Kind: uint8(a.Kind), Param: a.Param}
	}
	return wireChain{SubjectKey: []byte(c.Subject().PublicKey()), Steps: wireSteps}
}

func decodeChain(w wireChain) capability.Chain {
	chain := capability.NewChain(capability.NewSubject(w.SubjectKey))
	for _, s := range w.Steps {
		chain = chain.Attenuate(capability.Attenuation{Kind: capability.AttenuationKind(s.Kind), Param: s.Param})
	}
	return chain
}

type archiveGetRequest struct {
	Chain   wireChain
	Catalog string
	Hash    [32]byte
}

type archiveGetResponse struct {
	Bytes []byte
	Found bool
}

type archivePutRequest struct {
	Chain   wireChain
	Catalog string
	Bytes   []byte
}

type archivePutResponse struct{}

type memoryResolveRequest struct {
	Chain    wireChain
	BranchID string
}

type memoryResolveResponse struct {
	Bytes []byte
	Found bool
}

type memoryPublishRequest struct {
	Chain    wireChain
	BranchID string
	Expected []byte
	New      []byte
}

type memoryPublishResponse struct {
	Conflict bool
	Current  []byte
}
