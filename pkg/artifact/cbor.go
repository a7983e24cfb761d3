package artifact

import "github.com/fxamacker/cbor/v2"

// cborEncMode is the shared canonical encoding mode used everywhere the
// system needs deterministic CBOR: map keys sorted per RFC 8949 §4.2.1
// (the "core deterministic encoding" profile), no indefinite-length
// items. Two encodings of the same logical value always produce the
// same bytes, which is load-bearing for content addressing.
var cborEncMode = func() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	mode, err := opts.EncMode()
	if err != nil {
		panic("artifact: building canonical cbor mode: " + err.Error())
	}
	return mode
}()

func canonicalCBOR(v any) ([]byte, error) {
	return cborEncMode.Marshal(v)
}

func canonicalCBORUnmarshal(b []byte, v any) error {
	return cbor.Unmarshal(b, v)
}
