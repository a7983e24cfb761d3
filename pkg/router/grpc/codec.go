package grpc

import (
	"github.com/fxamacker/cbor/v2"
	"google.golang.org/grpc/encoding"
)

// codecName is registered with grpc's encoding package and selected
// per-call via grpc.CallContentSubtype/grpc.ForceServerCodec. Using a
// canonical CBOR codec instead of protobuf lets the four router
// effects travel over a real grpc.Server/ClientConn without a protoc
// code-generation step: the wire messages in this package are plain
// Go structs, not generated proto.Message implementations.
const codecName = "cbor"

type cborCodec struct {
	encMode cbor.EncMode
}

func newCBORCodec() *cborCodec {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return &cborCodec{encMode: mode}
}

func (c *cborCodec) Marshal(v interface{}) ([]byte, error) {
	return c.encMode.Marshal(v)
}

func (c *cborCodec) Unmarshal(data []byte, v interface{}) error {
	return cbor.Unmarshal(data, v)
}

func (c *cborCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(newCBORCodec())
}
