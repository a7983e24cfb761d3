package artifact

import (
	"strings"

	"github.com/dialogdb/dialog/pkg/errs"
)

// AttributeSize is the fixed byte width an Attribute occupies inside a
// composite index key. Attribute strings shorter than this are
// right-padded with zero bytes; longer ones are rejected.
const AttributeSize = 64

// Attribute is a UTF-8 string of the form "namespace/predicate", at
// most AttributeSize bytes long, with a required namespace segment.
type Attribute string

// NewAttribute validates s and returns it as an Attribute.
func NewAttribute(s string) (Attribute, error) {
	if len(s) == 0 || len(s) > AttributeSize {
		return "", errs.New(errs.KindInvalidAttribute, "attribute must be 1 to 64 bytes")
	}
	slash := strings.IndexByte(s, '/')
	if slash <= 0 || slash == len(s)-1 {
		return "", errs.New(errs.KindInvalidAttribute, "attribute must be of the form namespace/predicate")
	}
	if !strings_isValidUTF8(s) {
		return "", errs.New(errs.KindInvalidAttribute, "attribute must be valid UTF-8")
	}
	return Attribute(s), nil
}

func strings_isValidUTF8(s string) bool {
	return strings.ToValidUTF8(s, "�") == s
}

// Padded returns the attribute's bytes right-padded with zeros to
// exactly AttributeSize, giving it a fixed slot inside a composite
// index key.
func (a Attribute) Padded() [AttributeSize]byte {
	var out [AttributeSize]byte
	copy(out[:], a)
	return out
}

// AttributeFromPadded reverses Padded, trimming trailing NUL bytes.
func AttributeFromPadded(b [AttributeSize]byte) Attribute {
	trimmed := strings.TrimRight(string(b[:]), "\x00")
	return Attribute(trimmed)
}

func (a Attribute) String() string { return string(a) }
