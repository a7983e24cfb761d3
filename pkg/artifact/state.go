package artifact

import "github.com/dialogdb/dialog/pkg/errs"

// State is the tagged union stored at every tree leaf: either an Added
// value, or an explicit Removed marker. Retractions are stored
// explicitly rather than by deleting the key, so that sync can observe
// them as novelty like any other write.
type State[T any] struct {
	added bool
	value T
}

func Added[T any](v T) State[T] { return State[T]{added: true, value: v} }
func Removed[T any]() State[T]  { return State[T]{added: false} }

func (s State[T]) IsAdded() bool { return s.added }
func (s State[T]) IsRemoved() bool { return !s.added }

// Value returns the wrapped value and true if this is an Added state.
func (s State[T]) Value() (T, bool) {
	return s.value, s.added
}

const (
	stateTagRemoved byte = 0
	stateTagAdded   byte = 1
)

// EncodeDatumState serializes State[Datum] per the wire format in §6:
// tag(1) ‖ cbor(Datum) for Added, tag(0) alone for Removed.
func EncodeDatumState(s State[Datum]) ([]byte, error) {
	if s.IsRemoved() {
		return []byte{stateTagRemoved}, nil
	}
	body, err := s.value.EncodeCBOR()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 1+len(body))
	out[0] = stateTagAdded
	copy(out[1:], body)
	return out, nil
}

// DecodeDatumState is the inverse of EncodeDatumState.
func DecodeDatumState(b []byte) (State[Datum], error) {
	if len(b) == 0 {
		return State[Datum]{}, errs.New(errs.KindInvalidState, "empty state encoding")
	}
	switch b[0] {
	case stateTagRemoved:
		return Removed[Datum](), nil
	case stateTagAdded:
		d, err := DecodeDatumCBOR(b[1:])
		if err != nil {
			return State[Datum]{}, errs.Wrap(errs.KindInvalidState, "decode added datum", err)
		}
		return Added(d), nil
	default:
		return State[Datum]{}, errs.New(errs.KindInvalidState, "unknown state tag")
	}
}
