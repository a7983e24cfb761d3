// Package cas implements the content-addressed store: a hash-keyed blob
// interface that verifies hash(bytes) == key on every read and write.
package cas

import (
	"context"
	"fmt"

	"github.com/dialogdb/dialog/pkg/errs"
	"github.com/dialogdb/dialog/pkg/metrics"
	"lukechampine.com/blake3"
)

// Hash is a 32-byte BLAKE3 content address.
type Hash [32]byte

// ZeroHash is the sentinel for "no content" (e.g. the empty revision).
var ZeroHash Hash

func (h Hash) String() string { return fmt.Sprintf("%x", h[:]) }

func (h Hash) IsZero() bool { return h == Hash{} }

// Sum computes the content address of b.
func Sum(b []byte) Hash { return Hash(blake3.Sum256(b)) }

// Backend is the opaque key-value interface a CAS implementation is
// built on. Keys and values are opaque byte strings; catalog
// partitions the backend into independent namespaces (e.g. "index" for
// tree nodes, "cell" for branch cells).
type Backend interface {
	Get(ctx context.Context, catalog string, key []byte) ([]byte, bool, error)
	Put(ctx context.Context, catalog string, key []byte, value []byte) error
}

// CASBackend is implemented by backends that support compare-and-swap,
// required for branch cell publication.
type CASBackend interface {
	Backend
	// CompareAndSwap writes new under key iff the current value equals
	// expected (nil expected means "key must be absent"). ok reports
	// whether the swap happened; when it did not, current holds the
	// observed value.
	CompareAndSwap(ctx context.Context, catalog string, key []byte, expected, new []byte) (ok bool, current []byte, err error)
}

// Store is the content-addressed façade over a Backend: Put hashes and
// writes, Get reads and re-verifies the hash.
type Store struct {
	backend Backend
	catalog string
}

// New returns a Store scoped to catalog on backend. catalog is a
// namespace on the backend (e.g. a key prefix or bucket name); "index"
// is reserved for prolly tree nodes.
func New(backend Backend, catalog string) *Store {
	return &Store{backend: backend, catalog: catalog}
}

// Catalog returns the store's catalog name.
func (s *Store) Catalog() string { return s.catalog }

// Backend returns the store's underlying Backend, for callers (like
// pkg/sync) that need to compose it with another Backend rather than
// go through hash verification on every read.
func (s *Store) Backend() Backend { return s.backend }

// Put computes BLAKE3(bytes), writes it under that key, and returns the
// hash.
func (s *Store) Put(ctx context.Context, b []byte) (Hash, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.CASOperationDuration, "put", s.catalog)

	h := Sum(b)
	if err := s.backend.Put(ctx, s.catalog, h[:], b); err != nil {
		metrics.CASOperationsTotal.WithLabelValues("put", s.catalog, "error").Inc()
		return Hash{}, errs.Wrap(errs.KindStorage, "put block", err)
	}
	metrics.CASOperationsTotal.WithLabelValues("put", s.catalog, "ok").Inc()
	return h, nil
}

// Get reads the bytes at hash and verifies BLAKE3(bytes) == hash. A
// missing block is reported via ok=false (not an error); a hash
// mismatch is a fatal verification failure for the operation in
// progress, since it signals corruption.
func (s *Store) Get(ctx context.Context, hash Hash) ([]byte, bool, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.CASOperationDuration, "get", s.catalog)

	b, ok, err := s.backend.Get(ctx, s.catalog, hash[:])
	if err != nil {
		metrics.CASOperationsTotal.WithLabelValues("get", s.catalog, "error").Inc()
		return nil, false, errs.Wrap(errs.KindStorage, "get block", err)
	}
	if !ok {
		metrics.CASOperationsTotal.WithLabelValues("get", s.catalog, "miss").Inc()
		return nil, false, nil
	}
	if Sum(b) != hash {
		metrics.CASOperationsTotal.WithLabelValues("get", s.catalog, "corrupt").Inc()
		return nil, false, errs.New(errs.KindStorage, "block failed hash verification: "+hash.String())
	}
	metrics.CASOperationsTotal.WithLabelValues("get", s.catalog, "ok").Inc()
	return b, true, nil
}

// MustGet reads hash and surfaces a missing block as errs.MissingBlock
// rather than ok=false, for callers (like tree traversal) for whom
// absence is always an error.
func (s *Store) MustGet(ctx context.Context, hash Hash) ([]byte, error) {
	b, ok, err := s.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.MissingBlock([32]byte(hash))
	}
	return b, nil
}

// CAS performs a compare-and-swap on key within catalog, if the
// underlying backend supports it.
func (s *Store) CAS(ctx context.Context, key []byte, expected, new []byte) (ok bool, current []byte, err error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.CASOperationDuration, "cas", s.catalog)

	casBackend, supported := s.backend.(CASBackend)
	if !supported {
		metrics.CASOperationsTotal.WithLabelValues("cas", s.catalog, "unsupported").Inc()
		return false, nil, errs.New(errs.KindStorage, "backend does not support compare-and-swap")
	}
	ok, current, err = casBackend.CompareAndSwap(ctx, s.catalog, key, expected, new)
	if err != nil {
		metrics.CASOperationsTotal.WithLabelValues("cas", s.catalog, "error").Inc()
		return false, nil, errs.Wrap(errs.KindStorage, "compare-and-swap", err)
	}
	if ok {
		metrics.CASOperationsTotal.WithLabelValues("cas", s.catalog, "ok").Inc()
	} else {
		metrics.CASOperationsTotal.WithLabelValues("cas", s.catalog, "conflict").Inc()
	}
	return ok, current, nil
}

// RawGet/RawPut expose the unhashed key-value interface for cells,
// which are addressed by a logical name rather than a content hash.
func (s *Store) RawGet(ctx context.Context, key []byte) ([]byte, bool, error) {
	b, ok, err := s.backend.Get(ctx, s.catalog, key)
	if err != nil {
		return nil, false, errs.Wrap(errs.KindStorage, "get cell", err)
	}
	return b, ok, nil
}

func (s *Store) RawPut(ctx context.Context, key []byte, value []byte) error {
	if err := s.backend.Put(ctx, s.catalog, key, value); err != nil {
		return errs.Wrap(errs.KindStorage, "put cell", err)
	}
	return nil
}
