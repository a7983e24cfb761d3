// Package memory implements router.Connection as an in-process
// volatile peer, for emulation and tests where no real network hop is
// needed — the peer is just another branch's cells and blocks held in
// a map.
package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/dialogdb/dialog/pkg/capability"
	"github.com/dialogdb/dialog/pkg/cas"
	"github.com/dialogdb/dialog/pkg/errs"
)

// Peer is a volatile in-process router.Connection: one archive catalog
// map and one cell map, addressed exactly like a real backend.
type Peer struct {
	mu      sync.Mutex
	archive map[string]map[[32]byte][]byte
	cells   map[string][]byte
}

// NewPeer returns an empty Peer.
func NewPeer() *Peer {
	return &Peer{
		archive: make(map[string]map[[32]byte][]byte),
		cells:   make(map[string][]byte),
	}
}

func (p *Peer) ArchiveGet(_ context.Context, inv capability.Invocation[capability.ArchiveGet, capability.ArchiveGetInput]) ([]byte, bool, error) {
	in := inv.Input
	p.mu.Lock()
	defer p.mu.Unlock()
	cat, ok := p.archive[in.Catalog]
	if !ok {
		return nil, false, nil
	}
	v, ok := cat[in.Hash]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (p *Peer) ArchivePut(_ context.Context, inv capability.Invocation[capability.ArchivePut, capability.ArchivePutInput]) error {
	in := inv.Input
	p.mu.Lock()
	defer p.mu.Unlock()
	cat, ok := p.archive[in.Catalog]
	if !ok {
		cat = make(map[[32]byte][]byte)
		p.archive[in.Catalog] = cat
	}
	h := cas.Sum(in.Bytes)
	cat[[32]byte(h)] = append([]byte(nil), in.Bytes...)
	return nil
}

func (p *Peer) MemoryResolve(_ context.Context, inv capability.Invocation[capability.MemoryResolve, capability.MemoryResolveInput]) ([]byte, bool, error) {
	in := inv.Input
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.cells[in.BranchID]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (p *Peer) MemoryPublish(_ context.Context, inv capability.Invocation[capability.MemoryPublish, capability.MemoryPublishInput]) error {
	in := inv.Input
	p.mu.Lock()
	defer p.mu.Unlock()
	current, exists := p.cells[in.BranchID]
	matches := (in.Expected == nil && !exists) || (exists && bytes.Equal(in.Expected, current))
	if !matches {
		return errs.ConflictOnPublish(append([]byte(nil), current...))
	}
	p.cells[in.BranchID] = append([]byte(nil), in.New...)
	return nil
}
