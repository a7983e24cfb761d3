// Package router implements the remote-routing layer: a composite
// Provider that dispatches capability.Invocation effects to a per-Address
// Connection, opening and caching connections lazily.
package router

import (
	"context"
	"sync"

	"github.com/dialogdb/dialog/pkg/capability"
	"github.com/dialogdb/dialog/pkg/errs"
	"github.com/dialogdb/dialog/pkg/metrics"
)

// Connection is the transport-level surface a remote address exposes:
// the four in-process effects, plus node transport for sync. Each
// method takes the full capability.Invocation — Chain and Input — so a
// Connection can be asked to re-check authority at the remote end
// (router/grpc's Handler does; router/memory and router/s3 trust the
// caller, matching an in-process/test double and a blob store that has
// no branch-cell concept to gate). Three implementations ship:
// router/memory (in-process, for emulation and tests), router/grpc (a
// real network transport), and router/s3 (blob storage for the archive
// effects).
type Connection interface {
	ArchiveGet(ctx context.Context, inv capability.Invocation[capability.ArchiveGet, capability.ArchiveGetInput]) ([]byte, bool, error)
	ArchivePut(ctx context.Context, inv capability.Invocation[capability.ArchivePut, capability.ArchivePutInput]) error
	MemoryResolve(ctx context.Context, inv capability.Invocation[capability.MemoryResolve, capability.MemoryResolveInput]) ([]byte, bool, error)
	MemoryPublish(ctx context.Context, inv capability.Invocation[capability.MemoryPublish, capability.MemoryPublishInput]) error
}

// Dialer opens a Connection to address on first use.
type Dialer func(ctx context.Context, address string) (Connection, error)

// Router is a composite Provider: it looks up or lazily opens the
// Connection for an Address and forwards the invocation to it. The
// router opens and caches connections (it never closes them); callers
// hold only an Address
// string, never a Connection directly (§4.6, §9 — this sidesteps the
// cyclic-reference shape a component-holds-connection design would
// have).
//
// Before forwarding, Router checks that the invocation's Chain
// actually authorizes the effect being invoked — its final attenuation
// must be Archive(catalog) for the two archive effects, or
// Cell(branchID) for the two memory effects — and fails with
// errs.KindCapabilityDenied otherwise (§4.6, §9 "CapabilityDenied").
// This is a structural check only: it says the chain names the right
// resource, not that it was legitimately issued, since verifying a
// delegation chain's signatures is explicitly out of scope (§1) and
// left to the caller's Signer.
type Router struct {
	dial Dialer

	mu    sync.Mutex
	conns map[string]Connection
}

// New returns a Router that opens connections via dial.
func New(dial Dialer) *Router {
	return &Router{dial: dial, conns: make(map[string]Connection)}
}

func (r *Router) connectionFor(ctx context.Context, address string) (Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conns[address]; ok {
		return c, nil
	}
	c, err := r.dial(ctx, address)
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, "open connection to "+address, err)
	}
	r.conns[address] = c
	return c, nil
}

func denied(effect string, chain capability.Chain) error {
	return errs.New(errs.KindCapabilityDenied, "chain "+chain.AbilityPath()+" does not authorize "+effect)
}

// ArchiveGet routes a Get effect to address's connection.
func (r *Router) ArchiveGet(ctx context.Context, address string, inv capability.Invocation[capability.ArchiveGet, capability.ArchiveGetInput]) ([]byte, bool, error) {
	if !inv.Chain.Authorizes(capability.KindArchive, inv.Input.Catalog) {
		metrics.RouterInvocationsTotal.WithLabelValues("archive.get", "denied").Inc()
		return nil, false, denied("archive.get", inv.Chain)
	}
	c, err := r.connectionFor(ctx, address)
	if err != nil {
		metrics.RouterInvocationsTotal.WithLabelValues("archive.get", "dial_error").Inc()
		return nil, false, err
	}
	b, ok, err := c.ArchiveGet(ctx, inv)
	observeInvocation("archive.get", err)
	return b, ok, err
}

// ArchivePut routes a Put effect to address's connection.
func (r *Router) ArchivePut(ctx context.Context, address string, inv capability.Invocation[capability.ArchivePut, capability.ArchivePutInput]) error {
	if !inv.Chain.Authorizes(capability.KindArchive, inv.Input.Catalog) {
		metrics.RouterInvocationsTotal.WithLabelValues("archive.put", "denied").Inc()
		return denied("archive.put", inv.Chain)
	}
	c, err := r.connectionFor(ctx, address)
	if err != nil {
		metrics.RouterInvocationsTotal.WithLabelValues("archive.put", "dial_error").Inc()
		return err
	}
	err = c.ArchivePut(ctx, inv)
	observeInvocation("archive.put", err)
	return err
}

// MemoryResolve routes a Resolve effect to address's connection.
func (r *Router) MemoryResolve(ctx context.Context, address string, inv capability.Invocation[capability.MemoryResolve, capability.MemoryResolveInput]) ([]byte, bool, error) {
	if !inv.Chain.Authorizes(capability.KindCell, inv.Input.BranchID) {
		metrics.RouterInvocationsTotal.WithLabelValues("memory.resolve", "denied").Inc()
		return nil, false, denied("memory.resolve", inv.Chain)
	}
	c, err := r.connectionFor(ctx, address)
	if err != nil {
		metrics.RouterInvocationsTotal.WithLabelValues("memory.resolve", "dial_error").Inc()
		return nil, false, err
	}
	b, ok, err := c.MemoryResolve(ctx, inv)
	observeInvocation("memory.resolve", err)
	return b, ok, err
}

// MemoryPublish routes a Publish effect to address's connection.
func (r *Router) MemoryPublish(ctx context.Context, address string, inv capability.Invocation[capability.MemoryPublish, capability.MemoryPublishInput]) error {
	if !inv.Chain.Authorizes(capability.KindCell, inv.Input.BranchID) {
		metrics.RouterInvocationsTotal.WithLabelValues("memory.publish", "denied").Inc()
		return denied("memory.publish", inv.Chain)
	}
	c, err := r.connectionFor(ctx, address)
	if err != nil {
		metrics.RouterInvocationsTotal.WithLabelValues("memory.publish", "dial_error").Inc()
		return err
	}
	err = c.MemoryPublish(ctx, inv)
	observeInvocation("memory.publish", err)
	return err
}

// Bind returns a Connection that routes every call to address through
// r, for callers (like pkg/replica) that want to hand a plain
// Connection to something like pkg/sync without threading an address
// string through every call.
func (r *Router) Bind(address string) Connection {
	return boundConnection{router: r, address: address}
}

type boundConnection struct {
	router  *Router
	address string
}

func (b boundConnection) ArchiveGet(ctx context.Context, inv capability.Invocation[capability.ArchiveGet, capability.ArchiveGetInput]) ([]byte, bool, error) {
	return b.router.ArchiveGet(ctx, b.address, inv)
}

func (b boundConnection) ArchivePut(ctx context.Context, inv capability.Invocation[capability.ArchivePut, capability.ArchivePutInput]) error {
	return b.router.ArchivePut(ctx, b.address, inv)
}

func (b boundConnection) MemoryResolve(ctx context.Context, inv capability.Invocation[capability.MemoryResolve, capability.MemoryResolveInput]) ([]byte, bool, error) {
	return b.router.MemoryResolve(ctx, b.address, inv)
}

func (b boundConnection) MemoryPublish(ctx context.Context, inv capability.Invocation[capability.MemoryPublish, capability.MemoryPublishInput]) error {
	return b.router.MemoryPublish(ctx, b.address, inv)
}

func observeInvocation(effect string, err error) {
	if err != nil {
		metrics.RouterInvocationsTotal.WithLabelValues(effect, "error").Inc()
		return
	}
	metrics.RouterInvocationsTotal.WithLabelValues(effect, "ok").Inc()
}
