package grpc

import (
	"context"

	"github.com/dialogdb/dialog/pkg/capability"
	"github.com/dialogdb/dialog/pkg/cas"
	"github.com/dialogdb/dialog/pkg/errs"
)

// Handler implements Server over a local cas.Backend: archive requests
// address an arbitrary catalog by name, memory requests address the
// fixed "cell" catalog keyed by branch ID. This is the remote-facing
// counterpart of router/memory.Peer — same shape, backed by the node's
// actual storage instead of an in-process map.
type Handler struct {
	backend cas.Backend
}

// NewHandler returns a Handler serving requests out of backend.
func NewHandler(backend cas.Backend) *Handler {
	return &Handler{backend: backend}
}

const cellCatalog = "cell"

// authorize re-checks the decoded chain server-side. A client's own
// router.Router already gates dispatch before the request ever reaches
// the wire, but a network peer cannot be trusted to have run that
// check honestly — this is the one real trust boundary in the whole
// capability model, so Handler checks again independently.
func authorize(w wireChain, kind capability.AttenuationKind, param string) error {
	chain := decodeChain(w)
	if !chain.Authorizes(kind, param) {
		return errs.New(errs.KindCapabilityDenied, "chain "+chain.AbilityPath()+" does not authorize this request")
	}
	return nil
}

func (h *Handler) ArchiveGet(ctx context.Context, req *archiveGetRequest) (*archiveGetResponse, error) {
	if err := authorize(req.Chain, capability.KindArchive, req.Catalog); err != nil {
		return nil, err
	}
	b, ok, err := h.backend.Get(ctx, req.Catalog, req.Hash[:])
	if err != nil {
		return nil, err
	}
	return &archiveGetResponse{Bytes: b, Found: ok}, nil
}

func (h *Handler) ArchivePut(ctx context.Context, req *archivePutRequest) (*archivePutResponse, error) {
	if err := authorize(req.Chain, capability.KindArchive, req.Catalog); err != nil {
		return nil, err
	}
	hash := cas.Sum(req.Bytes)
	if err := h.backend.Put(ctx, req.Catalog, hash[:], req.Bytes); err != nil {
		return nil, err
	}
	return &archivePutResponse{}, nil
}

func (h *Handler) MemoryResolve(ctx context.Context, req *memoryResolveRequest) (*memoryResolveResponse, error) {
	if err := authorize(req.Chain, capability.KindCell, req.BranchID); err != nil {
		return nil, err
	}
	b, ok, err := h.backend.Get(ctx, cellCatalog, []byte(req.BranchID))
	if err != nil {
		return nil, err
	}
	return &memoryResolveResponse{Bytes: b, Found: ok}, nil
}

func (h *Handler) MemoryPublish(ctx context.Context, req *memoryPublishRequest) (*memoryPublishResponse, error) {
	if err := authorize(req.Chain, capability.KindCell, req.BranchID); err != nil {
		return nil, err
	}
	casBackend, ok := h.backend.(cas.CASBackend)
	if !ok {
		return nil, errs.New(errs.KindStorage, "backend does not support compare-and-swap")
	}
	swapped, current, err := casBackend.CompareAndSwap(ctx, cellCatalog, []byte(req.BranchID), req.Expected, req.New)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return &memoryPublishResponse{Conflict: true, Current: current}, nil
	}
	return &memoryPublishResponse{}, nil
}
