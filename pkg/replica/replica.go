// Package replica implements the thin grouping above pkg/branch that
// binds a subject DID to the set of named branches it can open and the
// named remote sites those branches can push to or pull from. A
// Replica owns no key material itself — per pkg/capability.Signer,
// proving the subject's identity is entirely the caller's concern;
// Replica only scopes storage and bookkeeping to that identity so two
// subjects sharing a backend never collide on branch or remote names.
package replica

import (
	"context"
	"sync"

	"github.com/dialogdb/dialog/pkg/branch"
	"github.com/dialogdb/dialog/pkg/capability"
	"github.com/dialogdb/dialog/pkg/cas"
	"github.com/dialogdb/dialog/pkg/errs"
	"github.com/dialogdb/dialog/pkg/index"
)

const (
	cellCatalog  = "cell"
	indexCatalog = "index"
)

// Remote is a named site a replica's branches may sync against: a
// human-readable Site name plus the router address it resolves to.
type Remote struct {
	Site    string
	Address string
}

// Replica is a subject's view of one storage backend: it opens and
// loads branches namespaced under the subject's DID, and remembers the
// remote sites those branches sync with, so a caller need only name a
// branch and a site rather than carry a Connection or a raw cell key
// around.
type Replica struct {
	subject capability.Subject
	backend cas.Backend

	mu       sync.Mutex
	branches map[string]*branch.Branch
	remotes  map[string]Remote
}

// Open returns a Replica for subject over backend. Branches and
// remotes are created lazily on first use; Open itself performs no
// I/O.
func Open(subject capability.Subject, backend cas.Backend) *Replica {
	return &Replica{
		subject:  subject,
		backend:  backend,
		branches: make(map[string]*branch.Branch),
		remotes:  make(map[string]Remote),
	}
}

// Subject returns the replica's owning subject.
func (r *Replica) Subject() capability.Subject { return r.subject }

// cellKey namespaces a branch name under the subject's DID so that two
// subjects sharing one backend never address the same cell, deriving
// the namespaced path from the same capability.CellChain that gates
// remote access to this cell (§4.4's Subject → Memory → Space("local")
// → Cell(branch_id) shape) rather than an ad hoc concatenation.
func (r *Replica) cellKey(name string) string {
	chain := capability.CellChain(r.subject, name)
	return chain.Subject().String() + chain.AbilityPath()
}

// Branch opens (creating if absent) the named branch scoped to this
// subject, caching the handle so repeated calls return the same
// *branch.Branch.
func (r *Replica) Branch(ctx context.Context, name string) (*branch.Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.branches[name]; ok {
		return b, nil
	}
	cell := branch.NewCell(cas.New(r.backend, cellCatalog), r.cellKey(name))
	store := index.New(cas.New(r.backend, indexCatalog))
	b, err := branch.Open(ctx, cell, store, name)
	if err != nil {
		return nil, err
	}
	r.branches[name] = b
	return b, nil
}

// LoadBranch loads a previously published branch scoped to this
// subject, failing BranchNotFound if it was never opened.
func (r *Replica) LoadBranch(ctx context.Context, name string) (*branch.Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.branches[name]; ok {
		return b, nil
	}
	cell := branch.NewCell(cas.New(r.backend, cellCatalog), r.cellKey(name))
	store := index.New(cas.New(r.backend, indexCatalog))
	b, err := branch.Load(ctx, cell, store, name)
	if err != nil {
		return nil, err
	}
	r.branches[name] = b
	return b, nil
}

// AddRemote registers address under site for this replica's branches
// to sync against, overwriting any prior registration of the same
// site.
func (r *Replica) AddRemote(site, address string) Remote {
	r.mu.Lock()
	defer r.mu.Unlock()

	remote := Remote{Site: site, Address: address}
	r.remotes[site] = remote
	return remote
}

// LoadRemote looks up a previously added site.
func (r *Replica) LoadRemote(site string) (Remote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	remote, ok := r.remotes[site]
	if !ok {
		return Remote{}, errs.New(errs.KindRemoteNotFound, "remote site "+site+" has not been added")
	}
	return remote, nil
}

// Remotes returns every site currently registered, in no particular
// order.
func (r *Replica) Remotes() []Remote {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Remote, 0, len(r.remotes))
	for _, remote := range r.remotes {
		out = append(out, remote)
	}
	return out
}
