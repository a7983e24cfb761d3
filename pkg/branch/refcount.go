package branch

import (
	"sync"

	"github.com/dialogdb/dialog/pkg/artifact"
	"github.com/dialogdb/dialog/pkg/cas"
	"github.com/dialogdb/dialog/pkg/revision"
)

// RefCounter is in-memory bookkeeping associating each index tree root
// hash with the set of revisions that reference it as one of their
// three roots. It is fed by Branch.Commit and Branch.Advance and
// exposed read-only: nothing in this module consumes it to reclaim
// storage (a node that has no Revision referencing it is merely an
// orphan *candidate*, since another branch's revision not tracked by
// this RefCounter may still hold it). It exists so a future garbage
// collector has the data to work from without changing anything about
// how revisions are produced today.
type RefCounter struct {
	mu   sync.Mutex
	refs map[cas.Hash]map[revision.Revision]struct{}
}

// NewRefCounter returns an empty RefCounter.
func NewRefCounter() *RefCounter {
	return &RefCounter{refs: make(map[cas.Hash]map[revision.Revision]struct{})}
}

// Track records that each of rev's three index roots is referenced by
// rev. Calling Track with the same revision more than once is
// harmless.
func (c *RefCounter) Track(rev revision.Revision) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ordering := range [...]artifact.Ordering{artifact.EAV, artifact.AEV, artifact.VAE} {
		root := rev.Root(ordering)
		set, ok := c.refs[root]
		if !ok {
			set = make(map[revision.Revision]struct{})
			c.refs[root] = set
		}
		set[rev] = struct{}{}
	}
}

// Count returns the number of distinct tracked revisions that
// reference hash as one of their roots.
func (c *RefCounter) Count(hash cas.Hash) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.refs[hash])
}

// Revisions returns every tracked revision that references hash as one
// of its roots, in no particular order.
func (c *RefCounter) Revisions(hash cas.Hash) []revision.Revision {
	c.mu.Lock()
	defer c.mu.Unlock()

	set := c.refs[hash]
	out := make([]revision.Revision, 0, len(set))
	for rev := range set {
		out = append(out, rev)
	}
	return out
}

// Untrack removes rev from every root it was tracked against, dropping
// roots whose reference set becomes empty. Branch never calls this
// itself — no operation here reclaims storage — but a GC pass built on
// top of RefCounter will need it once a revision is confirmed
// unreachable from any branch cell.
func (c *RefCounter) Untrack(rev revision.Revision) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ordering := range [...]artifact.Ordering{artifact.EAV, artifact.AEV, artifact.VAE} {
		root := rev.Root(ordering)
		set, ok := c.refs[root]
		if !ok {
			continue
		}
		delete(set, rev)
		if len(set) == 0 {
			delete(c.refs, root)
		}
	}
}
