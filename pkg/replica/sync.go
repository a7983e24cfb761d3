package replica

import (
	"context"

	"github.com/dialogdb/dialog/pkg/router"
	dsync "github.com/dialogdb/dialog/pkg/sync"
)

// Push opens branchName and pushes it to site, resolving site through
// the replica's registered remotes and dialing it through rt.
func (r *Replica) Push(ctx context.Context, rt *router.Router, branchName, site string) error {
	remote, err := r.LoadRemote(site)
	if err != nil {
		return err
	}
	b, err := r.Branch(ctx, branchName)
	if err != nil {
		return err
	}
	return dsync.Push(ctx, b, r.subject, rt.Bind(remote.Address))
}

// Pull opens branchName and pulls it from site, resolving site through
// the replica's registered remotes and dialing it through rt.
func (r *Replica) Pull(ctx context.Context, rt *router.Router, branchName, site string) error {
	remote, err := r.LoadRemote(site)
	if err != nil {
		return err
	}
	b, err := r.Branch(ctx, branchName)
	if err != nil {
		return err
	}
	return dsync.Pull(ctx, b, r.subject, rt.Bind(remote.Address))
}
