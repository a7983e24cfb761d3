package main

import (
	"context"
	"fmt"

	"github.com/dialogdb/dialog/pkg/router"
	rgrpc "github.com/dialogdb/dialog/pkg/router/grpc"
	"github.com/spf13/cobra"
)

// newRouter returns a Router that dials every address as a gRPC
// connection. cmd/dialog has exactly one transport today; router/s3
// and router/memory are wired up by tests and other embedders instead
// of this CLI.
func newRouter() *router.Router {
	return router.New(func(ctx context.Context, address string) (router.Connection, error) {
		client, err := rgrpc.Dial(address)
		if err != nil {
			return nil, err
		}
		return client, nil
	})
}

var pushCmd = &cobra.Command{
	Use:   "push <branch> <site>",
	Short: "Push a branch's novel nodes to a registered remote site",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		r, _, _, err := openReplica(cmd)
		if err != nil {
			return err
		}
		rt := newRouter()
		if err := r.Push(ctx, rt, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("pushed %q to %q\n", args[0], args[1])
		return nil
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull <branch> <site>",
	Short: "Pull a branch's novel nodes from a registered remote site",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		r, _, _, err := openReplica(cmd)
		if err != nil {
			return err
		}
		rt := newRouter()
		if err := r.Pull(ctx, rt, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("pulled %q from %q\n", args[0], args[1])
		return nil
	},
}
