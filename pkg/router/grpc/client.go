package grpc

import (
	"context"

	"github.com/dialogdb/dialog/pkg/capability"
	"github.com/dialogdb/dialog/pkg/errs"
	"google.golang.org/grpc"
)

// Client is a router.Connection backed by a real grpc.ClientConn,
// carrying each effect as a unary RPC over the cbor codec registered
// in codec.go.
type Client struct {
	conn *grpc.ClientConn
}

// Dial opens a Client to address. Callers own the returned Client's
// Close; router.Router never closes connections itself (§9 — shutdown
// is out of scope for the router's own lifecycle).
func Dial(address string, opts ...grpc.DialOption) (*Client, error) {
	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, "dial "+address, err)
	}
	return &Client{conn: conn}, nil
}

// Close tears down the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) invoke(ctx context.Context, method string, req, reply interface{}) error {
	return c.conn.Invoke(ctx, fullMethod(method), req, reply, grpc.CallContentSubtype(codecName))
}

func (c *Client) ArchiveGet(ctx context.Context, inv capability.Invocation[capability.ArchiveGet, capability.ArchiveGetInput]) ([]byte, bool, error) {
	in := inv.Input
	req := &archiveGetRequest{Chain: encodeChain(inv.Chain), Catalog: in.Catalog, Hash: in.Hash}
	resp := new(archiveGetResponse)
	if err := c.invoke(ctx, "ArchiveGet", req, resp); err != nil {
		return nil, false, err
	}
	return resp.Bytes, resp.Found, nil
}

func (c *Client) ArchivePut(ctx context.Context, inv capability.Invocation[capability.ArchivePut, capability.ArchivePutInput]) error {
	in := inv.Input
	req := &archivePutRequest{Chain: encodeChain(inv.Chain), Catalog: in.Catalog, Bytes: in.Bytes}
	resp := new(archivePutResponse)
	return c.invoke(ctx, "ArchivePut", req, resp)
}

func (c *Client) MemoryResolve(ctx context.Context, inv capability.Invocation[capability.MemoryResolve, capability.MemoryResolveInput]) ([]byte, bool, error) {
	in := inv.Input
	req := &memoryResolveRequest{Chain: encodeChain(inv.Chain), BranchID: in.BranchID}
	resp := new(memoryResolveResponse)
	if err := c.invoke(ctx, "MemoryResolve", req, resp); err != nil {
		return nil, false, err
	}
	return resp.Bytes, resp.Found, nil
}

func (c *Client) MemoryPublish(ctx context.Context, inv capability.Invocation[capability.MemoryPublish, capability.MemoryPublishInput]) error {
	in := inv.Input
	req := &memoryPublishRequest{Chain: encodeChain(inv.Chain), BranchID: in.BranchID, Expected: in.Expected, New: in.New}
	resp := new(memoryPublishResponse)
	if err := c.invoke(ctx, "MemoryPublish", req, resp); err != nil {
		return err
	}
	if resp.Conflict {
		return errs.ConflictOnPublish(resp.Current)
	}
	return nil
}
