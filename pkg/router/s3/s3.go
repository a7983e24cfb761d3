// Package s3 implements router.Connection's archive effects against a
// bucket of presigned URLs, matching the production shape described in
// §4.6 without depending on a particular AWS SDK: a presigned GET/PUT
// URL is just an HTTP request, which net/http serves directly. No
// third-party S3 client appears anywhere in the example corpus this
// module was grounded on, so this package is the justified stdlib
// exception (see DESIGN.md).
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dialogdb/dialog/pkg/capability"
	"github.com/dialogdb/dialog/pkg/cas"
	"github.com/dialogdb/dialog/pkg/errs"
)

// URLSigner produces a presigned URL for a GET or PUT against catalog
// and key within an S3 bucket. A concrete implementation wraps a real
// bucket's request-signing logic; this package never signs requests
// itself.
type URLSigner interface {
	PresignGet(catalog string, key []byte) (string, error)
	PresignPut(catalog string, key []byte) (string, error)
}

// Connection is an archive-only router.Connection: MemoryResolve and
// MemoryPublish always fail, since branch cells are not blobs and have
// no presigned-URL shape.
type Connection struct {
	signer URLSigner
	client *http.Client
}

// New returns a Connection that signs requests via signer. If client
// is nil, http.DefaultClient is used.
func New(signer URLSigner, client *http.Client) *Connection {
	if client == nil {
		client = http.DefaultClient
	}
	return &Connection{signer: signer, client: client}
}

func (c *Connection) ArchiveGet(ctx context.Context, inv capability.Invocation[capability.ArchiveGet, capability.ArchiveGetInput]) ([]byte, bool, error) {
	in := inv.Input
	url, err := c.signer.PresignGet(in.Catalog, in.Hash[:])
	if err != nil {
		return nil, false, errs.Wrap(errs.KindStorage, "presign get", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, errs.Wrap(errs.KindStorage, "build get request", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, false, errs.Wrap(errs.KindStorage, "execute get request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, errs.New(errs.KindStorage, fmt.Sprintf("archive get: unexpected status %d", resp.StatusCode))
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, errs.Wrap(errs.KindStorage, "read get response", err)
	}
	return b, true, nil
}

func (c *Connection) ArchivePut(ctx context.Context, inv capability.Invocation[capability.ArchivePut, capability.ArchivePutInput]) error {
	in := inv.Input
	hash := cas.Sum(in.Bytes)
	url, err := c.signer.PresignPut(in.Catalog, hash[:])
	if err != nil {
		return errs.Wrap(errs.KindStorage, "presign put", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(in.Bytes))
	if err != nil {
		return errs.Wrap(errs.KindStorage, "build put request", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return errs.Wrap(errs.KindStorage, "execute put request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errs.New(errs.KindStorage, fmt.Sprintf("archive put: unexpected status %d", resp.StatusCode))
	}
	return nil
}

func (c *Connection) MemoryResolve(context.Context, capability.Invocation[capability.MemoryResolve, capability.MemoryResolveInput]) ([]byte, bool, error) {
	return nil, false, errs.New(errs.KindStorage, "s3 connection does not serve branch cells")
}

func (c *Connection) MemoryPublish(context.Context, capability.Invocation[capability.MemoryPublish, capability.MemoryPublishInput]) error {
	return errs.New(errs.KindStorage, "s3 connection does not serve branch cells")
}
