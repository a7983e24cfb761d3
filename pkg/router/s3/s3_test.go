package s3_test

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dialogdb/dialog/pkg/capability"
	"github.com/dialogdb/dialog/pkg/cas"
	"github.com/dialogdb/dialog/pkg/router/s3"
)

func testSubject(t *testing.T) capability.Subject {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return capability.NewSubject(pub)
}

// fakeBucket serves GET/PUT against an in-memory map at whatever path
// the signer hands out, standing in for a real presigned S3 endpoint.
type fakeBucket struct {
	server *httptest.Server
	data   map[string][]byte
}

func newFakeBucket() *fakeBucket {
	fb := &fakeBucket{data: make(map[string][]byte)}
	fb.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			b, ok := fb.data[r.URL.Path]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Write(b)
		case http.MethodPut:
			b, _ := io.ReadAll(r.Body)
			fb.data[r.URL.Path] = b
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	return fb
}

type pathSigner struct{ base string }

func (p pathSigner) PresignGet(catalog string, key []byte) (string, error) {
	return p.base + "/" + catalog + "/" + fmt.Sprintf("%x", key), nil
}

func (p pathSigner) PresignPut(catalog string, key []byte) (string, error) {
	return p.PresignGet(catalog, key)
}

func TestArchivePutThenGetRoundTrip(t *testing.T) {
	fb := newFakeBucket()
	defer fb.server.Close()

	conn := s3.New(pathSigner{base: fb.server.URL}, nil)
	ctx := context.Background()

	archiveChain := capability.ArchiveChain(testSubject(t), "index")
	payload := []byte("prolly node bytes")
	if err := conn.ArchivePut(ctx, capability.NewInvocation[capability.ArchivePut](archiveChain, capability.ArchivePutInput{Catalog: "index", Bytes: payload})); err != nil {
		t.Fatalf("ArchivePut: %v", err)
	}

	hash := [32]byte(cas.Sum(payload))
	got, ok, err := conn.ArchiveGet(ctx, capability.NewInvocation[capability.ArchiveGet](archiveChain, capability.ArchiveGetInput{Catalog: "index", Hash: hash}))
	if err != nil {
		t.Fatalf("ArchiveGet: %v", err)
	}
	if !ok {
		t.Fatal("expected hit after put")
	}
	if string(got) != string(payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestArchiveGetMissingReturnsNotFound(t *testing.T) {
	fb := newFakeBucket()
	defer fb.server.Close()

	conn := s3.New(pathSigner{base: fb.server.URL}, nil)
	archiveChain := capability.ArchiveChain(testSubject(t), "index")
	_, ok, err := conn.ArchiveGet(context.Background(), capability.NewInvocation[capability.ArchiveGet](archiveChain, capability.ArchiveGetInput{Catalog: "index", Hash: [32]byte{0xFF}}))
	if err != nil {
		t.Fatalf("ArchiveGet: %v", err)
	}
	if ok {
		t.Fatal("expected miss for unseeded hash")
	}
}

func TestMemoryEffectsAreUnsupported(t *testing.T) {
	conn := s3.New(pathSigner{base: "http://unused"}, nil)
	cellChain := capability.CellChain(testSubject(t), "main")
	if _, _, err := conn.MemoryResolve(context.Background(), capability.NewInvocation[capability.MemoryResolve](cellChain, capability.MemoryResolveInput{BranchID: "main"})); err == nil {
		t.Fatal("expected MemoryResolve to fail on an archive-only connection")
	}
	if err := conn.MemoryPublish(context.Background(), capability.NewInvocation[capability.MemoryPublish](cellChain, capability.MemoryPublishInput{BranchID: "main"})); err == nil {
		t.Fatal("expected MemoryPublish to fail on an archive-only connection")
	}
}
