package capability

import (
	"crypto/ed25519"
	"strings"
	"testing"
)

func TestSubjectStringIsDidKey(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	s := NewSubject(pub)
	if !strings.HasPrefix(s.String(), "did:key:z") {
		t.Fatalf("expected did:key:z prefix, got %q", s.String())
	}
}

func TestChainAbilityPath(t *testing.T) {
	pub, _, _ := ed25519.GenerateKey(nil)
	subject := NewSubject(pub)

	chain := NewChain(subject).
		Attenuate(Memory()).
		Attenuate(Space("local")).
		Attenuate(Cell("main"))

	want := "/memory/space/local/cell/main"
	if got := chain.AbilityPath(); got != want {
		t.Fatalf("AbilityPath() = %q, want %q", got, want)
	}
}

func TestChainAttenuateDoesNotMutateParent(t *testing.T) {
	pub, _, _ := ed25519.GenerateKey(nil)
	base := NewChain(NewSubject(pub)).Attenuate(Memory())
	child := base.Attenuate(Space("local"))

	if base.AbilityPath() == child.AbilityPath() {
		t.Fatalf("attenuating should not affect the parent chain")
	}
	if len(base.Attenuations()) != 1 {
		t.Fatalf("parent chain mutated: %d attenuations", len(base.Attenuations()))
	}
}

func TestEmptyChainAbilityPathIsRoot(t *testing.T) {
	pub, _, _ := ed25519.GenerateKey(nil)
	chain := NewChain(NewSubject(pub))
	if chain.AbilityPath() != "/" {
		t.Fatalf("expected root path for empty chain, got %q", chain.AbilityPath())
	}
}

func TestCellChainMatchesExpectedShape(t *testing.T) {
	pub, _, _ := ed25519.GenerateKey(nil)
	subject := NewSubject(pub)

	chain := CellChain(subject, "main")
	want := "/memory/space/local/cell/main"
	if got := chain.AbilityPath(); got != want {
		t.Fatalf("AbilityPath() = %q, want %q", got, want)
	}
	if !chain.Authorizes(KindCell, "main") {
		t.Fatal("expected CellChain to authorize its own branch")
	}
	if chain.Authorizes(KindCell, "other") {
		t.Fatal("expected CellChain not to authorize a different branch")
	}
}

func TestArchiveChainMatchesExpectedShape(t *testing.T) {
	pub, _, _ := ed25519.GenerateKey(nil)
	subject := NewSubject(pub)

	chain := ArchiveChain(subject, "index")
	want := "/memory/space/local/archive/index"
	if got := chain.AbilityPath(); got != want {
		t.Fatalf("AbilityPath() = %q, want %q", got, want)
	}
	if !chain.Authorizes(KindArchive, "index") {
		t.Fatal("expected ArchiveChain to authorize its own catalog")
	}
}

func TestAuthorizesIsFalseOnEmptyChain(t *testing.T) {
	pub, _, _ := ed25519.GenerateKey(nil)
	chain := NewChain(NewSubject(pub))
	if chain.Authorizes(KindCell, "main") {
		t.Fatal("empty chain should not authorize anything")
	}
}
