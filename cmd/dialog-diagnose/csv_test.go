package main

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/dialogdb/dialog/pkg/artifact"
)

func writeTempCSV(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "facts.csv")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

func TestLoadCSVDecodesEveryRowInOrder(t *testing.T) {
	path := writeTempCSV(t, "the,of,is,cause\n"+
		"profile/name,alice,Alice,\n"+
		"profile/name,bob,Bob,\n")

	l, err := loadCSV(path)
	if err != nil {
		t.Fatalf("load csv: %v", err)
	}
	if len(l.facts) != 2 {
		t.Fatalf("expected 2 facts, got %d", len(l.facts))
	}
	value, ok := l.facts[0].Is.AsString()
	if !ok || value != "Alice" {
		t.Fatalf("first fact value = %q, ok=%v, want Alice", value, ok)
	}
	if l.facts[0].Of != entityFromName("alice") {
		t.Fatal("entity derivation is not stable across calls")
	}
	if l.facts[0].Of == l.facts[1].Of {
		t.Fatal("two different \"of\" names produced the same entity")
	}
}

func TestLoadCSVRejectsEmptyFile(t *testing.T) {
	path := writeTempCSV(t, "")
	if _, err := loadCSV(path); err == nil {
		t.Fatal("expected an error loading an empty csv")
	}
}

func TestLoadCSVRejectsTooFewColumns(t *testing.T) {
	path := writeTempCSV(t, "the,of,is,cause\nprofile/name,alice\n")
	if _, err := loadCSV(path); err == nil {
		t.Fatal("expected an error for a row missing required columns")
	}
}

func TestParseCauseRoundTrips(t *testing.T) {
	c, err := parseCause("")
	if err != nil || c != nil {
		t.Fatalf("empty cause should parse as nil, got %v, err=%v", c, err)
	}

	hexStr := "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"
	parsed, err := parseCause(hexStr)
	if err != nil {
		t.Fatalf("parse cause: %v", err)
	}
	if parsed == nil {
		t.Fatal("expected a non-nil *artifact.Cause")
	}
	var want artifact.Cause
	decoded, err := hex.DecodeString(hexStr)
	if err != nil {
		t.Fatalf("decode hex: %v", err)
	}
	copy(want[:], decoded)
	if *parsed != want {
		t.Fatalf("parsed cause = %x, want %x", *parsed, want)
	}
}
