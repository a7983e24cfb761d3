package main

import (
	"context"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/dialogdb/dialog/pkg/artifact"
	"github.com/dialogdb/dialog/pkg/cas"
	"github.com/dialogdb/dialog/pkg/cas/memory"
	"github.com/dialogdb/dialog/pkg/index"
	"github.com/dialogdb/dialog/pkg/revision"
	"lukechampine.com/blake3"
)

// loaded is everything the UI needs once a CSV has been committed into
// an in-memory index: the decoded facts in file order (for the Facts
// table) and the resulting store and revision (for the Tree tab).
type loaded struct {
	facts    []artifact.Artifact
	store    *index.ArtifactStore
	revision revision.Revision
}

// entityFromName deterministically derives an Entity from a CSV "of"
// column so the same name always resolves to the same entity across
// rows, without requiring the CSV to carry raw 32-byte hex. This is a
// diagnostic convenience only: a real assert path mints entities with
// artifact.NewEntity's random source.
func entityFromName(name string) artifact.Entity {
	sum := blake3.Sum256([]byte(name))
	e, _ := artifact.EntityFromBytes(sum[:])
	return e
}

func parseCause(hexStr string) (*artifact.Cause, error) {
	if hexStr == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, fmt.Errorf("invalid cause %q: %w", hexStr, err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("cause %q must be 32 bytes, got %d", hexStr, len(b))
	}
	var c artifact.Cause
	copy(c[:], b)
	return &c, nil
}

// loadCSV reads a header row ("the,of,is,cause") followed by one
// artifact per row and commits them, in order, as Assert instructions
// against a fresh in-memory ArtifactStore.
func loadCSV(path string) (loaded, error) {
	f, err := os.Open(path)
	if err != nil {
		return loaded{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return loaded{}, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return loaded{}, fmt.Errorf("csv is empty")
	}
	rows := records[1:] // skip header

	backend := memory.New()
	store := index.New(cas.New(backend, "index"))
	ctx := context.Background()

	rev, err := store.EmptyRevision(ctx)
	if err != nil {
		return loaded{}, err
	}

	facts := make([]artifact.Artifact, 0, len(rows))
	instructions := make([]artifact.Instruction, 0, len(rows))
	for i, row := range rows {
		if len(row) < 3 {
			return loaded{}, fmt.Errorf("row %d: expected at least 3 columns (the,of,is), got %d", i+2, len(row))
		}
		attr, err := artifact.NewAttribute(row[0])
		if err != nil {
			return loaded{}, fmt.Errorf("row %d: invalid attribute %q: %w", i+2, row[0], err)
		}
		entity := entityFromName(row[1])
		value := artifact.StringValue(row[2])

		var cause *artifact.Cause
		if len(row) >= 4 {
			cause, err = parseCause(row[3])
			if err != nil {
				return loaded{}, fmt.Errorf("row %d: %w", i+2, err)
			}
		}

		a := artifact.Artifact{The: attr, Of: entity, Is: value, Cause: cause}
		facts = append(facts, a)
		instructions = append(instructions, artifact.AssertInstruction(a))
	}

	rev, err = store.Commit(ctx, rev, instructions)
	if err != nil {
		return loaded{}, fmt.Errorf("commit csv rows: %w", err)
	}

	return loaded{facts: facts, store: store, revision: rev}, nil
}
