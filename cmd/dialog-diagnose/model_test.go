package main

import "testing"

func TestNewModelBuildsBothTabsFromLoadedFacts(t *testing.T) {
	path := writeTempCSV(t, "the,of,is,cause\n"+
		"profile/name,alice,Alice,\n"+
		"profile/email,alice,alice@example.com,\n")

	l, err := loadCSV(path)
	if err != nil {
		t.Fatalf("load csv: %v", err)
	}

	m := newModel(l)
	if m.err != nil {
		t.Fatalf("newModel: %v", m.err)
	}
	if len(m.factsTbl.Rows()) != 2 {
		t.Fatalf("expected 2 facts rows, got %d", len(m.factsTbl.Rows()))
	}
	if len(m.treeLines) == 0 {
		t.Fatal("expected at least one tree line for a non-empty index")
	}
	if m.activeTab != tabFacts {
		t.Fatalf("default tab = %v, want tabFacts", m.activeTab)
	}
}
