package actiondocs

import (
	"testing"

	"github.com/ariaos/aria/pkg/types"
)

func TestWithCanonicalActionDocsNeverOverwritesAuthored(t *testing.T) {
	cat := NewCatalog(map[string]ActionDoc{
		"MOVE": {Description: "canonical description", Similes: []string{"go", "walk"}},
	}, nil)

	authored := types.Action{Name: "MOVE", Description: "author description"}
	got := cat.WithCanonicalActionDocs(authored)

	if got.Description != "author description" {
		t.Errorf("description overwritten: got %q", got.Description)
	}
	if len(got.Similes) != 2 {
		t.Errorf("expected similes filled from catalog, got %v", got.Similes)
	}
}

func TestWithCanonicalActionDocsFillsEmptyFields(t *testing.T) {
	cat := NewCatalog(map[string]ActionDoc{
		"MOVE": {Description: "canonical description"},
	}, nil)

	got := cat.WithCanonicalActionDocs(types.Action{Name: "MOVE"})
	if got.Description != "canonical description" {
		t.Errorf("description not filled: got %q", got.Description)
	}
}

func TestWithCanonicalActionDocsUnknownNameNoOp(t *testing.T) {
	cat := NewCatalog(nil, nil)
	a := types.Action{Name: "UNKNOWN", Description: "d"}
	if got := cat.WithCanonicalActionDocs(a); got.Description != "d" {
		t.Errorf("unexpected mutation for unknown action: %+v", got)
	}
}
