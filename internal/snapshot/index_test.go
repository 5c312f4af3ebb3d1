package snapshot

import (
	"errors"
	"testing"

	"github.com/rparikh-liberate/smart-rpa-poc/internal/model"
)

func mustIndex(t *testing.T, text string) *Index {
	t.Helper()
	root, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return BuildIndex(root)
}

func TestBuildIndex_Descriptors(t *testing.T) {
	idx := mustIndex(t, cartSnapshot)

	tests := []struct {
		ref  string
		want model.SelectorDescriptor
	}{
		{"e3", model.SelectorDescriptor{Role: "link", Name: "Store Home", Ordinal: 0}},
		{"e5", model.SelectorDescriptor{Role: "searchbox", Name: "Search products", Ordinal: 0}},
		{"e21", model.SelectorDescriptor{Role: "button", Name: "Remove", TextHint: "Trail Runner shoes", Ordinal: 0}},
		{"e24", model.SelectorDescriptor{Role: "button", Name: "Remove", TextHint: "Wool socks", Ordinal: 1}},
		{"e47", model.SelectorDescriptor{Role: "button", Name: "Checkout", TextHint: "2 items in your cart", Ordinal: 0}},
		{"e90", model.SelectorDescriptor{Role: "link", Name: "Privacy", Ordinal: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := Generalize(tt.ref, idx)
			if err != nil {
				t.Fatalf("Generalize(%q) error: %v", tt.ref, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Generalize(%q) = %+v, want %+v", tt.ref, got, tt.want)
			}
		})
	}
}

// Re-snapshotting an unchanged page assigns fresh ephemeral refs; the
// generalized descriptor must not change.
func TestGeneralize_ReferenceIndependent(t *testing.T) {
	first := mustIndex(t, `- main:
  - button "Buy" [ref=e7]
  - button "Buy" [ref=e8]
`)
	second := mustIndex(t, `- main:
  - button "Buy" [ref=e104]
  - button "Buy" [ref=e109]
`)

	a, err := Generalize("e8", first)
	if err != nil {
		t.Fatalf("Generalize on first snapshot: %v", err)
	}
	b, err := Generalize("e109", second)
	if err != nil {
		t.Fatalf("Generalize on second snapshot: %v", err)
	}
	if !a.Equal(b) {
		t.Errorf("descriptors differ across snapshots of an unchanged page: %+v vs %+v", a, b)
	}
	if a.Ordinal != 1 {
		t.Errorf("second Buy button ordinal = %d, want 1", a.Ordinal)
	}
}

func TestGeneralize_UnresolvedRef(t *testing.T) {
	idx := mustIndex(t, cartSnapshot)

	_, err := Generalize("e999", idx)
	var unresolved *UnresolvedRefError
	if !errors.As(err, &unresolved) {
		t.Fatalf("Generalize(e999) error = %v, want *UnresolvedRefError", err)
	}
	if unresolved.Ref != "e999" {
		t.Errorf("error ref = %q, want %q", unresolved.Ref, "e999")
	}

	if _, err := Generalize("e3", nil); err == nil {
		t.Error("Generalize with nil index succeeded, want error")
	}
}

func TestBuildIndex_OrdinalCountsUnreferencedNodes(t *testing.T) {
	// The first "Add" button has no ref in this snapshot, but it still
	// occupies ordinal 0: ordinals are positions on the page, not positions
	// in the ref table.
	idx := mustIndex(t, `- main:
  - button "Add"
  - button "Add" [ref=e2]
`)
	got, err := Generalize("e2", idx)
	if err != nil {
		t.Fatalf("Generalize() error: %v", err)
	}
	if got.Ordinal != 1 {
		t.Errorf("ordinal = %d, want 1", got.Ordinal)
	}
}
