package snapshot

import (
	"fmt"

	"github.com/rparikh-liberate/smart-rpa-poc/internal/model"
)

// UnresolvedRefError is returned when an ephemeral reference cannot be found
// in the current snapshot index, typically because the snapshot is stale
// relative to the action that produced the reference.
type UnresolvedRefError struct {
	Ref string
}

func (e *UnresolvedRefError) Error() string {
	return fmt.Sprintf("reference %q not present in the current snapshot; take a fresh snapshot and retry", e.Ref)
}

// Index maps the ephemeral reference ids of one snapshot to stable selector
// descriptors. It is derived state, rebuilt on every snapshot and never
// persisted.
type Index struct {
	byRef map[string]model.SelectorDescriptor
}

// ordinalKey groups nodes that need ordinal disambiguation.
type ordinalKey struct {
	role string
	name string
}

// BuildIndex walks the snapshot tree in pre-order and computes a selector
// descriptor for every node carrying an ephemeral reference. The ordinal is
// the count of earlier nodes (in pre-order, referenced or not) sharing the
// same role and accessible name, so it is independent of which refs the
// browser tool happened to assign.
func BuildIndex(root *Node) *Index {
	idx := &Index{byRef: make(map[string]model.SelectorDescriptor)}
	if root == nil {
		return idx
	}
	seen := make(map[ordinalKey]int)
	indexNodes(root.Children, "", seen, idx)
	return idx
}

func indexNodes(nodes []Node, ancestorHint string, seen map[ordinalKey]int, idx *Index) {
	for i := range nodes {
		n := &nodes[i]
		key := ordinalKey{role: n.Role, name: n.Name}
		ordinal := seen[key]
		seen[key]++

		if n.Ref != "" {
			hint := n.Text
			if hint == "" {
				hint = ancestorHint
			}
			idx.byRef[n.Ref] = model.SelectorDescriptor{
				Role:     n.Role,
				Name:     n.Name,
				TextHint: hint,
				Ordinal:  ordinal,
			}
		}

		// The nearest labelled ancestor provides the text hint for
		// children that carry no text of their own.
		childHint := n.Name
		if childHint == "" {
			childHint = n.Text
		}
		if childHint == "" {
			childHint = ancestorHint
		}
		indexNodes(n.Children, childHint, seen, idx)
	}
}

// Len returns the number of indexed references.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.byRef)
}

// Generalize resolves an ephemeral reference against the index and returns
// the stable selector descriptor for the referenced node. The descriptor is
// deterministic for a given page: two snapshots of an unchanged page yield
// identical descriptors regardless of the reference ids assigned.
func Generalize(ref string, idx *Index) (model.SelectorDescriptor, error) {
	if idx == nil {
		return model.SelectorDescriptor{}, &UnresolvedRefError{Ref: ref}
	}
	desc, ok := idx.byRef[ref]
	if !ok {
		return model.SelectorDescriptor{}, &UnresolvedRefError{Ref: ref}
	}
	return desc, nil
}
