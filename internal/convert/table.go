package convert

import (
	"github.com/rendis/flowconv/pkg/schema"
)

// slotKey identifies one input slot of one node within a single graph scope.
type slotKey struct {
	node int
	slot int
}

// endpoint is the producing side of a link: a node and its output slot.
type endpoint struct {
	node int
	slot int
}

// nodeTable indexes one graph scope (the top-level document or a subgraph
// body): nodes by identifier and links by their consuming endpoint, so that
// "what feeds input slot k of node n" is an O(1) lookup.
type nodeTable struct {
	order    []*schema.UINode
	byID     map[int]*schema.UINode
	byTarget map[slotKey]endpoint
}

// buildNodeTable indexes the given nodes and links. Duplicate node
// identifiers and ambiguous input slots (two links into the same target
// slot) are reported rather than silently accepted.
func buildNodeTable(nodes []schema.UINode, links []schema.Link, scopeName string) (*nodeTable, error) {
	t := &nodeTable{
		order:    make([]*schema.UINode, 0, len(nodes)),
		byID:     make(map[int]*schema.UINode, len(nodes)),
		byTarget: make(map[slotKey]endpoint, len(links)),
	}

	for i := range nodes {
		n := &nodes[i]
		if _, exists := t.byID[n.ID]; exists {
			return nil, schema.NewErrorf(schema.ErrCodeDuplicateNode,
				"duplicate node id %d", n.ID).WithScope(scopeName)
		}
		t.byID[n.ID] = n
		t.order = append(t.order, n)
	}

	for _, l := range links {
		key := slotKey{node: l.TargetID, slot: l.TargetSlot}
		if _, exists := t.byTarget[key]; exists {
			return nil, schema.NewErrorf(schema.ErrCodeValidation,
				"multiple links feed input slot %d of node %d", l.TargetSlot, l.TargetID).
				WithScope(scopeName)
		}
		t.byTarget[key] = endpoint{node: l.OriginID, slot: l.OriginSlot}
	}

	return t, nil
}

// linkedInto returns the producing endpoint for the given input slot, if any.
func (t *nodeTable) linkedInto(nodeID, slot int) (endpoint, bool) {
	ep, ok := t.byTarget[slotKey{node: nodeID, slot: slot}]
	return ep, ok
}
