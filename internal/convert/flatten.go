package convert

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rendis/flowconv/pkg/schema"
)

// scope is one level of the flattening recursion: a graph body plus the
// chain of subgraph instances that leads to it. The root scope has no
// parent and contributes no identifier prefix.
type scope struct {
	parent   *scope
	instance *schema.UINode      // instance node in the parent scope, nil at root
	def      *schema.SubgraphDef // body being expanded, nil at root
	path     []string            // ancestor instance IDs, outermost first
	table    *nodeTable
	children map[int]*scope // child scopes by instance node ID in this scope
}

// name returns the scope's identifier prefix ("" for the root scope).
func (s *scope) name() string {
	return strings.Join(s.path, ":")
}

// flatID returns the globally unique identifier for a node in this scope.
// Root-scope nodes keep their bare identifier; nested nodes are prefixed by
// the instance chain, e.g. "7:12" for node 12 inside instance 7.
func (s *scope) flatID(nodeID int) string {
	id := strconv.Itoa(nodeID)
	if len(s.path) == 0 {
		return id
	}
	return s.name() + ":" + id
}

// flatNode is one executable node in the flattened namespace.
type flatNode struct {
	id    string
	node  *schema.UINode
	scope *scope
}

// flattener expands nested subgraph instances depth-first, collecting the
// flat set of executable nodes in document order.
type flattener struct {
	defs map[string]*schema.SubgraphDef
	flat []flatNode
}

func newFlattener(wf *schema.UIWorkflow) *flattener {
	f := &flattener{defs: map[string]*schema.SubgraphDef{}}
	if wf.Definitions != nil {
		for _, d := range wf.Definitions.Subgraphs {
			if d != nil && d.ID != "" {
				f.defs[d.ID] = d
			}
		}
	}
	return f
}

// Editor-only node types that never reach the executable graph.
func isVirtual(nodeType string) bool {
	switch nodeType {
	case "Note", "MarkdownNote":
		return true
	}
	return false
}

// instanceDef resolves the subgraph body for a node, and reports whether the
// node is a subgraph instance at all. Instance nodes either embed their body
// inline or reference a definition by type; definition IDs are UUIDs, so a
// UUID-typed node with no matching definition is a missing body, not a
// regular operation.
func (f *flattener) instanceDef(n *schema.UINode) (*schema.SubgraphDef, bool) {
	if n.Subgraph != nil {
		return n.Subgraph, true
	}
	if d, ok := f.defs[n.Type]; ok {
		return d, true
	}
	if err := uuid.Validate(n.Type); err == nil {
		return nil, true
	}
	return nil, false
}

// expand walks one scope in document order. Regular nodes join the flat set
// under their namespaced identifier; instance nodes are replaced by their
// recursively expanded body. active carries the definition identities on the
// current expansion path so self-referential subgraphs fail instead of
// recursing unboundedly.
func (f *flattener) expand(s *scope, active map[string]bool) error {
	for _, n := range s.table.order {
		if n.Skipped() || isVirtual(n.Type) {
			continue
		}

		def, isInstance := f.instanceDef(n)
		if !isInstance {
			f.flat = append(f.flat, flatNode{id: s.flatID(n.ID), node: n, scope: s})
			continue
		}
		if def == nil || def.Nodes == nil {
			return schema.NewErrorf(schema.ErrCodeMissingSubgraph,
				"node %d references subgraph %q with missing or malformed body", n.ID, n.Type).
				WithScope(s.name())
		}

		defKey := def.ID
		if defKey == "" {
			defKey = n.Type
		}
		if active[defKey] {
			return schema.NewErrorf(schema.ErrCodeCycleDetected,
				"subgraph %q transitively contains an instance of itself", defKey).
				WithScope(s.name())
		}

		childPath := make([]string, len(s.path)+1)
		copy(childPath, s.path)
		childPath[len(s.path)] = strconv.Itoa(n.ID)

		table, err := buildNodeTable(def.Nodes, def.Links, strings.Join(childPath, ":"))
		if err != nil {
			return err
		}

		child := &scope{
			parent:   s,
			instance: n,
			def:      def,
			path:     childPath,
			table:    table,
			children: map[int]*scope{},
		}
		s.children[n.ID] = child

		active[defKey] = true
		if err := f.expand(child, active); err != nil {
			return err
		}
		delete(active, defKey)
	}
	return nil
}
