package convert

import (
	"github.com/rendis/flowconv/pkg/schema"
)

// ToAPI converts an editor-format workflow into the flattened API format.
// The input document is never mutated; all indices are scoped to this call.
// Every structural inconsistency (duplicate IDs, unknown link endpoints,
// missing subgraph bodies, cyclic nesting, dangling references) fails the
// whole conversion — partial output is never returned.
func ToAPI(wf *schema.UIWorkflow) (*schema.APIWorkflow, error) {
	if wf == nil || wf.Nodes == nil {
		return nil, schema.NewError(schema.ErrCodeValidation,
			"workflow has no nodes array")
	}

	table, err := buildNodeTable(wf.Nodes, wf.Links, "")
	if err != nil {
		return nil, err
	}

	f := newFlattener(wf)
	root := &scope{table: table, children: map[int]*scope{}}
	if err := f.expand(root, map[string]bool{}); err != nil {
		return nil, err
	}

	out := schema.NewAPIWorkflow()
	for _, fn := range f.flat {
		api, err := f.buildAPINode(fn)
		if err != nil {
			return nil, err
		}
		if err := out.Set(fn.id, api); err != nil {
			return nil, schema.NewError(schema.ErrCodeInternal, err.Error()).WithCause(err)
		}
	}

	if err := checkReferences(out); err != nil {
		return nil, err
	}
	return out, nil
}

// checkReferences verifies that every [node_id, slot] reference in the
// emitted document resolves to a present key.
func checkReferences(out *schema.APIWorkflow) error {
	return out.Each(func(id string, n *schema.APINode) error {
		for pair := n.Inputs.Oldest(); pair != nil; pair = pair.Next() {
			ref, ok := pair.Value.(schema.NodeRef)
			if !ok {
				continue
			}
			if _, present := out.Node(ref.NodeID); !present {
				return schema.NewErrorf(schema.ErrCodeDanglingReference,
					"input %q of node %s references missing node %s",
					pair.Key, id, ref.NodeID)
			}
		}
		return nil
	})
}
