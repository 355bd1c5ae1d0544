package validation

import (
	"fmt"

	"github.com/rendis/flowconv/pkg/schema"
)

// validateSemantic performs graph-consistency analysis that JSON Schema
// cannot express: duplicate node IDs per scope, link endpoints referencing
// nodes that exist, and subgraph definition references that resolve.
// Subgraph bodies are checked recursively with the same rules.
func validateSemantic(wf *schema.UIWorkflow) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	defs := map[string]bool{}
	if wf.Definitions != nil {
		for i, d := range wf.Definitions.Subgraphs {
			if d == nil {
				continue
			}
			path := fmt.Sprintf("definitions.subgraphs[%d]", i)
			if d.ID != "" && defs[d.ID] {
				result.AddError(path, schema.ErrCodeValidation,
					fmt.Sprintf("duplicate subgraph definition id %q", d.ID))
			}
			defs[d.ID] = true
		}
	}

	validateGraphScope(wf.Nodes, wf.Links, "", false, result)

	for i, n := range wf.Nodes {
		if n.Subgraph != nil {
			validateSubgraphBody(n.Subgraph, fmt.Sprintf("nodes[%d].subgraph", i), result)
		}
	}

	if wf.Definitions != nil {
		for i, d := range wf.Definitions.Subgraphs {
			if d == nil {
				continue
			}
			path := fmt.Sprintf("definitions.subgraphs[%d]", i)
			validateSubgraphBody(d, path, result)
		}
	}

	return result
}

// validateGraphScope checks one graph body (top-level or subgraph).
// Boundary pseudo-node IDs are legal link endpoints inside subgraph bodies.
func validateGraphScope(nodes []schema.UINode, links []schema.Link, path string, inBody bool, result *schema.ValidationResult) map[int]bool {
	prefix := path
	if prefix != "" {
		prefix += "."
	}

	ids := make(map[int]bool, len(nodes))
	for i, n := range nodes {
		if ids[n.ID] {
			result.AddError(fmt.Sprintf("%snodes[%d]", prefix, i),
				schema.ErrCodeDuplicateNode,
				fmt.Sprintf("duplicate node id %d", n.ID))
			continue
		}
		ids[n.ID] = true
	}

	targets := make(map[[2]int]bool, len(links))
	for i, l := range links {
		lpath := fmt.Sprintf("%slinks[%d]", prefix, i)
		if !ids[l.OriginID] && !(inBody && l.OriginID < 0) {
			result.AddError(lpath, schema.ErrCodeUnknownNode,
				fmt.Sprintf("link %d origin references unknown node %d", l.ID, l.OriginID))
		}
		if !ids[l.TargetID] && !(inBody && l.TargetID < 0) {
			result.AddError(lpath, schema.ErrCodeUnknownNode,
				fmt.Sprintf("link %d target references unknown node %d", l.ID, l.TargetID))
		}
		key := [2]int{l.TargetID, l.TargetSlot}
		if targets[key] {
			result.AddError(lpath, schema.ErrCodeValidation,
				fmt.Sprintf("input slot %d of node %d is fed by more than one link", l.TargetSlot, l.TargetID))
		}
		targets[key] = true
	}

	return ids
}

// validateSubgraphBody checks a subgraph body and any inline bodies nested
// inside it. Instance-to-definition resolution is left to the converter,
// which also guards against cyclic nesting.
func validateSubgraphBody(d *schema.SubgraphDef, path string, result *schema.ValidationResult) {
	validateGraphScope(d.Nodes, d.Links, path, true, result)

	for i, n := range d.Nodes {
		if n.Subgraph != nil {
			validateSubgraphBody(n.Subgraph, fmt.Sprintf("%s.nodes[%d].subgraph", path, i), result)
		}
	}
}
