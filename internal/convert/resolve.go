package convert

import (
	"github.com/rendis/flowconv/pkg/schema"
)

// feed is what resolution found for an input slot: either a reference to
// another flat node's output, or a literal constant.
type feed struct {
	ref     *schema.NodeRef
	value   any
	isValue bool
}

// resolveTarget resolves what feeds input slot `slot` of node `nodeID` in
// scope s. Returns nil when nothing feeds the slot (the caller then falls
// back to widget values, declared defaults, or omission).
func (f *flattener) resolveTarget(s *scope, nodeID, slot int) (*feed, error) {
	ep, ok := s.table.linkedInto(nodeID, slot)
	if !ok {
		return nil, nil
	}
	return f.resolveOrigin(s, ep.node, ep.slot)
}

// resolveOrigin resolves a link's producing endpoint to its final form,
// crossing subgraph boundaries in both directions: an origin that is the
// body's input pseudo-node climbs to the enclosing scope, and an origin that
// is a subgraph instance descends to the inner node wired to that output.
// Each boundary crossed applies one rewrite, so a link spanning several
// nesting levels is rewritten once per level.
func (f *flattener) resolveOrigin(s *scope, originID, originSlot int) (*feed, error) {
	if s.def != nil && originID == s.def.InputNodeID() {
		return f.resolveInstanceInput(s, originSlot)
	}

	node, ok := s.table.byID[originID]
	if !ok {
		return nil, schema.NewErrorf(schema.ErrCodeUnknownNode,
			"link origin references unknown node %d", originID).WithScope(s.name())
	}

	if child, isInstance := s.children[originID]; isInstance {
		// Instance output: follow the inner link that feeds the body's
		// output pseudo-node at this slot. An unwired output feeds nothing.
		ep, wired := child.table.linkedInto(child.def.OutputNodeID(), originSlot)
		if !wired {
			return nil, nil
		}
		return f.resolveOrigin(child, ep.node, ep.slot)
	}

	if node.Skipped() || isVirtual(node.Type) {
		return nil, nil
	}

	return &feed{ref: &schema.NodeRef{NodeID: s.flatID(originID), Slot: originSlot}}, nil
}

// resolveInstanceInput resolves external input slot extSlot of the subgraph
// instance that scope s expands. The value comes from whatever feeds the
// instance node in the enclosing scope, or failing that from a constant
// bound on the instance node itself.
func (f *flattener) resolveInstanceInput(s *scope, extSlot int) (*feed, error) {
	parent, inst := s.parent, s.instance

	fed, err := f.resolveTarget(parent, inst.ID, extSlot)
	if err != nil || fed != nil {
		return fed, err
	}

	if v, ok := f.widgetValue(parent, inst, extSlot); ok {
		return &feed{value: v, isValue: true}, nil
	}
	return nil, nil
}

// widgetValue returns the constant bound to the given input slot, if any.
// widgets_values is positional: a cursor advances over every slot that owns
// a widget entry, i.e. slots not fed by a link plus widget-backed slots
// (which keep their entry even when a link shadows it).
func (f *flattener) widgetValue(s *scope, node *schema.UINode, slot int) (any, bool) {
	if slot >= len(node.Inputs) {
		// Instance nodes may bind constants without declaring slots;
		// fall back to direct positional lookup.
		if len(node.Inputs) == 0 && slot < len(node.WidgetsValues) {
			return node.WidgetsValues[slot], true
		}
		return nil, false
	}

	cursor := 0
	for i := 0; i < slot; i++ {
		if f.ownsWidgetEntry(s, node, i) {
			cursor++
		}
	}
	if !f.ownsWidgetEntry(s, node, slot) {
		return nil, false
	}
	if cursor < len(node.WidgetsValues) {
		return node.WidgetsValues[cursor], true
	}
	return nil, false
}

func (f *flattener) ownsWidgetEntry(s *scope, node *schema.UINode, slot int) bool {
	if node.Inputs[slot].Widget != nil {
		return true
	}
	_, linked := s.table.linkedInto(node.ID, slot)
	return !linked
}

// buildAPINode materializes one flat node: class_type copied verbatim,
// inputs assembled in declared slot order. A slot with neither a link nor a
// widget value is omitted so the executor applies its own default, unless
// the slot declares an explicit default value.
func (f *flattener) buildAPINode(fn flatNode) (*schema.APINode, error) {
	api := schema.NewAPINode(fn.node.Type)

	for i, in := range fn.node.Inputs {
		if in.Name == "" {
			continue
		}

		fed, err := f.resolveTarget(fn.scope, fn.node.ID, i)
		if err != nil {
			return nil, err
		}

		switch {
		case fed != nil && fed.ref != nil:
			api.SetInput(in.Name, *fed.ref)
		case fed != nil && fed.isValue:
			api.SetInput(in.Name, fed.value)
		default:
			if v, ok := f.widgetValue(fn.scope, fn.node, i); ok {
				api.SetInput(in.Name, v)
			} else if in.Value != nil {
				api.SetInput(in.Name, in.Value)
			}
		}
	}

	return api, nil
}
