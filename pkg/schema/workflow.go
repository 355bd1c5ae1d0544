package schema

import (
	"encoding/json"
	"fmt"
)

// UIWorkflow is the editor-format workflow document: the node graph as
// authored visually, with links as an edge list and constant values stored
// on the nodes themselves.
type UIWorkflow struct {
	Nodes       []UINode       `json:"nodes"`
	Links       []Link         `json:"links"`
	Definitions *Definitions   `json:"definitions,omitempty"`
	Version     float64        `json:"version,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// UINode is one visual node. Its ID is unique within its containing graph
// scope (the top-level document or a single subgraph body).
type UINode struct {
	ID            int          `json:"id"`
	Type          string       `json:"type"`
	Mode          int          `json:"mode,omitempty"`
	Inputs        []InputSlot  `json:"inputs,omitempty"`
	Outputs       []OutputSlot `json:"outputs,omitempty"`
	WidgetsValues []any        `json:"widgets_values,omitempty"`

	// Subgraph is an inline subgraph body for instance nodes that embed
	// their definition directly instead of referencing one by type.
	Subgraph *SubgraphDef `json:"subgraph,omitempty"`
}

// Editor node modes. Muted and bypassed nodes are excluded from conversion.
const (
	ModeAlways   = 0
	ModeMuted    = 2
	ModeBypassed = 4
)

// Skipped reports whether the node is excluded from the executable graph.
func (n *UINode) Skipped() bool {
	return n.Mode == ModeMuted || n.Mode == ModeBypassed
}

// InputSlot is one declared input of a node, in declared order.
type InputSlot struct {
	Name   string     `json:"name"`
	Type   string     `json:"type,omitempty"`
	Link   *int       `json:"link,omitempty"`
	Value  any        `json:"value,omitempty"`
	Widget *WidgetRef `json:"widget,omitempty"`
}

// WidgetRef marks an input slot as widget-backed. A widget-backed slot owns
// a positional entry in the node's widgets_values even when a link feeds it.
type WidgetRef struct {
	Name string `json:"name"`
}

// OutputSlot is one declared output of a node.
type OutputSlot struct {
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Links []int  `json:"links,omitempty"`
}

// Link is a directed edge, serialized as the editor's positional tuple
// [id, origin_id, origin_slot, target_id, target_slot, type].
type Link struct {
	ID         int
	OriginID   int
	OriginSlot int
	TargetID   int
	TargetSlot int
	Type       string
}

// UnmarshalJSON decodes the positional link tuple. Numeric fields arrive as
// JSON numbers; the trailing type string is optional.
func (l *Link) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("link must be an array: %w", err)
	}
	if len(raw) < 5 {
		return fmt.Errorf("link tuple has %d elements, want at least 5", len(raw))
	}

	ints := make([]int, 5)
	for i := 0; i < 5; i++ {
		f, ok := raw[i].(float64)
		if !ok {
			return fmt.Errorf("link tuple element %d is %T, want number", i, raw[i])
		}
		ints[i] = int(f)
	}

	l.ID, l.OriginID, l.OriginSlot, l.TargetID, l.TargetSlot = ints[0], ints[1], ints[2], ints[3], ints[4]
	if len(raw) > 5 {
		if s, ok := raw[5].(string); ok {
			l.Type = s
		}
	}
	return nil
}

// MarshalJSON re-encodes the link as its positional tuple.
func (l Link) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{l.ID, l.OriginID, l.OriginSlot, l.TargetID, l.TargetSlot, l.Type})
}

// Definitions holds reusable component definitions referenced by the graph.
type Definitions struct {
	Subgraphs []*SubgraphDef `json:"subgraphs,omitempty"`
}

// Reserved IDs for a subgraph body's boundary pseudo-nodes. Inner links whose
// origin is the input node (or whose target is the output node) express the
// mapping between the subgraph's external slots and its inner nodes.
const (
	SubgraphInputNodeID  = -10
	SubgraphOutputNodeID = -20
)

// SubgraphDef is a subgraph body: a nested graph plus the boundary mapping
// that ties its external input/output slots to inner nodes.
type SubgraphDef struct {
	ID         string    `json:"id"`
	Name       string    `json:"name,omitempty"`
	InputNode  IONode    `json:"inputNode,omitempty"`
	OutputNode IONode    `json:"outputNode,omitempty"`
	Inputs     []PortDef `json:"inputs,omitempty"`
	Outputs    []PortDef `json:"outputs,omitempty"`
	Nodes      []UINode  `json:"nodes"`
	Links      []Link    `json:"links"`
}

// IONode identifies a boundary pseudo-node inside a subgraph body.
type IONode struct {
	ID int `json:"id"`
}

// InputNodeID returns the body's input pseudo-node ID, defaulting the
// reserved ID when the document omits it.
func (d *SubgraphDef) InputNodeID() int {
	if d.InputNode.ID != 0 {
		return d.InputNode.ID
	}
	return SubgraphInputNodeID
}

// OutputNodeID returns the body's output pseudo-node ID.
func (d *SubgraphDef) OutputNodeID() int {
	if d.OutputNode.ID != 0 {
		return d.OutputNode.ID
	}
	return SubgraphOutputNodeID
}

// PortDef is one external slot of a subgraph definition.
type PortDef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}
