package schema

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// NodeRef is a reference to another node's output, serialized as the
// two-element array [node_id, output_slot].
type NodeRef struct {
	NodeID string
	Slot   int
}

// MarshalJSON encodes the reference in its wire form.
func (r NodeRef) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{r.NodeID, r.Slot})
}

// APINode is one entry of the execution-ready document: an operation type
// plus its fully resolved inputs. Input keys preserve the node's declared
// slot order so output is reproducible across runs.
type APINode struct {
	Inputs    *orderedmap.OrderedMap[string, any] `json:"inputs"`
	ClassType string                              `json:"class_type"`
}

// NewAPINode creates an APINode with an empty input map.
func NewAPINode(classType string) *APINode {
	return &APINode{
		ClassType: classType,
		Inputs:    orderedmap.New[string, any](),
	}
}

// SetInput binds an input name to a literal value or a NodeRef.
func (n *APINode) SetInput(name string, value any) {
	n.Inputs.Set(name, value)
}

// APIWorkflow is the flattened execution-ready document: a mapping from
// node identifier to APINode, in flattening traversal order.
type APIWorkflow struct {
	nodes *orderedmap.OrderedMap[string, *APINode]
}

// NewAPIWorkflow creates an empty APIWorkflow.
func NewAPIWorkflow() *APIWorkflow {
	return &APIWorkflow{nodes: orderedmap.New[string, *APINode]()}
}

// Set adds a node under the given identifier. Identifiers are unique by
// construction; re-adding an existing one is a programming error.
func (w *APIWorkflow) Set(id string, node *APINode) error {
	if _, exists := w.nodes.Get(id); exists {
		return fmt.Errorf("duplicate api node id %q", id)
	}
	w.nodes.Set(id, node)
	return nil
}

// Node returns the node for the given identifier.
func (w *APIWorkflow) Node(id string) (*APINode, bool) {
	return w.nodes.Get(id)
}

// Len returns the number of nodes.
func (w *APIWorkflow) Len() int {
	return w.nodes.Len()
}

// IDs returns all node identifiers in insertion order.
func (w *APIWorkflow) IDs() []string {
	ids := make([]string, 0, w.nodes.Len())
	for pair := w.nodes.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids
}

// Each calls fn for every node in insertion order, stopping on first error.
func (w *APIWorkflow) Each(fn func(id string, node *APINode) error) error {
	for pair := w.nodes.Oldest(); pair != nil; pair = pair.Next() {
		if err := fn(pair.Key, pair.Value); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON emits the identifier-to-node mapping in insertion order.
func (w *APIWorkflow) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.nodes)
}
