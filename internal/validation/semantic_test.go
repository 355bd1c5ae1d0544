package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/flowconv/pkg/schema"
)

func intPtr(i int) *int { return &i }

func TestValidateSemantic_Valid(t *testing.T) {
	wf := &schema.UIWorkflow{
		Nodes: []schema.UINode{
			{ID: 1, Type: "Load"},
			{ID: 2, Type: "Save", Inputs: []schema.InputSlot{{Name: "image", Link: intPtr(1)}}},
		},
		Links: []schema.Link{
			{ID: 1, OriginID: 1, OriginSlot: 0, TargetID: 2, TargetSlot: 0},
		},
	}

	result := validateSemantic(wf)
	assert.True(t, result.Valid())
}

func TestValidateSemantic_UnknownLinkEndpoints(t *testing.T) {
	wf := &schema.UIWorkflow{
		Nodes: []schema.UINode{{ID: 1, Type: "Load"}},
		Links: []schema.Link{
			{ID: 1, OriginID: 42, TargetID: 1, TargetSlot: 0},
			{ID: 2, OriginID: 1, TargetID: 99, TargetSlot: 0},
		},
	}

	result := validateSemantic(wf)
	require.False(t, result.Valid())
	assert.Len(t, result.Errors, 2)
	assert.Equal(t, schema.ErrCodeUnknownNode, result.Errors[0].Code)
}

func TestValidateSemantic_DuplicateNodeID(t *testing.T) {
	wf := &schema.UIWorkflow{
		Nodes: []schema.UINode{
			{ID: 1, Type: "Load"},
			{ID: 1, Type: "Save"},
		},
	}

	result := validateSemantic(wf)
	require.False(t, result.Valid())
	assert.Equal(t, schema.ErrCodeDuplicateNode, result.Errors[0].Code)
}

func TestValidateSemantic_AmbiguousTargetSlot(t *testing.T) {
	wf := &schema.UIWorkflow{
		Nodes: []schema.UINode{
			{ID: 1, Type: "A"},
			{ID: 2, Type: "B"},
			{ID: 3, Type: "C"},
		},
		Links: []schema.Link{
			{ID: 1, OriginID: 1, TargetID: 3, TargetSlot: 0},
			{ID: 2, OriginID: 2, TargetID: 3, TargetSlot: 0},
		},
	}

	result := validateSemantic(wf)
	require.False(t, result.Valid())
	assert.Contains(t, result.Errors[0].Message, "more than one link")
}

func TestValidateSemantic_BoundaryIDsAllowedInsideBodies(t *testing.T) {
	wf := &schema.UIWorkflow{
		Nodes: []schema.UINode{{ID: 5, Type: "sub-blur"}},
		Definitions: &schema.Definitions{
			Subgraphs: []*schema.SubgraphDef{{
				ID:    "sub-blur",
				Nodes: []schema.UINode{{ID: 1, Type: "Blur"}},
				Links: []schema.Link{
					{ID: 10, OriginID: schema.SubgraphInputNodeID, TargetID: 1, TargetSlot: 0},
					{ID: 11, OriginID: 1, TargetID: schema.SubgraphOutputNodeID, TargetSlot: 0},
				},
			}},
		},
	}

	result := validateSemantic(wf)
	assert.True(t, result.Valid(), "boundary pseudo-nodes are legal endpoints in bodies: %v", result.Errors)
}

func TestValidateSemantic_DuplicateDefinitionID(t *testing.T) {
	wf := &schema.UIWorkflow{
		Nodes: []schema.UINode{{ID: 1, Type: "Load"}},
		Definitions: &schema.Definitions{
			Subgraphs: []*schema.SubgraphDef{
				{ID: "sub-a", Nodes: []schema.UINode{}},
				{ID: "sub-a", Nodes: []schema.UINode{}},
			},
		},
	}

	result := validateSemantic(wf)
	require.False(t, result.Valid())
	assert.Contains(t, result.Errors[0].Message, "duplicate subgraph definition")
}

func TestWorkflowValidator_Pipeline(t *testing.T) {
	wv, err := NewWorkflowValidator()
	require.NoError(t, err)

	// Structural failure short-circuits.
	result := wv.Validate(decodeDoc(t, `{"foo": "bar"}`))
	assert.False(t, result.Valid())

	// Semantic failure on a structurally valid document.
	result = wv.Validate(decodeDoc(t, `{
		"nodes": [{"id": 1, "type": "Load"}],
		"links": [[1, 42, 0, 1, 0]]
	}`))
	require.False(t, result.Valid())
	assert.Equal(t, schema.ErrCodeUnknownNode, result.Errors[0].Code)

	// Clean document decodes.
	wf, err := wv.ValidateAndDecode(decodeDoc(t, `{
		"nodes": [{"id": 1, "type": "Load"}],
		"links": []
	}`))
	require.NoError(t, err)
	assert.Len(t, wf.Nodes, 1)
	assert.Equal(t, "Load", wf.Nodes[0].Type)
}
