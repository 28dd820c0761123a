package service

import (
	"encoding/json"
	"testing"

	"ai-canvas-be/pkg/artifact/merger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentTurnPartsPairCallWithResult(t *testing.T) {
	args := json.RawMessage(`{"title":"Essay","kind":"text"}`)
	result := json.RawMessage(`{"id":"doc-1","title":"Essay"}`)

	parts := documentTurnParts("createDocument", args, result)
	require.Len(t, parts, 2)
	assert.Equal(t, "tool-call", parts[0].Type)
	assert.Equal(t, "tool-result", parts[1].Type)
	assert.Equal(t, "createDocument", parts[1].ToolName)

	// Flattened history must surface the result on the invocation.
	display := merger.Merge([]merger.Message{{
		ID:    "m1",
		Role:  "assistant",
		Parts: parts,
	}})
	require.Len(t, display, 1)
	require.Len(t, display[0].ToolInvocations, 1)
	inv := display[0].ToolInvocations[0]
	assert.Equal(t, "createDocument", inv.ToolName)
	assert.JSONEq(t, string(args), string(inv.Args))
	assert.JSONEq(t, string(result), string(inv.Result))
}

func TestDocumentTurnPartsWithoutResult(t *testing.T) {
	parts := documentTurnParts("updateDocument", json.RawMessage(`{"id":"doc-1"}`), nil)
	require.Len(t, parts, 1)
	assert.Equal(t, "tool-call", parts[0].Type)
}
