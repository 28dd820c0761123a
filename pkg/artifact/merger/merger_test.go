package merger

import (
	"reflect"
	"testing"
)

func TestMergeLeadInWithDocumentTurn(t *testing.T) {
	msgs := []Message{
		{
			ID:      "a",
			Role:    "assistant",
			Content: "Let me create a document for you with a structured essay on this topic.",
		},
		{
			ID:   "b",
			Role: "assistant",
			Parts: []Part{
				{Type: "tool-call", ToolName: "createDocument"},
				{Type: "text", Text: "I've created the essay."},
			},
		},
	}

	out := Merge(msgs)
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}

	wantText := "Let me create a document for you with a structured essay on this topic. I've created the essay."
	if out[0].Text != wantText {
		t.Errorf("text = %q, want %q", out[0].Text, wantText)
	}
	if len(out[0].ToolInvocations) != 1 || out[0].ToolInvocations[0].ToolName != "createDocument" {
		t.Errorf("tool invocations = %+v", out[0].ToolInvocations)
	}
}

func TestMergeParagraphJoinWithoutContinuation(t *testing.T) {
	msgs := []Message{
		{ID: "a", Role: "assistant", Content: "Sure, here's a plan."},
		{
			ID:   "b",
			Role: "assistant",
			Parts: []Part{
				{Type: "tool-call", ToolName: "updateDocument"},
				{Type: "text", Text: "Anything else you'd like changed?"},
			},
		},
	}

	out := Merge(msgs)
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}
	want := "Sure, here's a plan.\n\nAnything else you'd like changed?"
	if out[0].Text != want {
		t.Errorf("text = %q, want %q", out[0].Text, want)
	}
}

func TestMergeLeavesUnrelatedMessagesAlone(t *testing.T) {
	msgs := []Message{
		{ID: "u1", Role: "user", Content: "Hello"},
		{ID: "a1", Role: "assistant", Content: "Hi there"},
		{ID: "u2", Role: "user", Content: "How are you?"},
		{ID: "a2", Role: "assistant", Content: "Doing well."},
	}

	out := Merge(msgs)
	if len(out) != 4 {
		t.Fatalf("len = %d, want 4", len(out))
	}
}

func TestMergeDoesNotChain(t *testing.T) {
	// Three consecutive document-related assistant rows collapse into at
	// most pairs, never a chain.
	msgs := []Message{
		{ID: "a", Role: "assistant", Content: "Lead-in."},
		{ID: "b", Role: "assistant", Parts: []Part{{Type: "tool-call", ToolName: "createDocument"}}},
		{ID: "c", Role: "assistant", Parts: []Part{{Type: "tool-call", ToolName: "updateDocument"}}},
	}

	out := Merge(msgs)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if len(out[0].ToolInvocations) != 1 {
		t.Errorf("first message swallowed the chain: %+v", out[0])
	}
}

func TestMergeIdempotent(t *testing.T) {
	cases := [][]Message{
		{
			{ID: "a", Role: "assistant", Content: "Let me write that up."},
			{ID: "b", Role: "assistant", Parts: []Part{
				{Type: "tool-call", ToolName: "createDocument"},
				{Type: "text", Text: "I've created the essay."},
			}},
		},
		{
			{ID: "x", Role: "assistant", Content: "Unrelated."},
			{ID: "a", Role: "assistant", Content: "Lead-in."},
			{ID: "b", Role: "assistant", Parts: []Part{{Type: "tool-call", ToolName: "createDocument"}}},
		},
		{},
	}

	for i, msgs := range cases {
		once := Merge(msgs)
		twice := MergeDisplay(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("case %d not idempotent:\nonce:  %+v\ntwice: %+v", i, once, twice)
		}
	}
}

func TestFlattenStructuredParts(t *testing.T) {
	msg := Message{
		ID:   "m",
		Role: "assistant",
		Parts: []Part{
			{Type: "reasoning", Text: "User wants an essay."},
			{Type: "text", Text: "On it."},
			{Type: "tool-call", ToolName: "createDocument", Args: []byte(`{"title":"Essay"}`)},
			{Type: "tool-result", ToolName: "createDocument", Result: []byte(`{"id":"doc-1"}`)},
		},
	}

	out := Merge([]Message{msg})
	if len(out) != 1 {
		t.Fatalf("len = %d", len(out))
	}
	dm := out[0]
	if dm.Text != "On it." || dm.Reasoning != "User wants an essay." {
		t.Errorf("flattened = %+v", dm)
	}
	if len(dm.ToolInvocations) != 1 {
		t.Fatalf("invocations = %+v", dm.ToolInvocations)
	}
	if string(dm.ToolInvocations[0].Result) != `{"id":"doc-1"}` {
		t.Errorf("result not paired: %+v", dm.ToolInvocations[0])
	}
}

func TestMergeBareToolRowWithLeadOut(t *testing.T) {
	msgs := []Message{
		{ID: "a", Role: "assistant", Parts: []Part{{Type: "tool-call", ToolName: "createDocument"}}},
		{ID: "b", Role: "assistant", Content: "The document is ready for review."},
	}

	out := Merge(msgs)
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}
	if out[0].Text != "The document is ready for review." {
		t.Errorf("text = %q", out[0].Text)
	}
	if len(out[0].ToolInvocations) != 1 {
		t.Errorf("invocations = %+v", out[0].ToolInvocations)
	}
}
