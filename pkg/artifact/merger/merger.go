package merger

import (
	"encoding/json"
	"strings"
)

// Message is one persisted conversation message with structured parts.
type Message struct {
	ID      string `json:"id"`
	Role    string `json:"role"` // user | assistant | tool
	Content string `json:"content"`
	Parts   []Part `json:"parts,omitempty"`
}

// Part is one structured content part of a message.
type Part struct {
	Type     string          `json:"type"` // text | tool-call | tool-result | reasoning
	Text     string          `json:"text,omitempty"`
	ToolName string          `json:"tool_name,omitempty"`
	Args     json.RawMessage `json:"args,omitempty"`
	Result   json.RawMessage `json:"result,omitempty"`
}

// ToolInvocation is one flattened tool call carried by a display message.
type ToolInvocation struct {
	ToolName string          `json:"tool_name"`
	Args     json.RawMessage `json:"args,omitempty"`
	Result   json.RawMessage `json:"result,omitempty"`
}

// DisplayMessage is the render-ready shape after flattening and merging.
type DisplayMessage struct {
	ID              string           `json:"id"`
	Role            string           `json:"role"`
	Text            string           `json:"text"`
	Reasoning       string           `json:"reasoning,omitempty"`
	ToolInvocations []ToolInvocation `json:"tool_invocations,omitempty"`

	// Merged marks a message already assembled from two halves. Without it a
	// repeated pass could re-join concatenated text that still looks
	// document-related.
	Merged bool `json:"-"`
}

// documentTools are the invocations that mark a message as part of a
// document-generation turn.
var documentTools = map[string]bool{
	"createDocument":     true,
	"updateDocument":     true,
	"requestSuggestions": true,
}

// continuationPhrases start a follow-up that belongs on the same line as the
// lead-in sentence rather than in a new paragraph.
var continuationPhrases = []string{
	"I've created",
	"I've updated",
	"I've added",
	"I have created",
	"I have updated",
	"The document",
	"Done!",
}

// Merge post-processes persisted conversation messages into display-ready
// messages. The chat transport sometimes splits one generation turn into two
// rows: the lead-in sentence, then the document tool call. Without merging, a
// reload visually fragments what streamed as one message.
//
// Merge is idempotent: a second pass finds nothing left to join.
func Merge(messages []Message) []DisplayMessage {
	flat := make([]DisplayMessage, len(messages))
	for i, msg := range messages {
		flat[i] = flatten(msg)
	}
	return MergeDisplay(flat)
}

// MergeDisplay is pass 2 over already-flattened messages. Running it on its
// own output changes nothing.
func MergeDisplay(flat []DisplayMessage) []DisplayMessage {
	out := make([]DisplayMessage, 0, len(flat))
	for i := 0; i < len(flat); i++ {
		cur := flat[i]

		if i+1 < len(flat) && shouldMerge(cur, flat[i+1]) {
			out = append(out, join(cur, flat[i+1]))
			i++ // consume both; never chain a merged result into the next pair
			continue
		}

		out = append(out, cur)
	}

	return out
}

// flatten is pass 1: normalize structured parts into {text, reasoning,
// toolInvocations}. A message without parts keeps its plain content as text.
func flatten(msg Message) DisplayMessage {
	dm := DisplayMessage{ID: msg.ID, Role: msg.Role}

	if len(msg.Parts) == 0 {
		dm.Text = msg.Content
		return dm
	}

	var texts, reasonings []string
	for _, part := range msg.Parts {
		switch part.Type {
		case "text":
			if part.Text != "" {
				texts = append(texts, part.Text)
			}
		case "reasoning":
			if part.Text != "" {
				reasonings = append(reasonings, part.Text)
			}
		case "tool-call":
			dm.ToolInvocations = append(dm.ToolInvocations, ToolInvocation{
				ToolName: part.ToolName,
				Args:     part.Args,
			})
		case "tool-result":
			attachResult(dm.ToolInvocations, part)
		}
	}

	if len(texts) == 0 && msg.Content != "" {
		texts = append(texts, msg.Content)
	}
	dm.Text = strings.Join(texts, "\n\n")
	dm.Reasoning = strings.Join(reasonings, "\n\n")
	return dm
}

// attachResult pairs a tool-result part with the latest unresolved call of
// the same tool.
func attachResult(invocations []ToolInvocation, part Part) {
	for i := len(invocations) - 1; i >= 0; i-- {
		if invocations[i].ToolName == part.ToolName && invocations[i].Result == nil {
			invocations[i].Result = part.Result
			return
		}
	}
}

func hasDocumentTool(dm DisplayMessage) bool {
	for _, inv := range dm.ToolInvocations {
		if documentTools[inv.ToolName] {
			return true
		}
	}
	return false
}

// shouldMerge decides whether two adjacent assistant messages belong to one
// generation turn. The guards also make Merge idempotent: a joined message
// always ends up with both tool invocations and text, which disqualifies it
// from either direction on a later pass.
func shouldMerge(a, b DisplayMessage) bool {
	if a.Role != "assistant" || b.Role != "assistant" {
		return false
	}
	if a.Merged || b.Merged {
		return false
	}

	// lead-in sentence followed by the tool-call row
	if len(a.ToolInvocations) == 0 && a.Text != "" && hasDocumentTool(b) {
		return true
	}

	// bare tool-call row followed by its lead-out sentence
	if hasDocumentTool(a) && a.Text == "" && len(b.ToolInvocations) == 0 {
		return true
	}

	return false
}

// join concatenates two turn halves. The second text lands on the same line
// when it opens with a canned continuation phrase, else after a blank line.
func join(a, b DisplayMessage) DisplayMessage {
	merged := DisplayMessage{
		ID:              a.ID,
		Role:            a.Role,
		ToolInvocations: append(append([]ToolInvocation{}, a.ToolInvocations...), b.ToolInvocations...),
		Merged:          true,
	}

	switch {
	case a.Text == "":
		merged.Text = b.Text
	case b.Text == "":
		merged.Text = a.Text
	case isContinuation(b.Text):
		merged.Text = a.Text + " " + b.Text
	default:
		merged.Text = a.Text + "\n\n" + b.Text
	}

	if a.Reasoning != "" || b.Reasoning != "" {
		parts := []string{}
		if a.Reasoning != "" {
			parts = append(parts, a.Reasoning)
		}
		if b.Reasoning != "" {
			parts = append(parts, b.Reasoning)
		}
		merged.Reasoning = strings.Join(parts, "\n\n")
	}

	return merged
}

func isContinuation(text string) bool {
	for _, phrase := range continuationPhrases {
		if strings.HasPrefix(text, phrase) {
			return true
		}
	}
	return false
}
