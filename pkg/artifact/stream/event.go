package stream

import "time"

// Kind is the semantic type of a document.
type Kind string

const (
	KindText  Kind = "text"
	KindCode  Kind = "code"
	KindSheet Kind = "sheet"
	KindImage Kind = "image"
)

// ValidKind reports whether k is one of the supported document kinds.
func ValidKind(k Kind) bool {
	switch k {
	case KindText, KindCode, KindSheet, KindImage:
		return true
	}
	return false
}

// Status is the streaming phase of an artifact.
type Status string

const (
	StatusEmpty     Status = "empty"
	StatusStreaming Status = "streaming"
	StatusIdle      Status = "idle"
)

// Visibility is the panel state of an artifact. It is user-driven input and
// is never mutated by stream events.
type Visibility string

const (
	VisibilityCollapsed Visibility = "collapsed"
	VisibilityExpanded  Visibility = "expanded"
)

// EventType tags one record on the server-to-client delta channel.
type EventType string

const (
	EventID         EventType = "id"
	EventTitle      EventType = "title"
	EventKind       EventType = "kind"
	EventClear      EventType = "clear"
	EventTextDelta  EventType = "text-delta"
	EventCodeDelta  EventType = "code-delta"
	EventSheetDelta EventType = "sheet-delta"
	EventImageDelta EventType = "image-delta"
	EventSuggestion EventType = "suggestion"
	EventFinish     EventType = "finish"
)

// DeltaEventFor maps a document kind to its delta event type.
func DeltaEventFor(k Kind) EventType {
	switch k {
	case KindCode:
		return EventCodeDelta
	case KindSheet:
		return EventSheetDelta
	case KindImage:
		return EventImageDelta
	default:
		return EventTextDelta
	}
}

// IsDelta reports whether t carries a content fragment.
func IsDelta(t EventType) bool {
	switch t {
	case EventTextDelta, EventCodeDelta, EventSheetDelta, EventImageDelta:
		return true
	}
	return false
}

// Suggestion is a structured writing-improvement record attached to a
// document. Created once by the suggestion generator and append-only for the
// streaming core; resolution is flipped externally.
type Suggestion struct {
	ID                string    `json:"id"`
	DocumentID        string    `json:"document_id"`
	DocumentCreatedAt time.Time `json:"document_created_at"`
	OriginalText      string    `json:"original_text"`
	SuggestedText     string    `json:"suggested_text"`
	Description       string    `json:"description"`
	Category          string    `json:"category"` // clarity | grammar | structure | organization | flow
	Impact            string    `json:"impact"`   // high | medium | low
	MessageIndex      *int      `json:"message_index"`
	IsResolved        bool      `json:"is_resolved"`
	UserID            string    `json:"user_id"`
	CreatedAt         time.Time `json:"created_at"`
}

// Event is one tagged record on the fragment/delta channel. DocumentID lets
// the client attribute the record when several documents stream concurrently.
type Event struct {
	Type       EventType   `json:"type"`
	DocumentID string      `json:"document_id,omitempty"`
	Content    string      `json:"content,omitempty"`
	Suggestion *Suggestion `json:"suggestion,omitempty"`
}
