package stream

import (
	"log"
	"strings"
	"sync"

	"ai-canvas-be/pkg/artifact/decoder"
	"ai-canvas-be/pkg/artifact/dedupe"
	"ai-canvas-be/pkg/artifact/normalize"
)

// Artifact is the live, possibly-still-streaming in-memory representation of
// one document. Content is the single source of truth for rendering.
type Artifact struct {
	DocumentID string     `json:"document_id"`
	Kind       Kind       `json:"kind"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Status     Status     `json:"status"`
	Visibility Visibility `json:"visibility"`

	// Language is set for code documents once the tag line resolves or the
	// final decode pass guesses one.
	Language string `json:"language,omitempty"`
}

// Metadata is the auxiliary state keyed alongside an artifact.
type Metadata struct {
	Suggestions []Suggestion
	Scratch     decoder.Scratch
}

// Machine owns one artifact's lifecycle and is the sole mutation surface for
// fragment application, kind-specific decoding and phase transitions.
//
// Content is monotonically appended during streaming (after deduplication)
// except via an explicit clear event; finish replaces it once with the fully
// decoded final payload.
//
// A machine is shared between the generation goroutine applying events and
// request goroutines reading mid-stream state, so every accessor locks.
type Machine struct {
	mu       sync.Mutex
	artifact Artifact
	meta     Metadata
	raw      strings.Builder
	finished bool

	// tunables, zero values fall back to the dedupe defaults
	DedupeWindow   int
	DedupeMinMatch int
}

// NewMachine returns a machine in the empty state.
func NewMachine() *Machine {
	return &Machine{
		artifact: Artifact{
			Status:     StatusEmpty,
			Visibility: VisibilityCollapsed,
		},
	}
}

// Artifact returns a copy of the current artifact state.
func (m *Machine) Artifact() Artifact {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.artifact
}

// Metadata returns a copy of the auxiliary state.
func (m *Machine) Metadata() Metadata {
	m.mu.Lock()
	defer m.mu.Unlock()
	meta := m.meta
	meta.Suggestions = append([]Suggestion(nil), m.meta.Suggestions...)
	return meta
}

// Raw returns the accumulated raw (pre-decode) content.
func (m *Machine) Raw() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.raw.String()
}

// Finished reports whether the finish event has been applied.
func (m *Machine) Finished() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finished
}

// SetVisibility is the only way to change the panel state. Streaming events
// must not hijack it; collapse/expand is strictly a user action.
func (m *Machine) SetVisibility(v Visibility) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifact.Visibility = v
}

// Apply feeds one stream event through the machine. For delta events the
// returned string is the text actually appended to Content after the
// decode/dedupe/normalize pipeline; for every other event it is empty.
//
// A delta or duplicate finish arriving after finish is a logged no-op.
func (m *Machine) Apply(ev Event) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.finished && (IsDelta(ev.Type) || ev.Type == EventFinish || ev.Type == EventClear) {
		log.Printf("[stream] dropping %s event after finish (document %s)", ev.Type, m.artifact.DocumentID)
		return ""
	}

	switch ev.Type {
	case EventID:
		m.artifact.DocumentID = ev.Content
		m.toStreaming()

	case EventTitle:
		m.artifact.Title = ev.Content
		m.toStreaming()

	case EventKind:
		if m.artifact.Kind != "" && m.artifact.Kind != Kind(ev.Content) {
			log.Printf("[stream] ignoring kind change %s -> %s (document %s)",
				m.artifact.Kind, ev.Content, m.artifact.DocumentID)
			return ""
		}
		if ValidKind(Kind(ev.Content)) {
			m.artifact.Kind = Kind(ev.Content)
		}

	case EventClear:
		if m.artifact.Status != StatusStreaming {
			return ""
		}
		m.artifact.Content = ""
		m.raw.Reset()
		m.meta.Scratch = decoder.Scratch{}

	case EventTextDelta, EventCodeDelta, EventSheetDelta, EventImageDelta:
		if m.artifact.Status != StatusStreaming {
			log.Printf("[stream] dropping delta outside streaming (document %s, status %s)",
				m.artifact.DocumentID, m.artifact.Status)
			return ""
		}
		return m.applyDelta(ev.Content)

	case EventSuggestion:
		if ev.Suggestion != nil {
			m.meta.Suggestions = append(m.meta.Suggestions, *ev.Suggestion)
		}

	case EventFinish:
		if m.artifact.Status != StatusStreaming {
			return ""
		}
		m.finish(ev.Content)

	default:
		// Forward-compatible with new delta kinds: log and move on.
		log.Printf("[stream] unknown event type %q ignored", ev.Type)
	}

	return ""
}

func (m *Machine) toStreaming() {
	if m.artifact.Status != StatusIdle {
		m.artifact.Status = StatusStreaming
	}
}

func (m *Machine) applyDelta(raw string) string {
	m.raw.WriteString(raw)

	payload := decoder.For(string(m.artifact.Kind)).DeltaPayload(raw, &m.meta.Scratch)
	if m.meta.Scratch.Language != "" {
		m.artifact.Language = m.meta.Scratch.Language
	}
	if payload == "" {
		return ""
	}

	window, minMatch := m.DedupeWindow, m.DedupeMinMatch
	if window == 0 {
		window = dedupe.DefaultWindow
	}
	if minMatch == 0 {
		minMatch = dedupe.DefaultMinMatch
	}
	strip := dedupe.OverlapWindow(m.artifact.Content, payload, window, minMatch)
	appended := payload[strip:]
	if m.artifact.Kind == KindText || m.artifact.Kind == "" {
		// Whitespace collapse is prose-only; it would corrupt indentation
		// in code and field values in sheets.
		appended = normalize.Fragment(appended)
	}
	if appended == "" {
		return ""
	}

	m.artifact.Content += appended
	return appended
}

// finish runs the decoder's authoritative pass over the accumulated raw
// content and replaces Content with the cleaned result. When the orchestrator
// already computed the final payload it arrives on the event and wins.
func (m *Machine) finish(finalContent string) {
	if finalContent != "" {
		m.artifact.Content = finalContent
	} else if m.raw.Len() > 0 {
		res := decoder.For(string(m.artifact.Kind)).Finalize(m.raw.String())
		m.artifact.Content = res.Payload
		if res.Subtype != "" {
			m.artifact.Language = res.Subtype
		}
	}
	m.artifact.Status = StatusIdle
	m.finished = true
}

// Language reports the language detected so far for code documents.
func (m *Machine) Language() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.meta.Scratch.Language
}
