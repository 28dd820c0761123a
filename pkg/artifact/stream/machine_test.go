package stream

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

func newStreamingMachine(kind Kind) *Machine {
	m := NewMachine()
	m.Apply(Event{Type: EventID, Content: "doc-1"})
	m.Apply(Event{Type: EventTitle, Content: "Test Document"})
	m.Apply(Event{Type: EventKind, Content: string(kind)})
	return m
}

func TestMachineLifecycle(t *testing.T) {
	m := NewMachine()
	if m.Artifact().Status != StatusEmpty {
		t.Fatalf("initial status = %s, want empty", m.Artifact().Status)
	}

	m.Apply(Event{Type: EventID, Content: "doc-1"})
	art := m.Artifact()
	if art.DocumentID != "doc-1" || art.Status != StatusStreaming {
		t.Errorf("after id: %+v", art)
	}

	m.Apply(Event{Type: EventTitle, Content: "Essay"})
	m.Apply(Event{Type: EventKind, Content: "text"})
	m.Apply(Event{Type: EventTextDelta, Content: "Hello world."})
	m.Apply(Event{Type: EventFinish})

	art = m.Artifact()
	if art.Status != StatusIdle {
		t.Errorf("after finish status = %s, want idle", art.Status)
	}
	if art.Content != "Hello world." {
		t.Errorf("content = %q", art.Content)
	}
}

func TestMachineAppendOnlyDuringStreaming(t *testing.T) {
	m := newStreamingMachine(KindText)

	prev := 0
	for _, delta := range []string{"One. ", "Two. ", "Three. ", "Four."} {
		m.Apply(Event{Type: EventTextDelta, Content: delta})
		cur := len(m.Artifact().Content)
		if cur < prev {
			t.Fatalf("content shrank during streaming: %d -> %d", prev, cur)
		}
		prev = cur
	}
}

func TestMachineClearResetsContent(t *testing.T) {
	m := newStreamingMachine(KindText)
	m.Apply(Event{Type: EventTextDelta, Content: "old version"})
	m.Apply(Event{Type: EventClear})
	if m.Artifact().Content != "" {
		t.Errorf("content after clear = %q", m.Artifact().Content)
	}

	m.Apply(Event{Type: EventTextDelta, Content: "new version"})
	if m.Artifact().Content != "new version" {
		t.Errorf("content after rewrite = %q", m.Artifact().Content)
	}
}

func TestMachineDeduplicatesOverlappingDeltas(t *testing.T) {
	m := newStreamingMachine(KindText)
	m.Apply(Event{Type: EventTextDelta, Content: "The cat sat"})
	m.Apply(Event{Type: EventTextDelta, Content: "cat sat on the mat"})

	if got := m.Artifact().Content; got != "The cat sat on the mat" {
		t.Errorf("content = %q, want %q", got, "The cat sat on the mat")
	}
}

func TestMachineFinishIsTerminal(t *testing.T) {
	m := newStreamingMachine(KindText)
	m.Apply(Event{Type: EventTextDelta, Content: "final text"})
	m.Apply(Event{Type: EventFinish})

	frozen := m.Artifact().Content

	// Late/duplicate events are no-ops, not fatal.
	if got := m.Apply(Event{Type: EventTextDelta, Content: " trailing"}); got != "" {
		t.Errorf("late delta applied: %q", got)
	}
	m.Apply(Event{Type: EventFinish})
	m.Apply(Event{Type: EventClear})

	if m.Artifact().Content != frozen {
		t.Errorf("content changed after finish: %q -> %q", frozen, m.Artifact().Content)
	}
	if m.Artifact().Status != StatusIdle {
		t.Errorf("status = %s, want idle", m.Artifact().Status)
	}
}

func TestMachineKindImmutable(t *testing.T) {
	m := newStreamingMachine(KindCode)
	m.Apply(Event{Type: EventKind, Content: "sheet"})
	if m.Artifact().Kind != KindCode {
		t.Errorf("kind changed to %s", m.Artifact().Kind)
	}
}

func TestMachineVisibilityUntouchedByStreaming(t *testing.T) {
	m := newStreamingMachine(KindText)
	m.SetVisibility(VisibilityExpanded)

	m.Apply(Event{Type: EventTextDelta, Content: "body"})
	m.Apply(Event{Type: EventClear})
	m.Apply(Event{Type: EventTextDelta, Content: "body again"})
	m.Apply(Event{Type: EventFinish})

	if m.Artifact().Visibility != VisibilityExpanded {
		t.Errorf("visibility mutated by stream events: %s", m.Artifact().Visibility)
	}
}

func TestMachineCodeStreamConsumesTag(t *testing.T) {
	m := newStreamingMachine(KindCode)

	m.Apply(Event{Type: EventCodeDelta, Content: "python\ndef f():\n"})
	if m.Language() != "python" {
		t.Errorf("language = %q, want python", m.Language())
	}
	if strings.Contains(m.Artifact().Content, "python\n") {
		t.Errorf("language tag leaked into content: %q", m.Artifact().Content)
	}

	m.Apply(Event{Type: EventCodeDelta, Content: "    return 1\n"})
	m.Apply(Event{Type: EventFinish})

	if got := m.Artifact().Content; got != "def f():\n    return 1" {
		t.Errorf("final content = %q", got)
	}
}

func TestMachineSuggestionsAppendOnly(t *testing.T) {
	m := newStreamingMachine(KindText)

	m.Apply(Event{Type: EventSuggestion, Suggestion: &Suggestion{ID: "s1", Category: "clarity"}})
	m.Apply(Event{Type: EventSuggestion, Suggestion: &Suggestion{ID: "s2", Category: "flow"}})
	m.Apply(Event{Type: EventFinish})
	// Suggestions may still arrive after finish.
	m.Apply(Event{Type: EventSuggestion, Suggestion: &Suggestion{ID: "s3", Category: "grammar"}})

	got := m.Metadata().Suggestions
	if len(got) != 3 || got[0].ID != "s1" || got[1].ID != "s2" || got[2].ID != "s3" {
		t.Errorf("suggestions = %+v", got)
	}
}

func TestMachineUnknownEventIgnored(t *testing.T) {
	m := newStreamingMachine(KindText)
	m.Apply(Event{Type: EventTextDelta, Content: "before"})
	m.Apply(Event{Type: "hologram-delta", Content: "???"})
	m.Apply(Event{Type: EventTextDelta, Content: " after"})

	if got := m.Artifact().Content; got != "before after" {
		t.Errorf("content = %q, want %q", got, "before after")
	}
}

func TestMachineFinishUsesProvidedPayload(t *testing.T) {
	m := newStreamingMachine(KindSheet)
	m.Apply(Event{Type: EventSheetDelta, Content: "```csv\na,b\n1,2\n```"})
	m.Apply(Event{Type: EventFinish, Content: "a,b\n1,2"})

	if got := m.Artifact().Content; got != "a,b\n1,2" {
		t.Errorf("content = %q, want cleaned csv", got)
	}
}

func TestMachineConcurrentApplyAndRead(t *testing.T) {
	m := newStreamingMachine(KindText)

	// A generation goroutine applies deltas while request goroutines read the
	// artifact mid-stream. Run under -race to catch unsynchronized access.
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			m.Apply(Event{Type: EventTextDelta, Content: fmt.Sprintf("chunk %d. ", i)})
		}
		m.Apply(Event{Type: EventFinish})
		close(done)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				art := m.Artifact()
				if art.DocumentID != "doc-1" {
					t.Errorf("document id = %q mid-stream", art.DocumentID)
					return
				}
				_ = m.Metadata()
				_ = m.Raw()
				_ = m.Finished()
				_ = m.Language()
			}
		}()
	}

	wg.Wait()
	if got := m.Artifact().Status; got != StatusIdle {
		t.Errorf("status after finish = %s, want idle", got)
	}
}
