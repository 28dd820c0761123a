package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-canvas-be/pkg/artifact/locker"
	"ai-canvas-be/pkg/artifact/stream"
	"ai-canvas-be/pkg/llm"
)

type scriptedProvider struct {
	fragments []string
	err       error
	perDelay  time.Duration
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return strings.Join(p.fragments, ""), p.err
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return strings.Join(p.fragments, ""), p.err
}

func (p *scriptedProvider) ChatStream(ctx context.Context, history []llm.Message, onFragment llm.StreamHandler, options ...llm.Option) error {
	for _, f := range p.fragments {
		if p.perDelay > 0 {
			select {
			case <-time.After(p.perDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := onFragment(f); err != nil {
			return err
		}
	}
	return p.err
}

type recordingSaver struct {
	mu    sync.Mutex
	snaps []Snapshot
	err   error
}

func (s *recordingSaver) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = append(s.snaps, snap)
	return s.err
}

func (s *recordingSaver) last() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.snaps) == 0 {
		return Snapshot{}, false
	}
	return s.snaps[len(s.snaps)-1], true
}

type recordingSink struct {
	mu     sync.Mutex
	events []stream.Event
	err    error
}

func (s *recordingSink) Emit(ev stream.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

func (s *recordingSink) ofType(t stream.EventType) []stream.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []stream.Event
	for _, ev := range s.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func (s *recordingSink) deltaContent(t stream.EventType) string {
	var b strings.Builder
	for _, ev := range s.ofType(t) {
		b.WriteString(ev.Content)
	}
	return b.String()
}

func TestCreateDocumentStreamsAndPersists(t *testing.T) {
	provider := &scriptedProvider{fragments: []string{
		"# Essay on Silicon Valley\n\n", "Silicon Valley began ", "as an orchard region.",
	}}
	saver := &recordingSaver{}
	sink := &recordingSink{}
	o := New(provider, saver, locker.NewRegistry())

	art, err := o.CreateDocument(context.Background(), CreateRequest{
		DocumentID: "doc-1",
		Title:      "Essay on Silicon Valley",
		Kind:       stream.KindText,
		UserID:     "user-1",
	}, sink)
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}

	if art.Status != stream.StatusIdle {
		t.Errorf("final status = %q, want %q", art.Status, stream.StatusIdle)
	}
	if !strings.Contains(art.Content, "orchard region") {
		t.Errorf("final content missing tail: %q", art.Content)
	}

	snap, ok := saver.last()
	if !ok {
		t.Fatal("no snapshot persisted")
	}
	if snap.Content != art.Content {
		t.Errorf("persisted content = %q, want %q", snap.Content, art.Content)
	}
	if snap.DocumentID != "doc-1" || snap.UserID != "user-1" {
		t.Errorf("snapshot identity = %q/%q", snap.DocumentID, snap.UserID)
	}

	for _, typ := range []stream.EventType{stream.EventID, stream.EventTitle, stream.EventKind, stream.EventFinish} {
		if len(sink.ofType(typ)) != 1 {
			t.Errorf("emitted %d %q events, want 1", len(sink.ofType(typ)), typ)
		}
	}
	if got := sink.ofType(stream.EventFinish)[0].Content; got != art.Content {
		t.Errorf("finish payload = %q, want final content %q", got, art.Content)
	}
}

func TestCreateDocumentBuffersSmallFragments(t *testing.T) {
	// 40 ten-char fragments with a 120-char threshold should coalesce into
	// a handful of deltas, never one per fragment.
	var fragments []string
	for i := 0; i < 40; i++ {
		fragments = append(fragments, "abcdefghi ")
	}
	provider := &scriptedProvider{fragments: fragments}
	sink := &recordingSink{}
	o := New(provider, &recordingSaver{}, locker.NewRegistry())

	_, err := o.CreateDocument(context.Background(), CreateRequest{
		DocumentID: "doc-buf",
		Title:      "Buffered",
		Kind:       stream.KindText,
		UserID:     "u",
	}, sink)
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}

	deltas := sink.ofType(stream.EventTextDelta)
	if len(deltas) == 0 || len(deltas) >= 40 {
		t.Fatalf("got %d text deltas, want coalesced (>0, <40)", len(deltas))
	}
	for i, d := range deltas[:len(deltas)-1] {
		if len(d.Content) < DefaultFlushThreshold {
			t.Errorf("delta %d flushed at %d chars, below threshold", i, len(d.Content))
		}
	}
}

func TestCreateCodeEmitsLanguageEarly(t *testing.T) {
	provider := &scriptedProvider{fragments: []string{
		"python\n", "def main():\n", "    print('hi')\n",
	}}
	sink := &recordingSink{}
	o := New(provider, &recordingSaver{}, locker.NewRegistry())

	art, err := o.CreateDocument(context.Background(), CreateRequest{
		DocumentID: "doc-code",
		Title:      "Hello",
		Kind:       stream.KindCode,
		UserID:     "u",
	}, sink)
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}

	if art.Language != "python" {
		t.Errorf("language = %q, want python", art.Language)
	}
	if strings.Contains(art.Content, "python\n") {
		t.Errorf("tag leaked into content: %q", art.Content)
	}
	// The first code delta must already be flushed when the language is
	// known, even though the buffer is under the threshold.
	deltas := sink.ofType(stream.EventCodeDelta)
	if len(deltas) == 0 {
		t.Fatal("no code deltas emitted")
	}
	if !strings.HasPrefix(deltas[0].Content, "def main():") {
		t.Errorf("first delta = %q, want code after tag", deltas[0].Content)
	}
}

func TestUpdateDocumentClearsBeforeRewrite(t *testing.T) {
	provider := &scriptedProvider{fragments: []string{"Fresh rewrite."}}
	sink := &recordingSink{}
	o := New(provider, &recordingSaver{}, locker.NewRegistry())

	art, err := o.UpdateDocument(context.Background(), UpdateRequest{
		DocumentID:     "doc-up",
		Title:          "Essay",
		Kind:           stream.KindText,
		UserID:         "u",
		CurrentContent: "Old content.",
		Description:    "rewrite it",
	}, sink)
	if err != nil {
		t.Fatalf("UpdateDocument() error = %v", err)
	}

	if len(sink.ofType(stream.EventClear)) != 1 {
		t.Fatal("expected exactly one clear event")
	}
	if strings.Contains(art.Content, "Old content") {
		t.Errorf("stale content survived rewrite: %q", art.Content)
	}
}

func TestConcurrentUpdateRejected(t *testing.T) {
	locks := locker.NewRegistry()
	o := New(&scriptedProvider{fragments: []string{"x"}}, &recordingSaver{}, locks)

	if !locks.TryAcquire("doc-busy") {
		t.Fatal("setup: could not acquire lock")
	}
	defer locks.Release("doc-busy")

	_, err := o.UpdateDocument(context.Background(), UpdateRequest{
		DocumentID: "doc-busy",
		Title:      "Busy",
		Kind:       stream.KindText,
		UserID:     "u",
	}, &recordingSink{})
	if !errors.Is(err, ErrConcurrentUpdate) {
		t.Fatalf("error = %v, want ErrConcurrentUpdate", err)
	}
}

func TestProviderFailureSavesPartialAndReleasesLock(t *testing.T) {
	provider := &scriptedProvider{
		fragments: []string{"Partial content before "},
		err:       errors.New("connection reset"),
	}
	saver := &recordingSaver{}
	locks := locker.NewRegistry()
	o := New(provider, saver, locks)

	_, err := o.CreateDocument(context.Background(), CreateRequest{
		DocumentID: "doc-fail",
		Title:      "Doomed",
		Kind:       stream.KindText,
		UserID:     "u",
	}, &recordingSink{})
	if err == nil {
		t.Fatal("expected provider error")
	}

	snap, ok := saver.last()
	if !ok {
		t.Fatal("partial content was not persisted")
	}
	if !strings.Contains(snap.Content, "Partial content") {
		t.Errorf("partial snapshot = %q", snap.Content)
	}
	if locks.Held("doc-fail") {
		t.Error("lock still held after failure")
	}
}

func TestStreamTimeoutEndsRun(t *testing.T) {
	provider := &scriptedProvider{
		fragments: []string{"a", "b", "c", "d", "e", "f"},
		perDelay:  50 * time.Millisecond,
	}
	saver := &recordingSaver{}
	locks := locker.NewRegistry()
	o := New(provider, saver, locks)
	o.StreamTimeout = 120 * time.Millisecond

	_, err := o.CreateDocument(context.Background(), CreateRequest{
		DocumentID: "doc-slow",
		Title:      "Slow",
		Kind:       stream.KindText,
		UserID:     "u",
	}, &recordingSink{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if locks.Held("doc-slow") {
		t.Error("lock still held after timeout")
	}
	if _, ok := saver.last(); !ok {
		t.Error("no best-effort snapshot after timeout")
	}
}

func TestSinkFailureDoesNotAbortGeneration(t *testing.T) {
	provider := &scriptedProvider{fragments: []string{"Content survives a dead client."}}
	saver := &recordingSaver{}
	o := New(provider, saver, locker.NewRegistry())

	art, err := o.CreateDocument(context.Background(), CreateRequest{
		DocumentID: "doc-sink",
		Title:      "Resilient",
		Kind:       stream.KindText,
		UserID:     "u",
	}, &recordingSink{err: errors.New("websocket closed")})
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	snap, ok := saver.last()
	if !ok {
		t.Fatal("no snapshot persisted")
	}
	if snap.Content != art.Content {
		t.Errorf("persisted %q, want %q", snap.Content, art.Content)
	}
}

func TestSheetFlushesOnRowBoundary(t *testing.T) {
	provider := &scriptedProvider{fragments: []string{
		"name,role\n", "Ada,engineer\n", "Mo,designer\n",
	}}
	sink := &recordingSink{}
	o := New(provider, &recordingSaver{}, locker.NewRegistry())

	_, err := o.CreateDocument(context.Background(), CreateRequest{
		DocumentID: "doc-sheet",
		Title:      "Team",
		Kind:       stream.KindSheet,
		UserID:     "u",
	}, sink)
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}

	deltas := sink.ofType(stream.EventSheetDelta)
	if len(deltas) < 3 {
		t.Fatalf("got %d sheet deltas, want one per row", len(deltas))
	}
	if got := sink.deltaContent(stream.EventSheetDelta); !strings.Contains(got, "Ada,engineer") {
		t.Errorf("streamed rows = %q", got)
	}
}

func TestEmittedEventsCarryDocumentID(t *testing.T) {
	provider := &scriptedProvider{fragments: []string{
		"First paragraph of the essay. ", "Second paragraph of the essay.",
	}}
	sink := &recordingSink{}
	o := New(provider, &recordingSaver{}, locker.NewRegistry())

	_, err := o.CreateDocument(context.Background(), CreateRequest{
		DocumentID: "doc-77",
		Title:      "Attribution",
		Kind:       stream.KindText,
		UserID:     "user-1",
	}, sink)
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.events) == 0 {
		t.Fatal("no events emitted")
	}
	// With per-document locks, two documents can stream at once for one
	// user; every record must name which document it belongs to.
	for _, ev := range sink.events {
		if ev.DocumentID != "doc-77" {
			t.Errorf("%s event document id = %q, want doc-77", ev.Type, ev.DocumentID)
		}
	}
}
