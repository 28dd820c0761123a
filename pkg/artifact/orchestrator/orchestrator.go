package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ai-canvas-be/pkg/artifact/locker"
	"ai-canvas-be/pkg/artifact/stream"
	"ai-canvas-be/pkg/llm"
)

// ErrConcurrentUpdate is returned when a generation pass is already running
// for the same document. Callers treat it as a no-op, not a failure to retry.
var ErrConcurrentUpdate = errors.New("document update already in progress")

// DefaultFlushThreshold is how many pipeline-processed characters are
// buffered before a delta is pushed to the client. Avoids choppy
// partial-token rendering without adding visible latency.
const DefaultFlushThreshold = 120

// Snapshot is the persisted form of a finished (or abnormally ended)
// generation pass.
type Snapshot struct {
	DocumentID string
	Title      string
	Kind       stream.Kind
	Content    string
	Language   string // set for code kinds once known
	UserID     string
}

// Saver persists document snapshots.
type Saver interface {
	SaveSnapshot(ctx context.Context, snap Snapshot) error
}

// Sink receives delta events for delivery to the viewing client. Emit errors
// are logged and ignored: a client that went away must not stop a generation
// that will be persisted anyway.
type Sink interface {
	Emit(ev stream.Event) error
}

// MachineRegistry exposes the live state machine of an in-flight generation
// so clients opening the document mid-stream can read the current snapshot.
type MachineRegistry interface {
	Save(documentID string, m *stream.Machine)
	Delete(documentID string)
}

// CreateRequest starts a fresh document generation.
type CreateRequest struct {
	DocumentID string
	Title      string
	Kind       stream.Kind
	UserID     string
	Prompt     string // optional extra context beyond the title
}

// UpdateRequest regenerates an existing document per a change description.
type UpdateRequest struct {
	DocumentID     string
	Title          string
	Kind           stream.Kind
	UserID         string
	CurrentContent string
	Description    string
}

// Orchestrator drives one generation pass per document: provider fragments
// in, pipeline-processed deltas out, snapshot persisted at the end. The lock
// registry enforces at most one concurrent pass per document id.
type Orchestrator struct {
	provider llm.LLMProvider
	saver    Saver
	locks    *locker.Registry

	// FlushThreshold overrides DefaultFlushThreshold when positive.
	FlushThreshold int

	// StreamTimeout bounds one whole generation pass. Zero means no bound;
	// a stalled provider then holds the document lock until it returns.
	StreamTimeout time.Duration

	// Machines, when set, tracks in-flight generations for mid-stream reads.
	Machines MachineRegistry
}

func New(provider llm.LLMProvider, saver Saver, locks *locker.Registry) *Orchestrator {
	return &Orchestrator{
		provider: provider,
		saver:    saver,
		locks:    locks,
	}
}

// CreateDocument generates a brand-new document, streaming deltas to sink.
// The returned artifact reflects the final (idle) state.
func (o *Orchestrator) CreateDocument(ctx context.Context, req CreateRequest, sink Sink) (stream.Artifact, error) {
	history := []llm.Message{
		{Role: "system", Content: systemPromptFor(req.Kind)},
		{Role: "user", Content: createPrompt(req.Title, req.Prompt)},
	}
	return o.run(ctx, runInput{
		documentID: req.DocumentID,
		title:      req.Title,
		kind:       req.Kind,
		userID:     req.UserID,
		history:    history,
	}, sink)
}

// UpdateDocument regenerates an existing document from a change description.
// The content is cleared first; clients see the rewrite stream in.
func (o *Orchestrator) UpdateDocument(ctx context.Context, req UpdateRequest, sink Sink) (stream.Artifact, error) {
	history := []llm.Message{
		{Role: "system", Content: updateSystemPrompt(req.Kind, req.CurrentContent)},
		{Role: "user", Content: req.Description},
	}
	return o.run(ctx, runInput{
		documentID: req.DocumentID,
		title:      req.Title,
		kind:       req.Kind,
		userID:     req.UserID,
		history:    history,
		clearFirst: true,
	}, sink)
}

type runInput struct {
	documentID string
	title      string
	kind       stream.Kind
	userID     string
	history    []llm.Message
	clearFirst bool
}

func (o *Orchestrator) run(ctx context.Context, in runInput, sink Sink) (stream.Artifact, error) {
	if !o.locks.TryAcquire(in.documentID) {
		log.Printf("[orchestrator] rejected concurrent update for document %s", in.documentID)
		return stream.Artifact{}, ErrConcurrentUpdate
	}
	defer o.locks.Release(in.documentID)

	if o.StreamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.StreamTimeout)
		defer cancel()
	}

	machine := stream.NewMachine()
	if o.Machines != nil {
		o.Machines.Save(in.documentID, machine)
		defer o.Machines.Delete(in.documentID)
	}
	o.dispatch(machine, sink, stream.Event{Type: stream.EventID, DocumentID: in.documentID, Content: in.documentID})
	o.dispatch(machine, sink, stream.Event{Type: stream.EventTitle, DocumentID: in.documentID, Content: in.title})
	// Kind is never buffered: the client needs it to pick the right editor
	// before the first content delta lands.
	o.dispatch(machine, sink, stream.Event{Type: stream.EventKind, DocumentID: in.documentID, Content: string(in.kind)})
	if in.clearFirst {
		o.dispatch(machine, sink, stream.Event{Type: stream.EventClear, DocumentID: in.documentID})
	}

	deltaType := stream.DeltaEventFor(in.kind)
	threshold := o.FlushThreshold
	if threshold <= 0 {
		threshold = DefaultFlushThreshold
	}

	var pending strings.Builder
	langFlushed := in.kind != stream.KindCode

	flush := func() {
		if pending.Len() == 0 {
			return
		}
		o.emit(sink, stream.Event{Type: deltaType, DocumentID: in.documentID, Content: pending.String()})
		pending.Reset()
	}

	streamErr := o.provider.ChatStream(ctx, in.history, func(fragment string) error {
		appended := machine.Apply(stream.Event{Type: deltaType, Content: fragment})
		if appended != "" {
			pending.WriteString(appended)
		}

		switch {
		case !langFlushed && machine.Language() != "":
			// First language determination goes out immediately so the
			// editor can switch syntax mode.
			langFlushed = true
			flush()
		case pending.Len() >= threshold:
			flush()
		case in.kind == stream.KindSheet && strings.Contains(appended, "\n"):
			// Row-oriented kinds flush on complete rows.
			flush()
		}
		return nil
	})

	flush()

	if streamErr != nil {
		// Best-effort save of whatever accumulated; the lock is released by
		// the deferred call. Retrying is the caller's decision.
		partial := machine.Artifact()
		if saveErr := o.save(ctx, in, partial); saveErr != nil {
			log.Printf("[orchestrator] partial save failed for document %s: %v", in.documentID, saveErr)
		}
		return partial, fmt.Errorf("provider stream: %w", streamErr)
	}

	// The finish event triggers the decoder's authoritative pass over the
	// raw stream; the cleaned payload goes out as the finish content.
	machine.Apply(stream.Event{Type: stream.EventFinish})
	final := machine.Artifact()
	o.emit(sink, stream.Event{Type: stream.EventFinish, DocumentID: in.documentID, Content: final.Content})

	if err := o.save(ctx, in, final); err != nil {
		return final, fmt.Errorf("persist snapshot: %w", err)
	}

	return final, nil
}

// Running reports whether a generation pass currently holds the document's
// lock.
func (o *Orchestrator) Running(documentID string) bool {
	return o.locks.Held(documentID)
}

// dispatch applies an event to the machine and forwards it to the client.
func (o *Orchestrator) dispatch(m *stream.Machine, sink Sink, ev stream.Event) {
	m.Apply(ev)
	o.emit(sink, ev)
}

func (o *Orchestrator) emit(sink Sink, ev stream.Event) {
	if sink == nil {
		return
	}
	if err := sink.Emit(ev); err != nil {
		log.Printf("[orchestrator] sink emit failed (%s): %v", ev.Type, err)
	}
}

func (o *Orchestrator) save(ctx context.Context, in runInput, art stream.Artifact) error {
	// The save must not be lost to an expired stream context.
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
	}
	return o.saver.SaveSnapshot(ctx, Snapshot{
		DocumentID: in.documentID,
		Title:      in.title,
		Kind:       in.kind,
		Content:    art.Content,
		Language:   art.Language,
		UserID:     in.userID,
	})
}
