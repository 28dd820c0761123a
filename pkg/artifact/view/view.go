package view

import "ai-canvas-be/pkg/artifact/stream"

// Source names which side won the content arbitration.
type Source string

const (
	SourceArtifact Source = "artifact"
	SourceDocument Source = "document"
)

// Snapshot is the persisted document content as fetched from storage.
type Snapshot struct {
	DocumentID string
	Title      string
	Kind       stream.Kind
	Content    string
}

// Input is everything the resolver needs to decide what to render.
type Input struct {
	Artifact stream.Artifact

	// Document is the persisted snapshot, nil when none has been fetched.
	Document *Snapshot

	// FetchInFlight marks a snapshot request that has not returned yet.
	FetchInFlight bool
}

// Resolution tells the client exactly what to draw. Exactly one of the
// collapsed/expanded containers renders the content; never both.
type Resolution struct {
	Content     string
	Title       string
	Kind        stream.Kind
	Source      Source
	Streaming   bool
	Placeholder bool

	RenderCollapsed bool
	RenderExpanded  bool
}

// Resolve arbitrates between the live artifact and the persisted document.
//
// While streaming the live artifact is authoritative; the persisted snapshot
// is necessarily stale. Once idle the snapshot wins when available, covering
// the post-reload case. An idle artifact with a fetch still in flight falls
// back to its last-known content so the panel never flickers empty.
func Resolve(in Input) Resolution {
	res := Resolution{
		Title:     in.Artifact.Title,
		Kind:      in.Artifact.Kind,
		Streaming: in.Artifact.Status == stream.StatusStreaming,
	}

	switch {
	case in.Artifact.Status == stream.StatusStreaming:
		res.Content = in.Artifact.Content
		res.Source = SourceArtifact

	case in.Document != nil:
		res.Content = in.Document.Content
		res.Source = SourceDocument
		if in.Document.Title != "" {
			res.Title = in.Document.Title
		}
		if in.Document.Kind != "" {
			res.Kind = in.Document.Kind
		}

	default:
		res.Content = in.Artifact.Content
		res.Source = SourceArtifact
	}

	// A placeholder only shows when there is genuinely nothing to draw yet.
	res.Placeholder = res.Content == "" && (res.Streaming || in.FetchInFlight)

	if in.Artifact.Visibility == stream.VisibilityExpanded {
		res.RenderExpanded = true
	} else {
		res.RenderCollapsed = true
	}

	return res
}
