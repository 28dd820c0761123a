package view

import (
	"testing"

	"ai-canvas-be/pkg/artifact/stream"
)

func TestResolveStreamingPrefersArtifact(t *testing.T) {
	res := Resolve(Input{
		Artifact: stream.Artifact{
			Status:  stream.StatusStreaming,
			Content: "live content",
		},
		Document: &Snapshot{Content: "stale persisted content"},
	})

	if res.Source != SourceArtifact || res.Content != "live content" {
		t.Errorf("resolution = %+v, want live artifact content", res)
	}
	if !res.Streaming {
		t.Error("streaming flag not set")
	}
}

func TestResolveIdlePrefersDocument(t *testing.T) {
	res := Resolve(Input{
		Artifact: stream.Artifact{
			Status:  stream.StatusIdle,
			Content: "reconstructed",
		},
		Document: &Snapshot{Content: "persisted snapshot", Title: "Saved"},
	})

	if res.Source != SourceDocument || res.Content != "persisted snapshot" {
		t.Errorf("resolution = %+v, want persisted content", res)
	}
	if res.Title != "Saved" {
		t.Errorf("title = %q", res.Title)
	}
}

func TestResolveIdleFetchInFlightFallsBack(t *testing.T) {
	res := Resolve(Input{
		Artifact: stream.Artifact{
			Status:  stream.StatusIdle,
			Content: "last known",
		},
		FetchInFlight: true,
	})

	if res.Content != "last known" || res.Placeholder {
		t.Errorf("resolution = %+v, want last-known content without placeholder", res)
	}
}

func TestResolvePlaceholderOnlyWhenNothingToDraw(t *testing.T) {
	res := Resolve(Input{
		Artifact: stream.Artifact{Status: stream.StatusStreaming},
	})
	if !res.Placeholder {
		t.Error("empty streaming artifact should show placeholder")
	}

	res = Resolve(Input{
		Artifact: stream.Artifact{Status: stream.StatusStreaming, Content: "x"},
	})
	if res.Placeholder {
		t.Error("placeholder shown over real content")
	}
}

func TestResolveRendersExactlyOneContainer(t *testing.T) {
	for _, vis := range []stream.Visibility{stream.VisibilityCollapsed, stream.VisibilityExpanded} {
		res := Resolve(Input{
			Artifact: stream.Artifact{Status: stream.StatusIdle, Visibility: vis, Content: "c"},
		})
		if res.RenderCollapsed == res.RenderExpanded {
			t.Errorf("visibility %s: collapsed=%v expanded=%v, want exactly one",
				vis, res.RenderCollapsed, res.RenderExpanded)
		}
	}
}

func TestResolveReloadConsistency(t *testing.T) {
	// Content rendered at finish equals content rendered after a reload that
	// re-fetches the persisted snapshot.
	final := "# Essay\n\nBody text."

	atFinish := Resolve(Input{
		Artifact: stream.Artifact{Status: stream.StatusIdle, Content: final},
	})
	afterReload := Resolve(Input{
		Artifact: stream.Artifact{Status: stream.StatusIdle},
		Document: &Snapshot{Content: final},
	})

	if atFinish.Content != afterReload.Content {
		t.Errorf("finish render %q != reload render %q", atFinish.Content, afterReload.Content)
	}
}
