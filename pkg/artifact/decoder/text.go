package decoder

import (
	"strings"

	"ai-canvas-be/pkg/artifact/normalize"
)

// textDecoder treats the stream as markdown prose. Incremental deltas pass
// through untouched; the final pass normalizes markdown and enforces heading
// conventions.
type textDecoder struct{}

func (textDecoder) DeltaPayload(fragment string, _ *Scratch) string {
	return fragment
}

func (textDecoder) Finalize(raw string) Result {
	if strings.TrimSpace(raw) == "" {
		return Result{Payload: raw}
	}

	out := normalize.Normalize(raw, normalize.Options{
		PreserveNewlines:        true,
		PreserveMarkdownHeading: true,
	})
	out = enforceHeadings(out)

	return Result{Payload: out}
}

// enforceHeadings keeps a single top-level heading and clamps heading depth
// to three. Any further "#" heading is demoted to "##"; anything deeper than
// "###" is raised to "###".
func enforceHeadings(text string) string {
	lines := strings.Split(text, "\n")
	topSeen := false
	inFence := false

	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence || !strings.HasPrefix(line, "#") {
			continue
		}

		level := 0
		for level < len(line) && line[level] == '#' {
			level++
		}
		rest := strings.TrimLeft(line[level:], " ")

		switch {
		case level == 1 && !topSeen:
			topSeen = true
		case level == 1:
			lines[i] = "## " + rest
		case level > 3:
			lines[i] = "### " + rest
		}
	}

	return strings.Join(lines, "\n")
}
