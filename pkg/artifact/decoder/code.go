package decoder

import (
	"regexp"
	"strings"
)

// codeDecoder expects the raw stream's first line to be a bare language tag.
// When the tag is missing it falls back through fence extraction and syntax
// signatures before defaulting to "text".
type codeDecoder struct{}

// maxTagProbe bounds how much of the stream is held back while waiting for
// the first newline. Longer than any valid tag, so a tagless single-line
// stream is released quickly.
const maxTagProbe = 24

func (codeDecoder) DeltaPayload(fragment string, s *Scratch) string {
	if s.TagResolved {
		return fragment
	}

	s.head += fragment
	if i := strings.IndexByte(s.head, '\n'); i >= 0 {
		first := s.head[:i]
		rest := s.head[i+1:]
		s.TagResolved = true
		if IsKnownLanguage(first) {
			s.Language = strings.ToLower(strings.TrimSpace(first))
			s.head = ""
			return rest
		}
		out := s.head
		s.head = ""
		return out
	}

	if len(s.head) > maxTagProbe {
		out := s.head
		s.TagResolved = true
		s.head = ""
		return out
	}
	return ""
}

var (
	fencedBlockRe  = regexp.MustCompile("(?s)```([a-zA-Z0-9+]*)[ \t]*\n(.*?)```")
	partialFenceRe = regexp.MustCompile("(?s)```([a-zA-Z0-9+]*)[ \t]*\n(.*)$")
	separatorRe    = regexp.MustCompile(`^(-{3,}|\*{3,}|_{3,})$`)
	wrappedBoldRe  = regexp.MustCompile(`^\*\*(.+)\*\*$`)
	wrappedEmphRe  = regexp.MustCompile(`^\*([^*].*[^*])\*$`)
)

func (codeDecoder) Finalize(raw string) Result {
	if strings.TrimSpace(raw) == "" {
		return Result{Payload: raw, Subtype: "text"}
	}

	language := ""
	body := raw

	// (a) bare language tag on the first line
	if i := strings.IndexByte(raw, '\n'); i >= 0 && IsKnownLanguage(raw[:i]) {
		language = strings.ToLower(strings.TrimSpace(raw[:i]))
		body = raw[i+1:]
	} else if m := fencedBlockRe.FindStringSubmatch(raw); m != nil {
		// (b) complete fenced block
		language = strings.ToLower(m[1])
		body = m[2]
	} else if m := partialFenceRe.FindStringSubmatch(raw); m != nil {
		// (c) unterminated fence, language from the opening marker
		language = strings.ToLower(m[1])
		body = m[2]
	}

	// (d) syntax signatures when no usable tag was found
	if language == "" || !IsKnownLanguage(language) {
		language = GuessLanguage(body)
	}

	body = stripMarkdownArtifacts(body, language)

	if strings.TrimSpace(body) == "" {
		// Never lose user-visible output over a failed extraction.
		return Result{Payload: raw, Subtype: "text"}
	}

	return Result{Payload: strings.TrimRight(body, "\n"), Subtype: language}
}

// stripMarkdownArtifacts drops decorations a model sometimes injects around
// code despite instructions: separator lines, wrapping bold/italic markers
// and markdown headings. Heading lines are kept for python, where "#" starts
// a comment.
func stripMarkdownArtifacts(body, language string) string {
	lines := strings.Split(body, "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if separatorRe.MatchString(trimmed) {
			continue
		}
		if language != "python" && language != "text" && strings.HasPrefix(trimmed, "# ") {
			continue
		}
		if m := wrappedBoldRe.FindStringSubmatch(trimmed); m != nil {
			line = m[1]
		} else if m := wrappedEmphRe.FindStringSubmatch(trimmed); m != nil {
			line = m[1]
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}
