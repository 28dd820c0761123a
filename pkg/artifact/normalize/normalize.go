package normalize

import (
	"regexp"
	"strings"
)

// Options controls how text is reshaped. Document rendering keeps newlines and
// markdown structure; conversational rendering flattens everything to prose.
type Options struct {
	PreserveNewlines        bool
	PreserveMarkdownHeading bool
}

var (
	horizontalSpaceRe = regexp.MustCompile(`[ \t]+`)
	multiSpaceRe      = regexp.MustCompile(`[ \t]{2,}`)
	headingMarkerRe   = regexp.MustCompile(`(?m)^(#{1,6})[ \t]*`)
	unorderedListRe   = regexp.MustCompile(`(?m)^([-*+])[ \t]+`)
	orderedListRe     = regexp.MustCompile(`(?m)^(\d+\.)[ \t]+`)
	blankRunRe        = regexp.MustCompile(`\n{3,}`)
	sentenceSpaceRe   = regexp.MustCompile(`([.!?])[ \t]+([^"'.\s])`)
	trailingSpaceRe   = regexp.MustCompile(`(?m)[ \t]+$`)
)

// brokenTerms maps tokenizer-split technical terms back to their canonical
// spelling. The upstream tokenizer occasionally inserts a space after the
// mid-word period of these names.
var brokenTerms = map[string]string{
	"Next. js":    "Next.js",
	"Node. js":    "Node.js",
	"React. js":   "React.js",
	"Vue. js":     "Vue.js",
	"Express. js": "Express.js",
	"Nest. js":    "Nest.js",
	"Three. js":   "Three.js",
	"D3. js":      "D3.js",
	"Socket. io":  "Socket.io",
	"ASP. NET":    "ASP.NET",
}

// Fragment applies the subset of normalization that is safe on a mid-stream
// chunk: internal whitespace runs collapse and known split terms are
// repaired, but edges are never trimmed so chunk joins stay intact.
func Fragment(text string) string {
	if text == "" {
		return ""
	}
	out := multiSpaceRe.ReplaceAllString(text, " ")
	for broken, fixed := range brokenTerms {
		out = strings.ReplaceAll(out, broken, fixed)
	}
	return out
}

// Normalize canonicalizes whitespace, punctuation spacing and markdown list or
// heading syntax. It is a pure function and idempotent on its own output.
func Normalize(text string, opts Options) string {
	if text == "" {
		return ""
	}

	out := text

	if !opts.PreserveNewlines {
		out = strings.ReplaceAll(out, "\r\n", " ")
		out = strings.ReplaceAll(out, "\n", " ")
	} else {
		out = strings.ReplaceAll(out, "\r\n", "\n")
	}

	// Collapse runs of horizontal whitespace; newlines are left alone.
	out = horizontalSpaceRe.ReplaceAllString(out, " ")
	out = trailingSpaceRe.ReplaceAllString(out, "")

	if opts.PreserveMarkdownHeading {
		out = headingMarkerRe.ReplaceAllString(out, "$1 ")
		out = unorderedListRe.ReplaceAllString(out, "$1 ")
		out = orderedListRe.ReplaceAllString(out, "$1 ")
		out = blankRunRe.ReplaceAllString(out, "\n\n")
	}

	// Exactly one space after sentence-ending punctuation, unless the next
	// rune is a quote or another period (ellipses, abbreviations).
	out = sentenceSpaceRe.ReplaceAllString(out, "$1 $2")

	for broken, fixed := range brokenTerms {
		out = strings.ReplaceAll(out, broken, fixed)
	}

	return strings.TrimSpace(out)
}
