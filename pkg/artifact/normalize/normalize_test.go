package normalize

import (
	"testing"
)

func TestNormalizeDocumentMode(t *testing.T) {
	opts := Options{PreserveNewlines: true, PreserveMarkdownHeading: true}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "collapses horizontal whitespace",
			in:   "Hello    world\tagain",
			want: "Hello world again",
		},
		{
			name: "one space after heading marker",
			in:   "#    Title\n\ncontent",
			want: "# Title\n\ncontent",
		},
		{
			name: "adds missing heading space",
			in:   "##Overview\n\nbody",
			want: "## Overview\n\nbody",
		},
		{
			name: "one space after list markers",
			in:   "-   first\n1.    second",
			want: "- first\n1. second",
		},
		{
			name: "collapses blank line runs",
			in:   "para one\n\n\n\n\npara two",
			want: "para one\n\npara two",
		},
		{
			name: "one space after sentence punctuation",
			in:   "Done.   Next step!  Go?  Yes.",
			want: "Done. Next step! Go? Yes.",
		},
		{
			name: "leaves ellipses alone",
			in:   "Wait... more",
			want: "Wait... more",
		},
		{
			name: "repairs split technical terms",
			in:   "Built with Next. js and Node. js runtimes",
			want: "Built with Next.js and Node.js runtimes",
		},
		{
			name: "keeps horizontal rule intact",
			in:   "above\n\n---\n\nbelow",
			want: "above\n\n---\n\nbelow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in, opts)
			if got != tt.want {
				t.Errorf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeConversationalMode(t *testing.T) {
	got := Normalize("First line.\nSecond   line.\n\nThird.", Options{})
	want := "First line. Second line. Third."
	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"#Heading\n\n\n\nSome   text.  With Next. js mentioned.\n- item one\n-  item two",
		"plain sentence.   another one!  done?",
		"",
		"```\ncode block\n```",
		"1.   ordered\n2. list",
	}

	for _, mode := range []Options{
		{PreserveNewlines: true, PreserveMarkdownHeading: true},
		{PreserveNewlines: true},
		{},
	} {
		for _, in := range inputs {
			once := Normalize(in, mode)
			twice := Normalize(once, mode)
			if once != twice {
				t.Errorf("not idempotent for %q (mode %+v): first %q, second %q", in, mode, once, twice)
			}
		}
	}
}
