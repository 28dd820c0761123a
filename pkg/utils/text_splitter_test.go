package utils

import (
	"strings"
	"testing"
)

func TestSplitTextShortInputSingleChunk(t *testing.T) {
	chunks := SplitText("hello world", 100, 10)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "hello world" {
		t.Fatalf("chunk altered: %q", chunks[0])
	}
}

func TestSplitTextOverlapPreserved(t *testing.T) {
	text := strings.Repeat("abcdefghij", 10) // 100 chars
	chunks := SplitText(text, 40, 10)

	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}
	// The tail of each chunk must reappear at the head of the next.
	for i := 0; i < len(chunks)-1; i++ {
		tail := chunks[i][len(chunks[i])-10:]
		if !strings.HasPrefix(chunks[i+1], tail) {
			t.Fatalf("chunk %d does not overlap into chunk %d", i, i+1)
		}
	}
}

func TestSplitTextCoversWholeInput(t *testing.T) {
	text := strings.Repeat("x", 95)
	chunks := SplitText(text, 40, 10)

	var rebuilt strings.Builder
	step := 40 - 10
	for i, c := range chunks {
		if i == len(chunks)-1 {
			rebuilt.WriteString(c)
		} else {
			rebuilt.WriteString(c[:step])
		}
	}
	if got := rebuilt.Len(); got < len(text) {
		t.Fatalf("reconstruction lost content: %d < %d", got, len(text))
	}
}

func TestSplitTextOverlapLargerThanChunk(t *testing.T) {
	text := strings.Repeat("y", 50)
	chunks := SplitText(text, 10, 20)
	if len(chunks) == 0 {
		t.Fatal("no chunks returned")
	}
	// Degenerate overlap must still terminate and cover the input.
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(text, last) {
		t.Fatal("final chunk is not the input tail")
	}
}
