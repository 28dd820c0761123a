package decoder

import (
	"strings"
	"testing"
)

func TestCodeFinalizeExplicitTag(t *testing.T) {
	res := For("code").Finalize("python\ndef f():\n    return 1\n")
	if res.Payload != "def f():\n    return 1" {
		t.Errorf("payload = %q", res.Payload)
	}
	if res.Subtype != "python" {
		t.Errorf("language = %q, want python", res.Subtype)
	}
}

func TestCodeFinalizeFallbacks(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantLang    string
		wantPayload string
	}{
		{
			name:        "complete fenced block",
			raw:         "Here is the code:\n```javascript\nconsole.log(1);\n```\nEnjoy!",
			wantLang:    "javascript",
			wantPayload: "console.log(1);",
		},
		{
			name:        "unterminated fence",
			raw:         "```typescript\ninterface User {\n  name: string;\n}",
			wantLang:    "typescript",
			wantPayload: "interface User {\n  name: string;\n}",
		},
		{
			name:        "syntax signature cpp",
			raw:         "#include <iostream>\nint main() { return 0; }\n",
			wantLang:    "cpp",
			wantPayload: "#include <iostream>\nint main() { return 0; }",
		},
		{
			name:        "syntax signature python",
			raw:         "def add(a, b):\n    return a + b\n",
			wantLang:    "python",
			wantPayload: "def add(a, b):\n    return a + b",
		},
		{
			name:        "defaults to text",
			raw:         "just some words\nwithout any syntax\n",
			wantLang:    "text",
			wantPayload: "just some words\nwithout any syntax",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := For("code").Finalize(tt.raw)
			if res.Subtype != tt.wantLang {
				t.Errorf("language = %q, want %q", res.Subtype, tt.wantLang)
			}
			if res.Payload != tt.wantPayload {
				t.Errorf("payload = %q, want %q", res.Payload, tt.wantPayload)
			}
		})
	}
}

func TestCodeFinalizeStripsMarkdownArtifacts(t *testing.T) {
	raw := "javascript\n**bold header**\nconst x = 1;\n---\nconsole.log(x);\n"
	res := For("code").Finalize(raw)
	if strings.Contains(res.Payload, "---") || strings.Contains(res.Payload, "**") {
		t.Errorf("markdown artifacts survived: %q", res.Payload)
	}
	if !strings.Contains(res.Payload, "const x = 1;") {
		t.Errorf("code lost: %q", res.Payload)
	}
}

func TestCodeFinalizeKeepsPythonComments(t *testing.T) {
	raw := "python\n# compute the sum\ndef add(a, b):\n    return a + b\n"
	res := For("code").Finalize(raw)
	if !strings.Contains(res.Payload, "# compute the sum") {
		t.Errorf("python comment stripped: %q", res.Payload)
	}
}

func TestCodeDeltaConsumesLanguageLine(t *testing.T) {
	d := For("code")
	s := &Scratch{}

	if got := d.DeltaPayload("pyth", s); got != "" {
		t.Errorf("partial tag released early: %q", got)
	}
	if got := d.DeltaPayload("on\ndef f():", s); got != "def f():" {
		t.Errorf("payload after tag = %q, want %q", got, "def f():")
	}
	if s.Language != "python" {
		t.Errorf("language = %q, want python", s.Language)
	}
	if got := d.DeltaPayload("\n    return 1", s); got != "\n    return 1" {
		t.Errorf("later fragment = %q", got)
	}
}

func TestCodeDeltaNoTagReleasesHead(t *testing.T) {
	d := For("code")
	s := &Scratch{}

	if got := d.DeltaPayload("const answer = 42;\nmore", s); got != "const answer = 42;\nmore" {
		t.Errorf("untugged first line = %q", got)
	}
	if s.Language != "" {
		t.Errorf("language = %q, want empty", s.Language)
	}
}

func TestSheetFinalizeStripsFencing(t *testing.T) {
	res := For("sheet").Finalize("```csv\na,b\n1,2\n```")
	if res.Payload != "a,b\n1,2" {
		t.Errorf("payload = %q, want %q", res.Payload, "a,b\n1,2")
	}
}

func TestSheetFinalizeFiltersProse(t *testing.T) {
	raw := "Here is your spreadsheet:\n# header comment\nname,amount\nrent,1200\nutilities,300\nHope this helps!"
	res := For("sheet").Finalize(raw)
	want := "name,amount\nrent,1200\nutilities,300"
	if res.Payload != want {
		t.Errorf("payload = %q, want %q", res.Payload, want)
	}
}

func TestSheetFinalizeNoRowsReturnsRaw(t *testing.T) {
	raw := "nothing tabular here"
	res := For("sheet").Finalize(raw)
	if res.Payload != raw {
		t.Errorf("payload = %q, want raw passthrough", res.Payload)
	}
}

func TestSheetDeltaHealsOnlyBeforeHeader(t *testing.T) {
	d := For("sheet")
	s := &Scratch{}

	got := d.DeltaPayload("YourBudget sheet:\nname,CamelCaseValue", s)
	if !strings.HasPrefix(got, "Your Budget sheet:") {
		t.Errorf("prose not healed: %q", got)
	}
	if !strings.HasSuffix(got, "name,CamelCaseValue") {
		t.Errorf("row content corrupted: %q", got)
	}

	// After the first complete line, everything passes through untouched.
	got = d.DeltaPayload("itemA,valueB", s)
	if got != "itemA,valueB" {
		t.Errorf("post-header fragment changed: %q", got)
	}
}

func TestTextFinalizeEnforcesHeadings(t *testing.T) {
	raw := "# Title\n\nintro\n\n# Second Top\n\n##### Deep\n\nbody"
	res := For("text").Finalize(raw)
	if !strings.Contains(res.Payload, "## Second Top") {
		t.Errorf("second top-level heading not demoted: %q", res.Payload)
	}
	if !strings.Contains(res.Payload, "### Deep") {
		t.Errorf("deep heading not clamped: %q", res.Payload)
	}
	if !strings.HasPrefix(res.Payload, "# Title") {
		t.Errorf("first heading changed: %q", res.Payload)
	}
}

func TestImagePassthrough(t *testing.T) {
	blob := "iVBORw0KGgo="
	res := For("image").Finalize(blob)
	if res.Payload != blob {
		t.Errorf("payload = %q", res.Payload)
	}
}

func TestGuessLanguageOrder(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{"#include <vector>\nint main() {}", "cpp"},
		{"public class Main { public static void main(String[] a) {} }", "java"},
		{"def f():\n    pass", "python"},
		{"export type ID = string", "typescript"},
		{"const App = () => <div className=\"x\" />", "jsx"},
		{"function go() { console.log('hi') }", "javascript"},
		{"no code at all", "text"},
	}
	for _, tt := range tests {
		if got := GuessLanguage(tt.body); got != tt.want {
			t.Errorf("GuessLanguage(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}
}
