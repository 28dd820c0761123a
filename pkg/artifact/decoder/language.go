package decoder

import "strings"

// Supported language tags for code documents. The first line of a code stream
// is expected to be one of these, bare.
var knownLanguages = map[string]bool{
	"text":       true,
	"python":     true,
	"javascript": true,
	"jsx":        true,
	"typescript": true,
	"java":       true,
	"cpp":        true,
}

// IsKnownLanguage reports whether tag is a valid bare language tag.
func IsKnownLanguage(tag string) bool {
	return knownLanguages[strings.ToLower(strings.TrimSpace(tag))]
}

// languageSignature pairs a syntax predicate with the language it indicates.
// Evaluated in order; first hit wins. Data-driven on purpose so a stronger
// classifier can replace the table without touching call sites.
type languageSignature struct {
	matches func(body string) bool
	tag     string
}

func containsAny(body string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(body, n) {
			return true
		}
	}
	return false
}

var languageSignatures = []languageSignature{
	{func(b string) bool { return containsAny(b, "#include", "std::", "cout <<") }, "cpp"},
	{func(b string) bool {
		return containsAny(b, "public class ", "public static void main", "System.out.println")
	}, "java"},
	{func(b string) bool { return containsAny(b, "def ", "import numpy", "print(", "elif ") }, "python"},
	{func(b string) bool {
		return containsAny(b, "interface ", ": string", ": number", "export type ")
	}, "typescript"},
	{func(b string) bool { return containsAny(b, "</", "/>", "className=", "useState(") }, "jsx"},
	{func(b string) bool {
		return containsAny(b, "function ", "const ", "console.log", "=> {")
	}, "javascript"},
}

// GuessLanguage pattern-matches the code body against language signatures,
// returning "text" when nothing matches.
func GuessLanguage(body string) string {
	for _, sig := range languageSignatures {
		if sig.matches(body) {
			return sig.tag
		}
	}
	return "text"
}
