package decoder

import (
	"regexp"
	"strings"
)

// sheetDecoder expects CSV, possibly wrapped in a fenced code block or
// surrounded by explanatory prose.
type sheetDecoder struct{}

var wordGapRe = regexp.MustCompile(`([a-z])([A-Z])`)

func (sheetDecoder) DeltaPayload(fragment string, s *Scratch) string {
	if s.HeaderSeen {
		// Row content passes through untouched; healing could corrupt
		// real data values.
		return fragment
	}

	out := fragment
	if i := strings.IndexByte(fragment, '\n'); i >= 0 {
		// Heal only the decorative portion before the first complete row.
		out = healWordGaps(fragment[:i]) + fragment[i:]
		s.HeaderSeen = true
	} else {
		out = healWordGaps(fragment)
	}
	return out
}

var csvFenceRe = regexp.MustCompile("(?s)```(?:csv)?[ \t]*\n(.*?)\n?```")

func (sheetDecoder) Finalize(raw string) Result {
	if strings.TrimSpace(raw) == "" {
		return Result{Payload: raw}
	}

	body := raw
	if m := csvFenceRe.FindStringSubmatch(raw); m != nil {
		body = m[1]
	}

	// Keep only lines that look like data rows: contain a comma and do not
	// start with comment or prose markers.
	lines := strings.Split(body, "\n")
	rows := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || !strings.Contains(trimmed, ",") {
			continue
		}
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") ||
			strings.HasPrefix(trimmed, ">") || strings.HasPrefix(trimmed, "- ") ||
			strings.HasPrefix(trimmed, "* ") {
			continue
		}
		rows = append(rows, trimmed)
	}

	if len(rows) == 0 {
		// No recognizable rows; surface the raw content instead of nothing.
		return Result{Payload: raw}
	}

	return Result{Payload: strings.Join(rows, "\n")}
}

// healWordGaps inserts a single space between adjoined word fragments whose
// boundary the upstream tokenizer dropped ("ProjectBudget" -> "Project
// Budget"). Only applied to prose before the header row.
func healWordGaps(text string) string {
	return wordGapRe.ReplaceAllString(text, "$1 $2")
}
