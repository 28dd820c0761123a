package orchestrator

import (
	"fmt"

	"ai-canvas-be/pkg/artifact/stream"
)

func systemPromptFor(kind stream.Kind) string {
	switch kind {
	case stream.KindCode:
		return "You are a code generator. Write a self-contained, runnable snippet " +
			"for the requested task. The very first line of your output must be the " +
			"language name on its own line (for example: python). Do not wrap the " +
			"code in markdown fences and do not add prose before or after it."
	case stream.KindSheet:
		return "You are a spreadsheet generator. Produce CSV output only: a header " +
			"row followed by data rows. No markdown fences, no commentary."
	default:
		return "Write about the given topic. Markdown is supported. Use headings " +
			"wherever appropriate."
	}
}

func createPrompt(title, extra string) string {
	if extra != "" {
		return fmt.Sprintf("%s\n\nAdditional context: %s", title, extra)
	}
	return title
}

func updateSystemPrompt(kind stream.Kind, current string) string {
	var task string
	switch kind {
	case stream.KindCode:
		task = "Rewrite the following code snippet per the user's request. Keep the " +
			"first-line language tag. Output only the full updated code."
	case stream.KindSheet:
		task = "Rewrite the following CSV per the user's request. Output only the " +
			"full updated CSV."
	default:
		task = "Rewrite the following document per the user's request. Output only " +
			"the full updated document."
	}
	return fmt.Sprintf("%s\n\n%s", task, current)
}
