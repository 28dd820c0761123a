package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSuggestionsPlainArray(t *testing.T) {
	response := `[
		{"original_text": "teh cat", "suggested_text": "the cat", "description": "Fix typo"},
		{"original_text": "very unique", "suggested_text": "unique", "description": "Remove redundancy"}
	]`

	got, err := parseSuggestions(response)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "teh cat", got[0].OriginalText)
	assert.Equal(t, "the cat", got[0].SuggestedText)
	assert.Equal(t, "Remove redundancy", got[1].Description)
}

func TestParseSuggestionsFencedResponse(t *testing.T) {
	response := "```json\n[{\"original_text\": \"a\", \"suggested_text\": \"b\", \"description\": \"c\"}]\n```"

	got, err := parseSuggestions(response)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].SuggestedText)
}

func TestParseSuggestionsWithSurroundingProse(t *testing.T) {
	response := `Here are the suggestions you asked for:
[{"original_text": "x", "suggested_text": "y", "description": "z"}]
Let me know if you need more.`

	got, err := parseSuggestions(response)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestParseSuggestionsNoArray(t *testing.T) {
	_, err := parseSuggestions("I could not find anything to improve.")
	assert.Error(t, err)
}

func TestParseSuggestionsMalformedJSON(t *testing.T) {
	_, err := parseSuggestions(`[{"original_text": }]`)
	assert.Error(t, err)
}

func TestParseSuggestionsCarriesCategoryAndImpact(t *testing.T) {
	response := `[{"original_text": "teh", "suggested_text": "the", "description": "typo",
		"category": "grammar", "impact": "low"}]`

	got, err := parseSuggestions(response)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "grammar", got[0].Category)
	assert.Equal(t, "low", got[0].Impact)
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, "flow", normalizeCategory("Flow"))
	assert.Equal(t, "grammar", normalizeCategory(" grammar "))
	assert.Equal(t, "clarity", normalizeCategory("vibes"))
	assert.Equal(t, "clarity", normalizeCategory(""))
}

func TestNormalizeImpact(t *testing.T) {
	assert.Equal(t, "high", normalizeImpact("HIGH"))
	assert.Equal(t, "low", normalizeImpact("low"))
	assert.Equal(t, "medium", normalizeImpact("critical"))
	assert.Equal(t, "medium", normalizeImpact(""))
}
