package dto

import (
	"time"

	"github.com/google/uuid"
)

type GenerateSuggestionsRequest struct {
	DocumentId uuid.UUID `json:"-"`
}

type SuggestionResponse struct {
	Id                uuid.UUID `json:"id"`
	DocumentId        uuid.UUID `json:"document_id"`
	DocumentCreatedAt time.Time `json:"document_created_at"`
	OriginalText      string    `json:"original_text"`
	SuggestedText     string    `json:"suggested_text"`
	Description       string    `json:"description"`
	Category          string    `json:"category"`
	Impact            string    `json:"impact"`
	MessageIndex      *int      `json:"message_index,omitempty"`
	IsResolved        bool      `json:"is_resolved"`
	CreatedAt         time.Time `json:"created_at"`
}

type ResolveSuggestionRequest struct {
	Id uuid.UUID `json:"-"`
}
