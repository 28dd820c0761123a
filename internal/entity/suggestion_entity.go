package entity

import (
	"time"

	"github.com/google/uuid"
)

// Suggestion is one writing suggestion attached to a specific document
// version.
type Suggestion struct {
	Id                uuid.UUID
	DocumentId        uuid.UUID
	DocumentCreatedAt time.Time
	OriginalText      string
	SuggestedText     string
	Description       string
	Category          string
	Impact            string
	MessageIndex      *int
	IsResolved        bool
	UserId            uuid.UUID
	CreatedAt         time.Time
}
