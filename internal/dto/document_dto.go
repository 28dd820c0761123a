package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateDocumentRequest struct {
	Title  string `json:"title" validate:"required,max=255"`
	Kind   string `json:"kind" validate:"required,oneof=text code sheet image"`
	Prompt string `json:"prompt"`
	// SessionId ties the generation to a chat session so the tool turn
	// shows up in that conversation's history.
	SessionId *uuid.UUID `json:"session_id"`
}

type CreateDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}

type UpdateDocumentRequest struct {
	Id          uuid.UUID  `json:"-"`
	Description string     `json:"description" validate:"required"`
	SessionId   *uuid.UUID `json:"session_id"`
}

type SaveDocumentRequest struct {
	Id      uuid.UUID `json:"-"`
	Title   string    `json:"title" validate:"required,max=255"`
	Content string    `json:"content"`
}

type DocumentResponse struct {
	Id        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Kind      string    `json:"kind"`
	Language  string    `json:"language,omitempty"`
	Streaming bool      `json:"streaming"`
}

type DocumentListItem struct {
	Id        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Title     string    `json:"title"`
	Kind      string    `json:"kind"`
}

type RestoreVersionRequest struct {
	Id        uuid.UUID `json:"-"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
}

// PublishEmbedDocumentMessage rides the in-process event bus from document
// saves to the embedding consumer.
type PublishEmbedDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
