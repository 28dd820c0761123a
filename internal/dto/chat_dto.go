package dto

import (
	"time"

	"github.com/google/uuid"

	"ai-canvas-be/pkg/artifact/merger"
)

type CreateChatSessionRequest struct {
	Title      string `json:"title" validate:"required,max=255"`
	Visibility string `json:"visibility" validate:"omitempty,oneof=private public"`
}

type CreateChatSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type ChatSessionResponse struct {
	Id         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Visibility string     `json:"visibility"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

type UpdateChatVisibilityRequest struct {
	Id         uuid.UUID `json:"-"`
	Visibility string    `json:"visibility" validate:"required,oneof=private public"`
}

type SendMessageRequest struct {
	SessionId uuid.UUID `json:"-"`
	Text      string    `json:"text" validate:"required"`
}

// ChatHistoryResponse returns messages with consecutive tool-call turns
// already merged for display.
type ChatHistoryResponse struct {
	SessionId uuid.UUID               `json:"session_id"`
	Messages  []merger.DisplayMessage `json:"messages"`
}
