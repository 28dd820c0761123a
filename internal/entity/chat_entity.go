package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatVisibility string

const (
	ChatVisibilityPrivate ChatVisibility = "private"
	ChatVisibilityPublic  ChatVisibility = "public"
)

type ChatSession struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	Title      string
	Visibility ChatVisibility
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}

// ChatMessage stores one conversation turn. Parts holds the structured
// message parts (text, tool invocations, tool results) as raw JSON.
type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Role          string
	Parts         []byte
	CreatedAt     time.Time
}
