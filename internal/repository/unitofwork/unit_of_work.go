package unitofwork

import (
	"context"

	"ai-canvas-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	DocumentRepository() contract.DocumentRepository
	SuggestionRepository() contract.SuggestionRepository
	DocumentEmbeddingRepository() contract.DocumentEmbeddingRepository

	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	NotificationRepository() contract.NotificationRepository
}
