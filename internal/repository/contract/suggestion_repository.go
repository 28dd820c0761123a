package contract

import (
	"context"
	"time"

	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SuggestionRepository interface {
	Create(ctx context.Context, suggestion *entity.Suggestion) error
	CreateBatch(ctx context.Context, suggestions []*entity.Suggestion) error
	Resolve(ctx context.Context, id uuid.UUID) error
	DeleteByDocumentAfter(ctx context.Context, documentId uuid.UUID, after time.Time) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Suggestion, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Suggestion, error)
}
