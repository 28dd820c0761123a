package contract

import (
	"context"

	"ai-canvas-be/internal/entity"

	"github.com/google/uuid"
)

type DocumentEmbeddingRepository interface {
	CreateBatch(ctx context.Context, embeddings []*entity.DocumentEmbedding) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error

	// SearchSimilar runs a cosine-distance query over the user's embedded
	// chunks and returns the closest ones.
	SearchSimilar(ctx context.Context, userId uuid.UUID, queryVector []float32, limit int) ([]*entity.DocumentEmbedding, error)
}
