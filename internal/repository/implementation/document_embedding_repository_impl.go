package implementation

import (
	"context"

	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/mapper"
	"ai-canvas-be/internal/model"
	"ai-canvas-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocumentEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentEmbeddingMapper
}

func NewDocumentEmbeddingRepository(db *gorm.DB) contract.DocumentEmbeddingRepository {
	return &DocumentEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentEmbeddingMapper(),
	}
}

func (r *DocumentEmbeddingRepositoryImpl) CreateBatch(ctx context.Context, embeddings []*entity.DocumentEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := make([]*model.DocumentEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = r.mapper.ToModel(e)
	}
	return r.db.WithContext(ctx).Create(&models).Error
}

func (r *DocumentEmbeddingRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().
		Where("document_id = ?", documentId).
		Delete(&model.DocumentEmbedding{}).Error
}

func (r *DocumentEmbeddingRepositoryImpl) SearchSimilar(ctx context.Context, userId uuid.UUID, queryVector []float32, limit int) ([]*entity.DocumentEmbedding, error) {
	var models []*model.DocumentEmbedding
	// Cosine distance over the user's latest document versions only.
	err := r.db.WithContext(ctx).
		Raw(`SELECT de.* FROM document_embeddings de
		     JOIN (SELECT DISTINCT ON (id) id, user_id FROM documents
		           WHERE deleted_at IS NULL ORDER BY id, created_at DESC) d
		       ON d.id = de.document_id
		     WHERE d.user_id = ? AND de.deleted_at IS NULL
		     ORDER BY de.embedding_value <=> ?
		     LIMIT ?`,
			userId, pgvector.NewVector(queryVector), limit).
		Scan(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
