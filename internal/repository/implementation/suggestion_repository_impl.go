package implementation

import (
	"context"
	"errors"
	"time"

	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/mapper"
	"ai-canvas-be/internal/model"
	"ai-canvas-be/internal/repository/contract"
	"ai-canvas-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SuggestionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SuggestionMapper
}

func NewSuggestionRepository(db *gorm.DB) contract.SuggestionRepository {
	return &SuggestionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSuggestionMapper(),
	}
}

func (r *SuggestionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SuggestionRepositoryImpl) Create(ctx context.Context, suggestion *entity.Suggestion) error {
	m := r.mapper.ToModel(suggestion)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*suggestion = *r.mapper.ToEntity(m)
	return nil
}

func (r *SuggestionRepositoryImpl) CreateBatch(ctx context.Context, suggestions []*entity.Suggestion) error {
	if len(suggestions) == 0 {
		return nil
	}
	models := make([]*model.Suggestion, len(suggestions))
	for i, s := range suggestions {
		models[i] = r.mapper.ToModel(s)
	}
	return r.db.WithContext(ctx).Create(&models).Error
}

func (r *SuggestionRepositoryImpl) Resolve(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Suggestion{}).
		Where("id = ?", id).
		Update("is_resolved", true).Error
}

func (r *SuggestionRepositoryImpl) DeleteByDocumentAfter(ctx context.Context, documentId uuid.UUID, after time.Time) error {
	return r.db.WithContext(ctx).
		Where("document_id = ? AND document_created_at > ?", documentId, after).
		Delete(&model.Suggestion{}).Error
}

func (r *SuggestionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Suggestion, error) {
	var m model.Suggestion
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SuggestionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Suggestion, error) {
	var models []*model.Suggestion
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
