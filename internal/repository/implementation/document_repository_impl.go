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

type DocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &DocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

func (r *DocumentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DocumentRepositoryImpl) Create(ctx context.Context, doc *entity.Document) error {
	m := r.mapper.ToModel(doc)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*doc = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocumentRepositoryImpl) FindLatest(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	var m model.Document
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DocumentRepositoryImpl) FindVersions(ctx context.Context, id uuid.UUID) ([]*entity.Document, error) {
	var models []*model.Document
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DocumentRepositoryImpl) FindLatestPerDocument(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	// DISTINCT ON keeps the newest row per document id.
	var models []*model.Document
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Document{}), specs...)
	err := query.
		Select("DISTINCT ON (id) *").
		Order("id, created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DocumentRepositoryImpl) DeleteVersionsAfter(ctx context.Context, id uuid.UUID, after time.Time) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND created_at > ?", id, after).
		Delete(&model.Document{}).Error
}

func (r *DocumentRepositoryImpl) DeleteAllVersions(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Document{}).Error
}

func (r *DocumentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	var m model.Document
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DocumentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	var models []*model.Document
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DocumentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Document{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
