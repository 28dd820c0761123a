package mapper

import (
	"time"

	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/model"

	"gorm.io/gorm"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var deletedAt *time.Time
	if d.DeletedAt.Valid {
		t := d.DeletedAt.Time
		deletedAt = &t
	}

	return &entity.Document{
		Id:        d.Id,
		CreatedAt: d.CreatedAt,
		Title:     d.Title,
		Content:   d.Content,
		Kind:      entity.DocumentKind(d.Kind),
		Language:  d.Language,
		UserId:    d.UserId,
		DeletedAt: deletedAt,
		IsDeleted: d.DeletedAt.Valid,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if d.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *d.DeletedAt, Valid: true}
	} else if d.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	return &model.Document{
		Id:        d.Id,
		CreatedAt: d.CreatedAt,
		Title:     d.Title,
		Content:   d.Content,
		Kind:      string(d.Kind),
		Language:  d.Language,
		UserId:    d.UserId,
		DeletedAt: deletedAt,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
