package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

// ByVersion pins a query to one document version.
type ByVersion struct {
	DocumentID uuid.UUID
	CreatedAt  time.Time
}

func (s ByVersion) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ? AND document_created_at = ?", s.DocumentID, s.CreatedAt)
}

// CreatedAfter selects versions newer than the given timestamp.
type CreatedAfter struct {
	After time.Time
}

func (s CreatedAfter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at > ?", s.After)
}

type ByKind struct {
	Kind string
}

func (s ByKind) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("kind = ?", s.Kind)
}

type Unresolved struct{}

func (s Unresolved) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_resolved = false")
}
