package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document rows share Id across versions; the composite primary key with
// CreatedAt makes every save an append, never an overwrite.
type Document struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time      `gorm:"primaryKey;autoCreateTime"`
	Title     string         `gorm:"type:varchar(255);not null"`
	Content   string         `gorm:"type:text"`
	Kind      string         `gorm:"type:varchar(20);not null;default:'text'"`
	Language  string         `gorm:"type:varchar(50)"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
