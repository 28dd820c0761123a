package model

import (
	"time"

	"github.com/google/uuid"
)

type Suggestion struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId        uuid.UUID `gorm:"type:uuid;not null;index:idx_suggestions_document,priority:1"`
	DocumentCreatedAt time.Time `gorm:"not null;index:idx_suggestions_document,priority:2"`
	OriginalText      string    `gorm:"type:text;not null"`
	SuggestedText     string    `gorm:"type:text;not null"`
	Description       string    `gorm:"type:text"`
	Category          string    `gorm:"type:varchar(20);not null;default:'clarity'"`
	Impact            string    `gorm:"type:varchar(10);not null;default:'medium'"`
	MessageIndex      *int      `gorm:""`
	IsResolved        bool      `gorm:"default:false"`
	UserId            uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
}

func (Suggestion) TableName() string {
	return "suggestions"
}
