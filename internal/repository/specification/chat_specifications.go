package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.SessionID)
}

type ByVisibility struct {
	Visibility string
}

func (s ByVisibility) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("visibility = ?", s.Visibility)
}
