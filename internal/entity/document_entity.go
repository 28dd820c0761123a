package entity

import (
	"time"

	"github.com/google/uuid"
)

type DocumentKind string

const (
	DocumentKindText  DocumentKind = "text"
	DocumentKindCode  DocumentKind = "code"
	DocumentKindSheet DocumentKind = "sheet"
	DocumentKindImage DocumentKind = "image"
)

// Document is one saved version of a canvas document. Versions of the same
// document share Id and are distinguished by CreatedAt; the newest row is the
// current version.
type Document struct {
	Id        uuid.UUID
	CreatedAt time.Time
	Title     string
	Content   string
	Kind      DocumentKind
	Language  string
	UserId    uuid.UUID
	DeletedAt *time.Time
	IsDeleted bool
}
