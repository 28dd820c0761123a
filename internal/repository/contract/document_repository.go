package contract

import (
	"context"
	"time"

	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	// Create appends a new version row. Existing versions are never mutated.
	Create(ctx context.Context, doc *entity.Document) error

	// FindLatest returns the newest version of a document, or nil.
	FindLatest(ctx context.Context, id uuid.UUID) (*entity.Document, error)

	// FindVersions returns all versions of a document, oldest first.
	FindVersions(ctx context.Context, id uuid.UUID) ([]*entity.Document, error)

	// FindLatestPerDocument returns the newest version of each document
	// matching the specs (one row per document id).
	FindLatestPerDocument(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)

	// DeleteVersionsAfter removes versions newer than the timestamp,
	// restoring the version at that timestamp as current.
	DeleteVersionsAfter(ctx context.Context, id uuid.UUID, after time.Time) error

	// DeleteAllVersions soft-deletes every version of a document.
	DeleteAllVersions(ctx context.Context, id uuid.UUID) error

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
