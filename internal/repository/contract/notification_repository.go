package contract

import (
	"context"

	"ai-canvas-be/internal/model"

	"github.com/google/uuid"
)

// NotificationRepository works directly on the model; notifications are a
// delivery log, not a rich domain object.
type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}
