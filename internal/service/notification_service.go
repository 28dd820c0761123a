package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-canvas-be/internal/model"
	"ai-canvas-be/internal/pkg/logger"
	"ai-canvas-be/internal/repository/contract"
	"ai-canvas-be/pkg/events"
	pktNats "ai-canvas-be/pkg/nats"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	SendNotification(userID uuid.UUID, notification model.Notification)
}

// notificationTemplate maps an event code to the persisted notification shape.
// Message placeholders like {title} are filled from the event payload.
type notificationTemplate struct {
	Title   string
	Message string
}

var notificationTemplates = map[string]notificationTemplate{
	"DOCUMENT_CREATED":  {Title: "Document ready", Message: "\"{title}\" has finished generating."},
	"DOCUMENT_UPDATED":  {Title: "Document updated", Message: "\"{title}\" has been rewritten."},
	"SUGGESTIONS_READY": {Title: "Suggestions ready", Message: "New suggestions are available for \"{title}\"."},
	"USER_LOGIN":        {Title: "New sign-in", Message: "Your account was signed in from a new session."},
}

type NotificationService struct {
	repo       contract.NotificationRepository
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(repo contract.NotificationRepository, sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		repo:       repo,
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	// The NATS subject includes the stream prefix.
	typeCode := strings.TrimPrefix(event.EventType(), "events.")

	tmpl, ok := notificationTemplates[typeCode]
	if !ok {
		s.logger.Warn("NotificationService", fmt.Sprintf("No template for event code '%s', skipping", typeCode), nil)
		return nil
	}

	payload := event.Payload()

	uidStr, _ := payload["user_id"].(string)
	userID, err := uuid.Parse(uidStr)
	if err != nil {
		s.logger.Warn("NotificationService", fmt.Sprintf("Event %s carries no valid user_id, skipping", typeCode), nil)
		return nil
	}

	notif := s.buildNotification(userID, typeCode, tmpl, payload)

	if err := s.repo.Create(ctx, &notif); err != nil {
		s.logger.Error("NotificationService", fmt.Sprintf("Error saving notification for user %s", userID), map[string]interface{}{"error": err})
		return err // NATS will retry
	}

	if s.delivery != nil {
		s.delivery.SendNotification(userID, notif)
	}

	return nil
}

func (s *NotificationService) buildNotification(userID uuid.UUID, typeCode string, tmpl notificationTemplate, payload map[string]interface{}) model.Notification {
	msg := tmpl.Message
	for k, v := range payload {
		placeholder := fmt.Sprintf("{%s}", k)
		msg = strings.ReplaceAll(msg, placeholder, fmt.Sprintf("%v", v))
	}

	entityType := ""
	var entityID *uuid.UUID
	if et, ok := payload["entity_type"].(string); ok {
		entityType = et
	}
	if eidStr, ok := payload["entity_id"].(string); ok {
		if eid, err := uuid.Parse(eidStr); err == nil {
			entityID = &eid
		}
	}

	metaJSON, _ := json.Marshal(payload)

	return model.Notification{
		ID:         uuid.New(),
		UserID:     userID,
		TypeCode:   typeCode,
		EntityType: entityType,
		EntityID:   entityID,
		Title:      tmpl.Title,
		Message:    msg,
		Metadata:   datatypes.JSON(metaJSON),
		IsRead:     false,
		CreatedAt:  time.Now(),
	}
}

// GetHistory returns the user's notification inbox, newest first.
func (s *NotificationService) GetHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}
