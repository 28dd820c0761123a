package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildNotificationFillsPlaceholders(t *testing.T) {
	s := &NotificationService{}
	userID := uuid.New()
	docID := uuid.New()

	payload := map[string]interface{}{
		"user_id":     userID.String(),
		"title":       "Q3 Report",
		"entity_type": "document",
		"entity_id":   docID.String(),
	}

	notif := s.buildNotification(userID, "DOCUMENT_CREATED", notificationTemplates["DOCUMENT_CREATED"], payload)

	assert.Equal(t, userID, notif.UserID)
	assert.Equal(t, "DOCUMENT_CREATED", notif.TypeCode)
	assert.Equal(t, "Document ready", notif.Title)
	assert.Equal(t, `"Q3 Report" has finished generating.`, notif.Message)
	assert.Equal(t, "document", notif.EntityType)
	require.NotNil(t, notif.EntityID)
	assert.Equal(t, docID, *notif.EntityID)
	assert.False(t, notif.IsRead)
}

func TestBuildNotificationLeavesUnknownPlaceholders(t *testing.T) {
	s := &NotificationService{}
	userID := uuid.New()

	notif := s.buildNotification(userID, "SUGGESTIONS_READY", notificationTemplates["SUGGESTIONS_READY"], map[string]interface{}{})

	// No title in the payload; the placeholder stays visible rather than
	// rendering an empty quote pair silently.
	assert.Contains(t, notif.Message, "{title}")
	assert.Nil(t, notif.EntityID)
}

func TestNotificationTemplatesCoverPublishedEvents(t *testing.T) {
	for _, code := range []string{"DOCUMENT_CREATED", "DOCUMENT_UPDATED", "SUGGESTIONS_READY", "USER_LOGIN"} {
		tmpl, ok := notificationTemplates[code]
		require.True(t, ok, "missing template for %s", code)
		assert.NotEmpty(t, tmpl.Title)
		assert.NotEmpty(t, tmpl.Message)
	}
}
