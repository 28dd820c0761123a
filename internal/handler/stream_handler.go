package handler

import (
	"os"

	"ai-canvas-be/internal/pkg/logger"
	"ai-canvas-be/internal/pkg/serverutils"
	"ai-canvas-be/internal/service"
	internalWS "ai-canvas-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// StreamHandler owns the websocket endpoint carrying document stream events
// and notifications, plus the notification REST surface.
type StreamHandler struct {
	notifications *service.NotificationService
	hub           *internalWS.Hub
	logger        logger.ILogger
}

func NewStreamHandler(notifications *service.NotificationService, hub *internalWS.Hub, log logger.ILogger) *StreamHandler {
	return &StreamHandler{
		notifications: notifications,
		hub:           hub,
		logger:        log,
	}
}

func (h *StreamHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/stream/v1/ws", h.ServeWs)

	n := r.Group("/notification/v1")
	n.Use(serverutils.JwtMiddleware)
	n.Get("", h.GetNotifications)
	n.Get("unread-count", h.GetUnreadCount)
	n.Patch(":id/read", h.MarkRead)
	n.Patch("read-all", h.MarkAllRead)
}

// ServeWs upgrades the connection after validating the JWT carried in the
// query string (browsers cannot set headers on websocket handshakes) or the
// Authorization header.
func (h *StreamHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		h.logger.Warn("StreamHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID format in token"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("StreamHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
			internalWS.ServeWs(h.hub, conn, userID)
			h.logger.Info("StreamHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *StreamHandler) GetNotifications(c *fiber.Ctx) error {
	userID, err := userIDFromLocals(c)
	if err != nil {
		return err
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	notifications, err := h.notifications.GetHistory(c.Context(), userID, limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(serverutils.SuccessResponse("Success get notifications", notifications))
}

func (h *StreamHandler) GetUnreadCount(c *fiber.Ctx) error {
	userID, err := userIDFromLocals(c)
	if err != nil {
		return err
	}

	count, err := h.notifications.CountUnread(c.Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(serverutils.SuccessResponse("Success get unread count", fiber.Map{"count": count}))
}

func (h *StreamHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := userIDFromLocals(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid notification id")
	}

	if err := h.notifications.MarkRead(c.Context(), id, userID); err != nil {
		return err
	}

	return c.JSON(serverutils.SuccessResponse[any]("Notification marked read", nil))
}

func (h *StreamHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, err := userIDFromLocals(c)
	if err != nil {
		return err
	}

	if err := h.notifications.MarkAllRead(c.Context(), userID); err != nil {
		return err
	}

	return c.JSON(serverutils.SuccessResponse[any]("All notifications marked read", nil))
}

func userIDFromLocals(c *fiber.Ctx) (uuid.UUID, error) {
	userIDStr, ok := c.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return userID, nil
}
