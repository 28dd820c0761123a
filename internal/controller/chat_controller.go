package controller

import (
	"errors"

	"ai-canvas-be/internal/dto"
	"ai-canvas-be/internal/pkg/serverutils"
	"ai-canvas-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	UpdateVisibility(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.CreateSession)
	h.Get("", c.ListSessions)
	h.Get(":id/history", c.History)
	h.Patch(":id/visibility", c.UpdateVisibility)
	h.Delete(":id", c.DeleteSession)
	h.Post(":id/message", c.SendMessage)
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.CreateChatSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.CreateSession(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create chat session", res))
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.chatService.ListSessions(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list chat sessions", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	res, err := c.chatService.GetHistory(ctx.Context(), userId, id)
	if err != nil {
		return mapChatError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

func (c *chatController) UpdateVisibility(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	var req dto.UpdateChatVisibilityRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.chatService.UpdateVisibility(ctx.Context(), userId, &req); err != nil {
		return mapChatError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success update visibility", nil))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	if err := c.chatService.DeleteSession(ctx.Context(), userId, id); err != nil {
		return mapChatError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete chat session", nil))
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.SessionId = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.chatService.SendMessage(ctx.Context(), userId, &req); err != nil {
		return mapChatError(err)
	}

	// The reply streams over the websocket; this endpoint only accepts.
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse[any]("Message accepted", nil))
}

func mapChatError(err error) error {
	if errors.Is(err, service.ErrChatSessionNotFound) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return err
}
