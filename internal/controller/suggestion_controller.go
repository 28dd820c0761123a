package controller

import (
	"errors"

	"ai-canvas-be/internal/dto"
	"ai-canvas-be/internal/pkg/serverutils"
	"ai-canvas-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISuggestionController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Resolve(ctx *fiber.Ctx) error
}

type suggestionController struct {
	suggestionService service.ISuggestionService
}

func NewSuggestionController(suggestionService service.ISuggestionService) ISuggestionController {
	return &suggestionController{
		suggestionService: suggestionService,
	}
}

func (c *suggestionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/suggestion/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("document/:id/generate", c.Generate)
	h.Get("document/:id", c.List)
	h.Patch(":id/resolve", c.Resolve)
}

func (c *suggestionController) Generate(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	docId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	req := dto.GenerateSuggestionsRequest{DocumentId: docId}
	if err := c.suggestionService.Generate(ctx.Context(), userId, &req); err != nil {
		return mapSuggestionError(err)
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse[any]("Suggestion generation started", nil))
}

func (c *suggestionController) List(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	docId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	res, err := c.suggestionService.List(ctx.Context(), userId, docId)
	if err != nil {
		return mapSuggestionError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list suggestions", res))
}

func (c *suggestionController) Resolve(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid suggestion id")
	}

	if err := c.suggestionService.Resolve(ctx.Context(), userId, id); err != nil {
		return mapSuggestionError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success resolve suggestion", nil))
}

func mapSuggestionError(err error) error {
	switch {
	case errors.Is(err, service.ErrDocumentNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSuggestionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return err
}
