package controller

import (
	"ophiuchus-be/internal/dto"
	"ophiuchus-be/internal/pkg/serverutils"
	"ophiuchus-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IQuestController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Active(ctx *fiber.Ctx) error
	Progress(ctx *fiber.Ctx) error
	SubmitFinalGuess(ctx *fiber.Ctx) error
}

type questController struct {
	sessionService service.ISessionService
	revealService  service.IRevealService
}

func NewQuestController(sessionService service.ISessionService, revealService service.IRevealService) IQuestController {
	return &questController{
		sessionService: sessionService,
		revealService:  revealService,
	}
}

func (c *questController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/quest/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get("active", c.Active)
	h.Get(":id", c.Progress)
	h.Post(":id/final-guess", c.SubmitFinalGuess)
}

func callerId(ctx *fiber.Ctx) uuid.UUID {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	return userId
}

func (c *questController) Create(ctx *fiber.Ctx) error {
	userId := callerId(ctx)

	var req dto.CreateQuestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create quest", res))
}

func (c *questController) Active(ctx *fiber.Ctx) error {
	userId := callerId(ctx)

	res, err := c.sessionService.Active(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show active quest", res))
}

func (c *questController) Progress(ctx *fiber.Ctx) error {
	userId := callerId(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.BadRequest("invalid quest id")
	}

	res, err := c.sessionService.Progress(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show quest progress", res))
}

func (c *questController) SubmitFinalGuess(ctx *fiber.Ctx) error {
	userId := callerId(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.BadRequest("invalid quest id")
	}

	var req dto.FinalGuessRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.revealService.SubmitFinalGuess(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success submit final guess", res))
}
