package controller

import (
	"ophiuchus-be/internal/dto"
	"ophiuchus-be/internal/entity"
	"ophiuchus-be/internal/pkg/serverutils"
	"ophiuchus-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IRoomController interface {
	RegisterRoutes(r fiber.Router)
	SubmitGuess(ctx *fiber.Ctx) error
	SubmitMoodSong(ctx *fiber.Ctx) error
	QuizQuestions(ctx *fiber.Ctx) error
	SubmitQuizAnswers(ctx *fiber.Ctx) error
	AskOracle(ctx *fiber.Ctx) error
	SkipRemaining(ctx *fiber.Ctx) error
}

type roomController struct {
	roomService service.IRoomService
}

func NewRoomController(roomService service.IRoomService) IRoomController {
	return &roomController{
		roomService: roomService,
	}
}

func (c *roomController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/quest/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post(":id/rooms/:room/guess", c.SubmitGuess)
	h.Post(":id/rooms/aurora/mood", c.SubmitMoodSong)
	h.Get(":id/rooms/nova/questions", c.QuizQuestions)
	h.Post(":id/rooms/nova/answers", c.SubmitQuizAnswers)
	h.Post(":id/rooms/cradle/oracle", c.AskOracle)
	h.Post(":id/skip", c.SkipRemaining)
}

func sessionIdParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, serverutils.BadRequest("invalid quest id")
	}
	return id, nil
}

func (c *roomController) SubmitGuess(ctx *fiber.Ctx) error {
	userId := callerId(ctx)
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	room := entity.RoomKind(ctx.Params("room"))
	if !room.Valid() {
		return serverutils.BadRequest("unknown room")
	}

	var req dto.GuessRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.roomService.SubmitGuess(ctx.Context(), userId, id, room, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success submit guess", res))
}

func (c *roomController) SubmitMoodSong(ctx *fiber.Ctx) error {
	userId := callerId(ctx)
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.MoodSongRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.roomService.SubmitMoodSong(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success submit mood song", res))
}

func (c *roomController) QuizQuestions(ctx *fiber.Ctx) error {
	userId := callerId(ctx)
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.roomService.QuizQuestions(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show quiz questions", res))
}

func (c *roomController) SubmitQuizAnswers(ctx *fiber.Ctx) error {
	userId := callerId(ctx)
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.QuizAnswersRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.roomService.SubmitQuizAnswers(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success submit quiz answers", res))
}

func (c *roomController) AskOracle(ctx *fiber.Ctx) error {
	userId := callerId(ctx)
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.OracleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.roomService.AskOracle(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success ask oracle", res))
}

func (c *roomController) SkipRemaining(ctx *fiber.Ctx) error {
	userId := callerId(ctx)
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.roomService.SkipRemaining(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success skip remaining rooms", res))
}
