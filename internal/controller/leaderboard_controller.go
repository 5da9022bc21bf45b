package controller

import (
	"ophiuchus-be/internal/pkg/serverutils"
	"ophiuchus-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ILeaderboardController interface {
	RegisterRoutes(r fiber.Router)
	Top(ctx *fiber.Ctx) error
	MyProfile(ctx *fiber.Ctx) error
}

type leaderboardController struct {
	leaderboardService service.ILeaderboardService
}

func NewLeaderboardController(leaderboardService service.ILeaderboardService) ILeaderboardController {
	return &leaderboardController{
		leaderboardService: leaderboardService,
	}
}

func (c *leaderboardController) RegisterRoutes(r fiber.Router) {
	lb := r.Group("/leaderboard/v1")
	lb.Get("", c.Top)

	profile := r.Group("/profile/v1")
	profile.Use(serverutils.JwtMiddleware)
	profile.Get("me", c.MyProfile)
}

func (c *leaderboardController) Top(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 25)

	res, err := c.leaderboardService.Top(ctx.Context(), limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show leaderboard", res))
}

func (c *leaderboardController) MyProfile(ctx *fiber.Ctx) error {
	userId := callerId(ctx)

	res, err := c.leaderboardService.Profile(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show profile", res))
}
