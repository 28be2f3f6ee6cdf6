package controller

import (
	"errors"

	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/pkg/serverutils"
	"realtime-chat-be/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	GetMe(ctx *fiber.Ctx) error
	UpdateMe(ctx *fiber.Ctx) error
	GetByUsername(ctx *fiber.Ctx) error
}

type userController struct {
	service  service.IUserService
	validate *validator.Validate
}

func NewUserController(userService service.IUserService) IUserController {
	return &userController{
		service:  userService,
		validate: validator.New(),
	}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/users")
	h.Get("/me", serverutils.JwtMiddleware, c.GetMe)
	h.Put("/me", serverutils.JwtMiddleware, c.UpdateMe)
	h.Get("/:username", c.GetByUsername)
}

func (c *userController) GetMe(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	profile, err := c.service.GetProfile(ctx.Context(), userId)
	if err != nil {
		return userError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Profile fetched",
		"data":    profile,
	})
}

func (c *userController) UpdateMe(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateProfileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := c.validate.Struct(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"code":    400,
			"message": err.Error(),
		})
	}

	profile, err := c.service.UpdateProfile(ctx.Context(), userId, &req)
	if err != nil {
		return userError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Profile updated",
		"data":    profile,
	})
}

func (c *userController) GetByUsername(ctx *fiber.Ctx) error {
	profile, err := c.service.GetByUsername(ctx.Context(), ctx.Params("username"))
	if err != nil {
		return userError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Profile fetched",
		"data":    profile,
	})
}

func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"code":    401,
			"message": "Invalid token subject",
		})
	}
	return userId, nil
}

func userError(ctx *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrUserNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"code":    404,
			"message": err.Error(),
		})
	}
	return err
}
