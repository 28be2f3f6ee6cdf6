package controller

import (
	"errors"

	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/pkg/serverutils"
	"realtime-chat-be/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	Verify(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
}

type authController struct {
	service  service.IAuthService
	validate *validator.Validate
}

func NewAuthController(authService service.IAuthService) IAuthController {
	return &authController{
		service:  authService,
		validate: validator.New(),
	}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/register", c.Register)
	h.Post("/login", c.Login)
	h.Get("/verify", serverutils.JwtMiddleware, c.Verify)
	h.Post("/logout", serverutils.JwtMiddleware, c.Logout)
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
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

	res, err := c.service.Register(ctx.Context(), &req)
	if err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, service.ErrUserAlreadyExists) {
			status = fiber.StatusConflict
		}
		return ctx.Status(status).JSON(fiber.Map{
			"success": false,
			"code":    status,
			"message": err.Error(),
		})
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"code":    201,
		"message": "User registered successfully",
		"data":    res,
	})
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
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

	res, err := c.service.Login(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"code":    401,
			"message": err.Error(),
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Login successful",
		"data":    res,
	})
}

func (c *authController) Verify(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Token is valid",
		"data": fiber.Map{
			"userId":   ctx.Locals("user_id"),
			"username": ctx.Locals("username"),
		},
	})
}

// Logout is a confirmation endpoint. Tokens are stateless, so discarding the
// token client side is the actual logout.
func (c *authController) Logout(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Logged out",
	})
}
