package serverutils

import (
	"github.com/gofiber/fiber/v2"
)

// BaseResponse mirrors the JSON envelope controllers write with fiber.Map.
// Mostly used by tests to unmarshal responses with a typed Data field.
type BaseResponse[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// ErrorHandlerMiddleware converts uncaught handler errors into the standard
// envelope so clients never see fiber's default plain-text errors.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		return ctx.Status(code).JSON(fiber.Map{
			"success": false,
			"code":    code,
			"message": err.Error(),
		})
	}
}
