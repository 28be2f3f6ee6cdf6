package controller

import (
	"errors"
	"strconv"

	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/pkg/serverutils"
	"realtime-chat-be/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type IRoomController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Users(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Messages(ctx *fiber.Ctx) error
	EditHistory(ctx *fiber.Ctx) error
}

type roomController struct {
	rooms    service.IRoomService
	messages service.IMessageService
	validate *validator.Validate
}

func NewRoomController(rooms service.IRoomService, messages service.IMessageService) IRoomController {
	return &roomController{
		rooms:    rooms,
		messages: messages,
		validate: validator.New(),
	}
}

func (c *roomController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/rooms")
	h.Get("/", c.List)
	h.Post("/", serverutils.JwtMiddleware, c.Create)
	h.Get("/:room/users", c.Users)
	h.Get("/:room/stats", c.Stats)
	h.Get("/:room/messages", c.Messages)

	m := r.Group("/messages")
	m.Get("/:id/edits", c.EditHistory)
}

func (c *roomController) List(ctx *fiber.Ctx) error {
	rooms, err := c.rooms.ListRooms(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Rooms fetched",
		"data":    rooms,
	})
}

func (c *roomController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateRoomRequest
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

	room, err := c.rooms.CreateRoom(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"code":    201,
		"message": "Room created",
		"data":    room,
	})
}

func (c *roomController) Users(ctx *fiber.Ctx) error {
	users := c.rooms.ListActiveUsers(ctx.Params("room"))
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Room users fetched",
		"data":    users,
	})
}

func (c *roomController) Stats(ctx *fiber.Ctx) error {
	stats, err := c.rooms.GetStats(ctx.Context(), ctx.Params("room"))
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"code":    404,
				"message": err.Error(),
			})
		}
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Room stats fetched",
		"data":    stats,
	})
}

func (c *roomController) Messages(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 50)
	offset := ctx.QueryInt("offset", 0)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	messages, err := c.messages.History(ctx.Context(), ctx.Params("room"), limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Messages fetched",
		"data":    messages,
	})
}

func (c *roomController) EditHistory(ctx *fiber.Ctx) error {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"code":    400,
			"message": "Invalid message id",
		})
	}

	edits, err := c.messages.EditHistory(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Edit history fetched",
		"data":    edits,
	})
}
