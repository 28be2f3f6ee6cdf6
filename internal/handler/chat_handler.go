package handler

import (
	"realtime-chat-be/internal/chat"
	"realtime-chat-be/internal/pkg/logger"
	internalWS "realtime-chat-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ChatHandler owns the websocket endpoint and the live-state debug routes.
// The handshake is unauthenticated: guests are allowed, and authenticated
// clients present their token inside the join event.
type ChatHandler struct {
	hub        *internalWS.Hub
	dispatcher *chat.Dispatcher
	registry   *chat.Registry
	logger     logger.ILogger
}

func NewChatHandler(hub *internalWS.Hub, dispatcher *chat.Dispatcher, registry *chat.Registry, log logger.ILogger) *ChatHandler {
	return &ChatHandler{
		hub:        hub,
		dispatcher: dispatcher,
		registry:   registry,
		logger:     log,
	}
}

func (h *ChatHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)

	status := router.Group("/status")
	status.Get("/", h.Status)
}

// ServeWs upgrades the connection and binds it to the hub.
func (h *ChatHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("ChatHandler", "WebSocket session started", map[string]interface{}{
			"remote_addr": conn.RemoteAddr().String(),
		})
		internalWS.ServeWs(h.hub, h.dispatcher, conn)
		h.logger.Info("ChatHandler", "WebSocket session ended", map[string]interface{}{
			"remote_addr": conn.RemoteAddr().String(),
		})
	})(c)
}

// Status reports the live session counts.
func (h *ChatHandler) Status(c *fiber.Ctx) error {
	rooms := h.registry.Rooms()
	perRoom := make(map[string]int, len(rooms))
	for _, room := range rooms {
		perRoom[room] = h.registry.CountByRoom(room)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Status fetched",
		"data": fiber.Map{
			"connections": h.hub.Count(),
			"sessions":    h.registry.Count(),
			"rooms":       perRoom,
		},
	})
}
