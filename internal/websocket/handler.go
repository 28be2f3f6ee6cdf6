package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs binds an upgraded websocket connection to the hub and runs its
// pumps. Blocks until the connection closes.
func ServeWs(hub *Hub, sink EventSink, conn *websocket.Conn) {
	client := &Client{
		Hub:          hub,
		Conn:         conn,
		ConnectionId: uuid.NewString(),
		Send:         make(chan []byte, 256),
		sink:         sink,
	}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
