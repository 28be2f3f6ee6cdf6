package websocket

import (
	"context"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

// EventSink consumes inbound frames and disconnects. Implemented by
// chat.Dispatcher.
type EventSink interface {
	HandleMessage(ctx context.Context, connectionId string, raw []byte)
	HandleDisconnect(ctx context.Context, connectionId string)
}

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	Hub *Hub

	Conn *websocket.Conn

	// ConnectionId identifies this socket for the session registry.
	ConnectionId string

	// Buffered channel of outbound messages.
	Send chan []byte

	sink EventSink
}

// readPump pumps frames from the websocket connection into the sink. Frames
// are handed over synchronously, so one connection's events are processed in
// arrival order and the disconnect only fires after the last in-flight event
// returned.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.sink.HandleDisconnect(context.Background(), c.ConnectionId)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Hub", "Unexpected close", map[string]interface{}{
					"connection_id": c.ConnectionId, "error": err,
				})
			}
			break
		}
		c.sink.HandleMessage(context.Background(), c.ConnectionId, data)
	}
}

// writePump pumps messages from the hub to the websocket connection. One
// frame per event keeps client-side parsing trivial.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
