package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"synapse-console/src/models"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024 // client commands are tiny
	maxCloseReason = 123      // control frame payload minus the code
)

// CommandSnapshot asks the hub to resend the full dashboard state.
const CommandSnapshot = "snapshot"

// -----------------------------------------------------------------------------
// Client Structure
// -----------------------------------------------------------------------------

// Client is one presentation socket. Only the hub writes to send.
type Client struct {
	hub  *DashboardServer
	conn *websocket.Conn
	send chan interface{}
}

// -----------------------------------------------------------------------------
// readPump - accepts resync commands, anything else ends the session
// -----------------------------------------------------------------------------

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
		c.hub.Logger.Debug("Dashboard client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		kind, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.Logger.Warning("Dashboard socket error: %v", err)
			}
			return
		}

		if kind != websocket.TextMessage {
			c.reject(websocket.CloseUnsupportedData, "commands must be JSON text frames")
			return
		}
		if err := checkCommand(message); err != nil {
			c.hub.Logger.Info("Rejecting dashboard client: %v", err)
			c.reject(websocket.ClosePolicyViolation, err.Error())
			return
		}
		c.hub.requestResync(c)
	}
}

// checkCommand accepts exactly {"command":"snapshot"}.
func checkCommand(message []byte) error {
	var cmd models.MClientCommand

	dec := json.NewDecoder(bytes.NewReader(message))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cmd); err != nil {
		return fmt.Errorf("malformed command: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("malformed command: trailing data")
	}
	if cmd.Command != CommandSnapshot {
		return fmt.Errorf("unknown command %q", cmd.Command)
	}
	return nil
}

// reject sends a close frame with the reason; the deferred cleanup in
// readPump drops the connection.
func (c *Client) reject(code int, reason string) {
	if len(reason) > maxCloseReason {
		reason = reason[:maxCloseReason]
	}
	frame := websocket.FormatCloseMessage(code, reason)
	if err := c.conn.WriteControl(websocket.CloseMessage, frame, time.Now().Add(writeWait)); err != nil {
		c.hub.Logger.Debug("Dashboard close frame not sent: %v", err)
	}
}

// -----------------------------------------------------------------------------
// writePump - snapshots and events in hub order, plus keep-alive pings
// -----------------------------------------------------------------------------

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// Hub dropped this client: shutdown or a full queue
				frame := websocket.FormatCloseMessage(websocket.CloseGoingAway, "dashboard closed")
				c.conn.WriteControl(websocket.CloseMessage, frame, time.Now().Add(writeWait))
				return
			}

			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.hub.Logger.Debug("Dashboard write error: %v", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
