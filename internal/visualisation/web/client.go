// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package web

import (
	"encoding/json"
	"time"

	"footprint/cli/internal/logging"
	"footprint/cli/internal/visualisation"

	"github.com/gorilla/websocket"
)

const (
	WriteWait      = 10 * time.Second    // max time to write a frame to the browser
	PongWait       = 60 * time.Second    // no pong within this window means the tab is gone
	PingPeriod     = (PongWait * 9) / 10 // ping before the pong window expires
	MaxMessageSize = 1 << 20             // consent exclusions can list many rows
)

// Frame types sent to the browser.
const (
	FrameRender  = "render"
	FrameUnmount = "unmount"
	FrameError   = "error"
	FrameAck     = "ack"
)

// Frame is a server-to-browser message.
type Frame struct {
	Type    string              `json:"type"`
	Version int                 `json:"version,omitempty"`
	Tree    *visualisation.Tree `json:"tree,omitempty"`
	Message string              `json:"message,omitempty"`
}

// ActionMessage is a browser-to-server message answering the page with Version.
type ActionMessage struct {
	Version int `json:"version"`
	visualisation.Action
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Surface
}

func newClient(conn *websocket.Conn, hub *Surface) *client {
	return &client{conn: conn, send: make(chan []byte, 16), hub: hub}
}

// readPump forwards actions to the surface until the connection closes.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.With("web").Debugf("websocket closed: %v", err)
			}
			return
		}
		var msg ActionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.enqueue(Frame{Type: FrameError, Message: "malformed action"})
			continue
		}
		if err := c.hub.act(msg); err != nil {
			c.enqueue(Frame{Type: FrameError, Version: msg.Version, Message: err.Error()})
			continue
		}
		c.enqueue(Frame{Type: FrameAck, Version: msg.Version})
	}
}

// writePump writes queued frames and keeps the connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "unmounted"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue drops the frame when the browser is not keeping up; it will get the
// current page again on reconnect.
func (c *client) enqueue(f Frame) {
	b, err := json.Marshal(f)
	if err != nil {
		return
	}
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	if _, ok := c.hub.clients[c]; !ok {
		return
	}
	select {
	case c.send <- b:
	default:
	}
}
