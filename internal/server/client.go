package server

import (
	"bytes"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"chatsync/internal/dispatch"
	"chatsync/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// Client represents a single WebSocket connection.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	dispatcher *dispatch.Dispatcher

	userID    string
	clientID  string
	isClosing int32
}

// ClientMessage represents a message from the client. Typing events feed
// straight into the reconciler as typing-draft updates.
type ClientMessage struct {
	Type     string          `json:"type"`
	ChatID   string          `json:"chat_id,omitempty"`
	ThreadID domain.ThreadID `json:"thread_id,omitempty"`
	RandomID string          `json:"random_id,omitempty"`
	Text     string          `json:"text,omitempty"`
}

func NewClient(hub *Hub, conn *websocket.Conn, dispatcher *dispatch.Dispatcher, userID, clientID string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, 256),
		dispatcher: dispatcher,
		userID:     userID,
		clientID:   clientID,
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Errorf("websocket unexpected close for %s: %v", c.clientID, err)
			}
			break
		}

		message = bytes.TrimSpace(bytes.Replace(message, newline, space, -1))
		if err := c.handleMessage(message); err != nil {
			c.hub.log.Warnf("websocket message from %s rejected: %v", c.clientID, err)
		}
	}
}

func (c *Client) handleMessage(message []byte) error {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return err
	}

	switch msg.Type {
	case "typing":
		c.dispatcher.Apply(dispatch.TypingDraft{
			ChatID:   msg.ChatID,
			ThreadID: msg.ThreadID,
			RandomID: msg.RandomID,
			Text:     msg.Text,
		})
	case "ping":
		c.enqueue([]byte(`{"type":"pong"}`))
	default:
		c.hub.log.Warnf("unknown message type %q from %s", msg.Type, c.clientID)
	}
	return nil
}

func (c *Client) enqueue(payload []byte) {
	if atomic.LoadInt32(&c.isClosing) == 1 {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
