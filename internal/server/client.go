package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xmasshowdown/showdown-server-go/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBufferSize = 64
)

// Client is one WebSocket connection with its assigned member identity.
type Client struct {
	memberID string
	conn     *websocket.Conn
	send     chan []byte
	server   *Server
	logger   *zap.Logger

	mu     sync.RWMutex
	name   string
	closed bool
}

func newClient(memberID string, conn *websocket.Conn, server *Server) *Client {
	return &Client{
		memberID: memberID,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		server:   server,
		logger:   server.logger.With(zap.String("member_id", memberID)),
		name:     "Guest",
	}
}

// Name returns the client's display name.
func (c *Client) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// SetName updates the client's display name.
func (c *Client) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

// Send queues an encoded frame. A client too slow to drain its buffer is
// dropped rather than allowed to block the sender.
func (c *Client) Send(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.logger.Warn("send buffer full, dropping client")
		c.closed = true
		close(c.send)
	}
}

// SendMessage encodes and queues one envelope.
func (c *Client) SendMessage(msgType protocol.MessageType, payload any) {
	data, err := protocol.Encode(msgType, payload)
	if err != nil {
		c.logger.Error("failed to encode message",
			zap.String("type", string(msgType)),
			zap.Error(err),
		)
		return
	}
	c.Send(data)
}

// Close tears the connection down once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump reads frames until the connection drops and hands each one to the
// server's dispatcher.
func (c *Client) readPump() {
	defer func() {
		c.server.disconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("unexpected close", zap.Error(err))
			}
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			c.SendMessage(protocol.TypeError, protocol.ErrorPayload{
				Code:    "malformed_message",
				Message: "Could not parse message.",
			})
			continue
		}

		c.server.dispatch(c, msg)
	}
}

// writePump drains the send channel and keeps the connection alive with
// pings. It owns all writes to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
