package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"radiodj/internal/core"
)

// Handler processes a single bus message.
type Handler func(ctx context.Context, msg *Message)

// Client is a websocket client for the host message bus. The host is
// assumed single-session: messages are dispatched sequentially in arrival
// order, mirroring the host's own intent dispatch.
type Client struct {
	config *core.BusConfig
	logger *zap.Logger

	conn    *websocket.Conn
	writeMu sync.Mutex

	handlersMu sync.RWMutex
	handlers   map[string][]Handler
}

func NewClient(config *core.BusConfig, logger *zap.Logger) *Client {
	return &Client{
		config:   config,
		logger:   logger,
		handlers: make(map[string][]Handler),
	}
}

// URL returns the bus websocket endpoint.
func (c *Client) URL() string {
	return fmt.Sprintf("ws://%s:%d%s", c.config.Host, c.config.Port, c.config.Path)
}

// Connect dials the host bus.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.URL(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect to message bus: %w", err)
	}
	c.conn = conn

	c.logger.Info("Connected to message bus", zap.String("url", c.URL()))
	return nil
}

// Close tears down the bus connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// On registers a handler for a message type. Multiple handlers per type run
// in registration order.
func (c *Client) On(msgType string, handler Handler) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	c.handlers[msgType] = append(c.handlers[msgType], handler)
}

// Emit sends a message onto the bus.
func (c *Client) Emit(msg *Message) error {
	if c.conn == nil {
		return fmt.Errorf("message bus not connected")
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to emit %s: %w", msg.Type, err)
	}
	return nil
}

// Listen reads bus messages and dispatches them to registered handlers
// until the context is canceled or the connection drops.
func (c *Client) Listen(ctx context.Context) error {
	if c.conn == nil {
		return fmt.Errorf("message bus not connected")
	}

	go func() {
		<-ctx.Done()
		_ = c.conn.Close()
	}()

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Message bus listener stopped")
				return nil
			}
			return fmt.Errorf("message bus read failed: %w", err)
		}

		c.dispatch(ctx, &msg)
	}
}

func (c *Client) dispatch(ctx context.Context, msg *Message) {
	c.handlersMu.RLock()
	handlers := c.handlers[msg.Type]
	c.handlersMu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	c.logger.Debug("Dispatching bus message",
		zap.String("type", msg.Type),
		zap.Int("handlers", len(handlers)))

	for _, handler := range handlers {
		handler(ctx, msg)
	}
}
