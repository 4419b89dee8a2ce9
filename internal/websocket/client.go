package websocket

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	ws "github.com/coder/websocket"
	"golang.org/x/time/rate"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// CommandHandler executes one inbound command and returns its response.
type CommandHandler interface {
	HandleCommand(ctx context.Context, data []byte) Response
}

// Client represents a single WebSocket connection.
type Client struct {
	hub      *Hub
	conn     *ws.Conn
	send     chan []byte
	commands CommandHandler
	limiter  *rate.Limiter

	mu   sync.Mutex
	subs []int64
}

// NewClient creates a Client tied to the given hub and connection. commands
// may be nil for a push-only client; limiter may be nil for no throttling.
func NewClient(hub *Hub, conn *ws.Conn, commands CommandHandler, limiter *rate.Limiter) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		commands: commands,
		limiter:  limiter,
	}
}

// Run registers the client, starts the write pump, and runs the read pump.
// It blocks until the connection is closed, then unregisters.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// readPump reads commands until the connection closes.
func (c *Client) readPump(ctx context.Context) {
	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		if typ != ws.MessageText || c.commands == nil {
			continue
		}
		c.handle(ctx, data)
	}
}

func (c *Client) handle(ctx context.Context, data []byte) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		c.reply(ctx, Failure(0, CodeInvalidFormat, "malformed message"))
		return
	}
	if c.limiter != nil && !c.limiter.Allow() {
		c.reply(ctx, Failure(req.ID, CodeRateLimited, "too many commands"))
		return
	}

	resp := c.commands.HandleCommand(ctx, data)
	if resp.Success && req.Type == CommandSubscribe {
		c.subscribe(req.ID)
	}
	c.reply(ctx, resp)
}

// reply queues a command response. Unlike broadcasts it waits for buffer
// space; the send channel stays open until readPump returns.
func (c *Client) reply(ctx context.Context, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		c.hub.logger.Error("marshal response", "id", resp.ID, "error", err)
		data, _ = json.Marshal(Failure(resp.ID, CodeInternalError, "unencodable result"))
	}
	select {
	case c.send <- data:
	case <-ctx.Done():
	}
}

// trySend queues data without blocking. A full buffer drops the message.
func (c *Client) trySend(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) subscribe(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !slices.Contains(c.subs, id) {
		c.subs = append(c.subs, id)
	}
}

func (c *Client) subscriptions() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.subs)
}

// writePump drains the send channel and writes messages to the WebSocket.
// It also sends periodic pings to detect stale connections.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
