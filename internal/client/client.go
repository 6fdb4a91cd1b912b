// Package client talks to the pomoctl daemon over its unix socket.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/danmuck/pomoctl/internal/protocol"
)

var (
	ErrConnect           = errors.New("client: could not connect to daemon")
	ErrMessageIDMismatch = errors.New("client: response does not answer request")
	ErrClosed            = errors.New("client: daemon closed connection without replying")
)

// Config defines transport timeouts.
type Config struct {
	SocketPath      string
	ConnectTimeout  time.Duration
	ExchangeTimeout time.Duration
}

func DefaultConfig(socketPath string) Config {
	return Config{
		SocketPath:      socketPath,
		ConnectTimeout:  2 * time.Second,
		ExchangeTimeout: 5 * time.Second,
	}
}

func (c Config) WithDefaults() Config {
	d := DefaultConfig(c.SocketPath)
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
	if c.ExchangeTimeout <= 0 {
		c.ExchangeTimeout = d.ExchangeTimeout
	}
	return c
}

// Client sends one command per connection.
type Client struct {
	cfg Config
	seq atomic.Uint64
}

func New(cfg Config) *Client {
	return &Client{cfg: cfg.WithDefaults()}
}

func (c *Client) SocketPath() string {
	return c.cfg.SocketPath
}

// Send performs one request/response exchange. Policy rejections come back as
// a Response with OK=false and a nil error.
func (c *Client) Send(ctx context.Context, cmd protocol.Command) (protocol.Response, error) {
	dialer := net.Dialer{Timeout: c.cfg.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "unix", c.cfg.SocketPath)
	if err != nil {
		return protocol.Response{}, fmt.Errorf("%w at %s: %w", ErrConnect, c.cfg.SocketPath, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.cfg.ExchangeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return protocol.Response{}, err
	}

	messageID := c.seq.Add(1)
	if err := protocol.WriteCommand(conn, messageID, cmd); err != nil {
		return protocol.Response{}, fmt.Errorf("client: send %s: %w", cmd.Action, err)
	}
	resp, replyID, err := protocol.ReadResponse(conn)
	if errors.Is(err, io.EOF) {
		return protocol.Response{}, fmt.Errorf("%w to %s", ErrClosed, cmd.Action)
	}
	if err != nil {
		return protocol.Response{}, fmt.Errorf("client: read response to %s: %w", cmd.Action, err)
	}
	if replyID != messageID {
		return protocol.Response{}, fmt.Errorf("%w: sent=%d got=%d", ErrMessageIDMismatch, messageID, replyID)
	}
	return resp, nil
}
