package relay

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/yndnr/docmesh-go/internal/core/service"
	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
	"github.com/yndnr/docmesh-go/internal/telemetry/metric"
)

const writeWait = 10 * time.Second

// Conn is one synchronizing connection. It implements service.Peer.
type Conn struct {
	id      string
	ws      *websocket.Conn
	session *service.Session
	send    chan []byte
	limiter *rate.Limiter
	ping    time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once

	logger  logger.Logger
	metrics *metric.Registry
}

var _ service.Peer = (*Conn)(nil)

func newConn(id string, ws *websocket.Conn, session *service.Session, cfg Config, l logger.Logger, m *metric.Registry) *Conn {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Conn{
		id:      id,
		ws:      ws,
		session: session,
		send:    make(chan []byte, cfg.QueueSize),
		ping:    cfg.PingInterval,
		ctx:     ctx,
		cancel:  cancel,
		logger:  l,
		metrics: m,
	}
	if cfg.Rate > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst)
	}
	return c
}

// ID returns the connection id.
func (c *Conn) ID() string { return c.id }

// Send queues frame for the writer without blocking. It reports false
// only when the queue is full; frames for a closed connection are
// dropped silently.
func (c *Conn) Send(frame []byte) bool {
	if c.ctx.Err() != nil {
		return true
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Close stops both pumps. The writer sends a close frame and closes the
// socket. Safe to call more than once.
func (c *Conn) Close() {
	c.once.Do(c.cancel)
}

// readPump reads frames until the socket fails or the connection is
// closed, then detaches from the session.
func (c *Conn) readPump(maxFrame int64) {
	defer func() {
		c.session.Detach(c.id)
		c.Close()
		c.logger.Debug("connection closed")
	}()

	pongWait := 2 * c.ping
	c.ws.SetReadLimit(maxFrame)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) && c.ctx.Err() == nil {
				c.logger.Debug("read failed", "error", err)
			}
			return
		}
		if mt != websocket.BinaryMessage {
			c.metrics.RecordFrameDropped("text")
			continue
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(c.ctx); err != nil {
				return
			}
		}
		c.handle(data)
	}
}

// writePump drains the send queue and keeps the socket alive with pings.
func (c *Conn) writePump() {
	ticker := time.NewTicker(c.ping)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.ctx.Done():
			c.flush()
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return
		}
	}
}

// flush writes frames still queued when the connection was closed.
func (c *Conn) flush() {
	for {
		select {
		case frame := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				return
			}
		default:
			return
		}
	}
}
