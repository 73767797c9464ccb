// Package realtime serves the live WebSocket channel. Each authenticated
// connection is registered in the presence registry under its user id so the
// notification dispatcher can reach it.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"gigflow/internal/auth"
	"gigflow/internal/presence"
	"gigflow/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 16
)

var (
	// ErrConnectionClosed is returned by Send after the connection went away.
	ErrConnectionClosed = errors.New("realtime: connection closed")
	// ErrSendBufferFull is returned by Send when the client is not keeping up.
	ErrSendBufferFull = errors.New("realtime: send buffer full")
)

// TokenVerifier resolves a session token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Registry is where connections are announced and withdrawn.
type Registry interface {
	Register(userID string, conn presence.Conn) presence.Conn
	Unregister(userID string, conn presence.Conn) bool
}

// Handler upgrades authenticated requests to WebSocket connections.
type Handler struct {
	tokens     TokenVerifier
	registry   Registry
	cookieName string
	upgrader   websocket.Upgrader

	mu      sync.Mutex
	clients map[*Client]struct{}
}

// NewHandler creates a Handler. allowedOrigin is the single browser origin
// accepted; requests without an Origin header are always accepted.
func NewHandler(tokens TokenVerifier, registry Registry, cookieName, allowedOrigin string) *Handler {
	return &Handler{
		tokens:     tokens,
		registry:   registry,
		cookieName: cookieName,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "*" || origin == allowedOrigin
			},
		},
		clients: make(map[*Client]struct{}),
	}
}

// ServeWS handles GET /ws. The credential is checked before the upgrade so an
// unauthenticated caller gets a plain 401 and is never registered.
func (h *Handler) ServeWS(c *gin.Context) {
	userID, err := h.tokens.Verify(auth.TokenFromRequest(c.Request, h.cookieName))
	if err != nil {
		utils.Warn("realtime: connection refused", map[string]any{
			"remote_addr": c.ClientIP(),
			"error":       err.Error(),
		})
		utils.AbortWithError(c, http.StatusUnauthorized, err, "not authorized")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader already wrote the error response
		utils.Warn("realtime: upgrade failed", map[string]any{"user_id": userID, "error": err.Error()})
		return
	}

	client := newClient(userID, conn)
	h.track(client)
	if replaced := h.registry.Register(userID, client); replaced != nil {
		utils.Debug("realtime: newer connection replaced previous one", map[string]any{
			"user_id":  userID,
			"conn_id":  client.ID(),
			"replaced": replaced.ID(),
		})
	}
	utils.Info("realtime: client connected", map[string]any{"user_id": userID, "conn_id": client.ID()})

	go client.writePump()
	go func() {
		client.readPump()
		h.registry.Unregister(userID, client)
		h.untrack(client)
		utils.Info("realtime: client disconnected", map[string]any{"user_id": userID, "conn_id": client.ID()})
	}()
}

// Shutdown closes every open connection. Hijacked connections are not
// closed by http.Server.Shutdown.
func (h *Handler) Shutdown() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func (h *Handler) track(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Handler) untrack(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// frame is the wire shape of every server-sent message.
type frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Client is one live WebSocket connection. It implements presence.Conn.
type Client struct {
	id     string
	userID string
	conn   *websocket.Conn
	send   chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		id:     utils.GenerateID(),
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// ID identifies this connection, distinct from the user id.
func (c *Client) ID() string { return c.id }

// Send queues an event for the write pump. It never blocks: a closed
// connection or a full buffer is reported as an error.
func (c *Client) Send(_ context.Context, event string, payload any) error {
	data, err := json.Marshal(frame{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("realtime: encode %s: %w", event, err)
	}

	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrConnectionClosed
	default:
		return ErrSendBufferFull
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		// WriteControl may run concurrently with the write pump
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
		_ = c.conn.Close()
	})
}

// readPump drains inbound frames, which only serve as liveness, until the
// connection fails.
func (c *Client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				utils.Warn("realtime: unexpected close", map[string]any{"user_id": c.userID, "error": err.Error()})
			}
			return
		}
	}
}

// writePump owns every data frame written to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
