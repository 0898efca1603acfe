package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/teranos/atomspace/graph"
	grapherr "github.com/teranos/atomspace/graph/error"
	"github.com/teranos/atomspace/logger"
	"github.com/teranos/atomspace/version"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 54 * time.Second

	// Queries are single lines of text; 64KB is plenty
	maxMessageSize = 64 * 1024
)

// QueryMessage is a client request on /ws
type QueryMessage struct {
	Type  string `json:"type"`
	Query string `json:"query"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin:     checkOrigin,
}

// checkOrigin allows clients without an Origin header and localhost pages
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return strings.HasPrefix(origin, "http://localhost") ||
		strings.HasPrefix(origin, "https://localhost") ||
		strings.HasPrefix(origin, "http://127.0.0.1")
}

// client is one /ws connection. Only writePump writes to conn once it runs.
type client struct {
	server  *Server
	builder *graph.Builder
	conn    *websocket.Conn
	send    chan *graph.Graph
	id      string
}

// HandleWebSocket upgrades to a WebSocket that answers graph queries.
// The server sends a version message first, then one graph per query.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		graphErr := grapherr.New(
			grapherr.CategoryWebSocket,
			err,
			"Failed to upgrade WebSocket connection",
		).WithSubcategory(grapherr.SubcategoryWSUpgrade)
		s.logger.Errorw("WebSocket upgrade failed", graphErr.ToLogFields()...)
		return
	}

	c := &client{
		server: s,
		conn:   conn,
		send:   make(chan *graph.Graph, 16),
		id:     uuid.NewString(),
	}

	info := version.Get()
	if err := conn.WriteJSON(map[string]string{
		"type":    "version",
		"version": info.Version,
		"commit":  info.Short(),
	}); err != nil {
		s.logger.Debugw("Failed to send version info", "client_id", c.id, "error", err)
	}

	s.logger.Debugw("WebSocket client connected", "client_id", c.id, "remote", r.RemoteAddr)

	ctx, cancel := context.WithCancel(logger.WithTraceID(context.Background(), c.id))
	_, _, c.builder = s.bind(ctx)
	go c.writePump(ctx, cancel)
	c.readPump(ctx)
	cancel()
}

// readPump answers queries until the peer goes away, then closes send
func (c *client) readPump(ctx context.Context) {
	defer close(c.send)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}

		var msg QueryMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.server.logger.Warnw("JSON unmarshal error", "client_id", c.id, "error", err)
			continue
		}

		switch msg.Type {
		case "query":
			g, err := c.builder.BuildFromQuery(ctx, msg.Query)
			if err != nil && logger.ShouldLogTrace(c.server.verbosity) {
				c.server.logger.Debugw("WebSocket query failed", "client_id", c.id, "error", err)
			}
			if !c.deliver(ctx, g) {
				return
			}
		default:
			c.server.logger.Debugw("Ignoring message", "client_id", c.id, "type", msg.Type)
		}
	}
}

// deliver queues g for writePump. It reports false once ctx ends, which
// writePump causes when it stops.
func (c *client) deliver(ctx context.Context, g *graph.Graph) bool {
	select {
	case c.send <- g:
		return true
	case <-ctx.Done():
		return false
	}
}

// handleReadError logs unexpected read errors. Normal closures are quiet.
func (c *client) handleReadError(err error) {
	if websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseNormalClosure,
		websocket.CloseAbnormalClosure,
		websocket.CloseNoStatusReceived,
	) {
		graphErr := grapherr.New(
			grapherr.CategoryWebSocket,
			err,
			"WebSocket connection closed unexpectedly",
		).WithSubcategory(grapherr.SubcategoryWSRead)
		c.server.logger.Warnw("WebSocket read error", append(graphErr.ToLogFields(), "client_id", c.id)...)
	}
}

// writePump sends graphs and keepalive pings until send closes. On exit it
// calls cancel so readPump stops queueing graphs nobody will write.
func (c *client) writePump(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case g, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(g); err != nil {
				graphErr := grapherr.New(
					grapherr.CategoryWebSocket,
					err,
					fmt.Sprintf("Failed to send graph to client %s", c.id),
				).WithSubcategory(grapherr.SubcategoryWSWrite)
				c.server.logger.Warnw("Graph write error", graphErr.ToLogFields()...)
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
