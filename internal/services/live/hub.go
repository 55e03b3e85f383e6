package live

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	readLimit  = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub tracks live connections.
type Hub struct {
	deps   Deps
	logger *common.Logger

	mu       sync.RWMutex
	sessions map[*Session]struct{}
	done     chan struct{}
}

// NewHub creates a hub whose sessions use deps.
func NewHub(deps Deps, logger *common.Logger) *Hub {
	return &Hub{
		deps:     deps,
		logger:   logger,
		sessions: make(map[*Session]struct{}),
		done:     make(chan struct{}),
	}
}

// ServeWS upgrades the request and runs a session for user until the
// connection closes or the hub stops.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, user *models.User) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	// The request context ends when the handler returns, so the session
	// lives on its own context.
	sess := NewSession(context.Background(), user, h.deps, h.logger)
	if !h.register(sess) {
		conn.Close()
		return
	}

	go h.writePump(conn, sess)
	sess.Start()
	go h.readPump(conn, sess)
}

func (h *Hub) register(sess *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.done:
		return false
	default:
	}
	h.sessions[sess] = struct{}{}
	h.logger.Debug().Int("clients", len(h.sessions)).Msg("Live client connected")
	return true
}

func (h *Hub) unregister(sess *Session) {
	h.mu.Lock()
	_, ok := h.sessions[sess]
	delete(h.sessions, sess)
	n := len(h.sessions)
	h.mu.Unlock()

	if ok {
		sess.Close()
		h.logger.Debug().Int("clients", n).Msg("Live client disconnected")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Stop closes every session and refuses new ones.
func (h *Hub) Stop() {
	h.mu.Lock()
	select {
	case <-h.done:
		h.mu.Unlock()
		return
	default:
		close(h.done)
	}
	sessions := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		h.unregister(s)
	}
}

// writePump sends queued frames and keepalive pings.
func (h *Hub) writePump(conn *websocket.Conn, sess *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-sess.Send():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump feeds inbound frames to the session.
func (h *Hub) readPump(conn *websocket.Conn, sess *Session) {
	defer func() {
		h.unregister(sess)
		conn.Close()
	}()

	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		sess.Handle(data)
	}
}
