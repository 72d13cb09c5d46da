// Package notify pushes confirmation status changes to connected drivers
// over WebSocket.
package notify

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"profile-service/internal/models"
	"profile-service/pkg/jwt"
	"profile-service/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// safeConn wraps a websocket.Conn with a write mutex.
// gorilla/websocket allows one concurrent writer; this enforces that.
type safeConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *safeConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

func (c *safeConn) close() { c.ws.Close() }

// Status is the message pushed to a driver.
type Status struct {
	UserID    models.CallerID `json:"uid"`
	Confirmed bool            `json:"confirmed"`
}

// Hub manages WebSocket connections per caller.
type Hub struct {
	mu    sync.RWMutex
	conns map[models.CallerID][]*safeConn
	log   logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{conns: make(map[models.CallerID][]*safeConn), log: log}
}

// Routes returns a chi.Router for the /ws mount point.
func (h *Hub) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(jwt.RequireAuth)
	r.Get("/confirmation", h.HandleWS)
	return r
}

// HandleWS upgrades the connection and subscribes it to the caller's status.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	uid, _ := jwt.CallerFrom(r.Context())
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warning("ws upgrade failed", logger.Error(err))
		return
	}

	conn := &safeConn{ws: ws}

	h.mu.Lock()
	h.conns[uid] = append(h.conns[uid], conn)
	h.mu.Unlock()

	h.log.Info("ws client connected", logger.Int64("uid", int64(uid)))

	// Block until the client disconnects
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	h.removeConn(uid, conn)
	conn.close()
	h.log.Info("ws client disconnected", logger.Int64("uid", int64(uid)))
}

// NotifyConfirmation pushes the new status to every connection of uid.
func (h *Hub) NotifyConfirmation(uid models.CallerID, confirmed bool) {
	h.mu.RLock()
	conns := append([]*safeConn(nil), h.conns[uid]...)
	h.mu.RUnlock()

	msg := Status{UserID: uid, Confirmed: confirmed}
	for _, c := range conns {
		if err := c.writeJSON(msg); err != nil {
			h.log.Warning("ws write failed", logger.Int64("uid", int64(uid)), logger.Error(err))
		}
	}
}

// Connections is the number of open connections of uid.
func (h *Hub) Connections(uid models.CallerID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[uid])
}

func (h *Hub) removeConn(uid models.CallerID, conn *safeConn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.conns[uid]
	for i, c := range conns {
		if c == conn {
			h.conns[uid] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.conns[uid]) == 0 {
		delete(h.conns, uid)
	}
}
