package ws

import (
	"context"
	"log/slog"
	"net/http"
	"quizlive/internal/model"
	"quizlive/internal/transport/rest/handler"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // streams are token-gated
	},
}

// LiveReader returns the current snapshot of a live
type LiveReader interface {
	GetLive(ctx context.Context, token, key string) (*model.Live, error)
}

// Handler serves live snapshot streams
type Handler struct {
	hub    *Hub
	lives  LiveReader
	logger *slog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, lives LiveReader, logger *slog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		lives:  lives,
		logger: logger,
	}
}

// LiveStream handles GET /v1/ws/lives/{liveKey}?token=
func (h *Handler) LiveStream(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["liveKey"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	// subscribe before reading so no mutation falls between the two
	sub := h.hub.Subscribe(key)
	live, err := h.lives.GetLive(r.Context(), token, key)
	if err != nil {
		h.hub.Unsubscribe(sub)
		http.Error(w, err.Error(), handler.StatusOf(err, http.StatusUnauthorized))
		return
	}
	initial, err := Encode(live)
	if err != nil {
		h.hub.Unsubscribe(sub)
		http.Error(w, "failed to encode live", http.StatusInternalServerError)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.hub.Unsubscribe(sub)
		h.logger.Warn("websocket upgrade failed", "live_key", key, "error", err)
		return
	}
	if initial.Completed {
		h.hub.Unsubscribe(sub)
	}

	h.logger.Info("stream connected", "live_key", key, "remote", r.RemoteAddr)

	go h.writePump(wsConn, sub, initial)
	go h.readPump(wsConn, sub)
}

// readPump only watches for the client going away; clients send nothing.
func (h *Handler) readPump(wsConn *websocket.Conn, sub *Subscription) {
	defer func() {
		h.hub.Unsubscribe(sub)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := wsConn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("stream read failed", "live_key", sub.Key, "error", err)
			}
			return
		}
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, sub *Subscription, initial Snapshot) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	if err := write(wsConn, initial.Data); err != nil {
		return
	}
	last := initial.Version

	for {
		select {
		case snapshot, ok := <-sub.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "live ended"))
				return
			}
			// already covered by a newer snapshot
			if snapshot.Version <= last {
				continue
			}
			last = snapshot.Version
			if err := write(wsConn, snapshot.Data); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func write(wsConn *websocket.Conn, data []byte) error {
	wsConn.SetWriteDeadline(time.Now().Add(writeWait))
	return wsConn.WriteMessage(websocket.TextMessage, data)
}
