package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

const (
	wsDefaultWriteTimeout = 5 * time.Second
	wsCloseGrace          = 1 * time.Second
)

// WSGateway pushes termination events to devices over WebSocket. A device
// connects with its user_id and device_id and receives a JSON Event when its
// session is evicted or expires; the connection is then closed.
type WSGateway struct {
	log          *slog.Logger
	hub          *Hub
	writeTimeout time.Duration
}

// NewWSGateway constructs a gateway over the hub.
func NewWSGateway(log *slog.Logger, hub *Hub) *WSGateway {
	if log == nil {
		log = slog.Default()
	}
	return &WSGateway{log: log, hub: hub, writeTimeout: wsDefaultWriteTimeout}
}

// HandleWS upgrades the request and streams events until the session ends or
// the client disconnects.
func (g *WSGateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	deviceID := r.URL.Query().Get("device_id")
	if userID == "" || deviceID == "" {
		http.Error(w, "user_id and device_id are required", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		g.log.Warn("notify.ws.accept.fail", "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closed")

	events, cancel := g.hub.Subscribe(userID, deviceID)
	defer cancel()

	// CloseRead pumps incoming frames (we expect none) and cancels the
	// context when the client goes away.
	ctx := conn.CloseRead(r.Context())

	g.log.Debug("notify.ws.open", "user_id", userID, "device_id", deviceID)

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "bye")
			return
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "subscription closed")
				return
			}
			if err := g.writeEvent(ctx, conn, ev); err != nil {
				g.log.Warn("notify.ws.write.fail", "user_id", userID, "device_id", deviceID, "error", err)
				return
			}
			if ev.Type == EventEvicted || ev.Type == EventExpired {
				// Give the frame a moment to flush before closing.
				time.Sleep(wsCloseGrace)
				conn.Close(websocket.StatusNormalClosure, string(ev.Type))
				return
			}
		}
	}
}

func (g *WSGateway) writeEvent(ctx context.Context, conn *websocket.Conn, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, g.writeTimeout)
	defer cancel()
	return conn.Write(wctx, websocket.MessageText, raw)
}
