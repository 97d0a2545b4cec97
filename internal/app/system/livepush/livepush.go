// Package livepush streams livequery snapshots to a browser over a
// websocket. Each snapshot becomes one JSON Frame; the page decides how to
// re-render.
package livepush

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/filmhub/internal/app/system/livequery"
	"github.com/dalemusser/filmhub/internal/app/system/metrics"
	"github.com/dalemusser/filmhub/internal/app/system/usersession"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Frame is one message pushed to the browser.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// The zero CheckOrigin rejects cross-origin upgrades.
var upgrader = websocket.Upgrader{
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
	HandshakeTimeout: 10 * time.Second,
}

// Stream upgrades the request and writes one frame per snapshot of sub
// until the subscription ends, the client disconnects, or stop fires. It
// closes sub before returning.
func Stream[T any](w http.ResponseWriter, r *http.Request, view, frameType string, sub *livequery.Subscription[T], stop <-chan struct{}, logger *zap.Logger) {
	defer sub.Close()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		logger.Warn("websocket upgrade failed", zap.String("view", view), zap.Error(err))
		return
	}
	defer conn.Close()

	gauge := metrics.LiveStreams.WithLabelValues(view)
	gauge.Inc()
	defer gauge.Dec()

	gone := make(chan struct{})
	go readPump(conn, gone)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-sub.C():
			if !ok {
				if err := sub.Err(); err != nil {
					logger.Error("live query ended", zap.String("view", view), zap.Error(err))
				}
				closeConn(conn, websocket.CloseGoingAway, "stream ended")
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(Frame{Type: frameType, Data: snap}); err != nil {
				logger.Debug("websocket write failed", zap.String("view", view), zap.Error(err))
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-stop:
			closeConn(conn, websocket.ClosePolicyViolation, "signed out")
			return

		case <-gone:
			return
		}
	}
}

// readPump discards client messages and keeps the read deadline fresh. It
// closes gone when the client goes away.
func readPump(conn *websocket.Conn, gone chan<- struct{}) {
	defer close(gone)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func closeConn(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// SignedOut returns a channel closed when s no longer holds a user, or when
// ctx ends. A failed subscription counts as signed out.
func SignedOut(ctx context.Context, s *usersession.Session) <-chan struct{} {
	out := make(chan struct{})

	sub, err := s.Subscribe(ctx)
	if err != nil {
		close(out)
		return out
	}

	go func() {
		defer close(out)
		defer sub.Close()
		for {
			u, ok := sub.Next(ctx)
			if !ok || u == nil {
				return
			}
		}
	}()
	return out
}
