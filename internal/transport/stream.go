package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rpggio/tasksync/internal/store"
	"github.com/rpggio/tasksync/internal/stream"
)

const (
	streamWriteTimeout = 10 * time.Second
	streamPingInterval = 30 * time.Second
	streamPongTimeout  = 2 * streamPingInterval
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// StreamMessage is one pushed store update.
type StreamMessage[T any] struct {
	Items   []T      `json:"items"`
	Version uint64   `json:"version"`
	Error   *Problem `json:"error,omitempty"`
}

type observable[T any] interface {
	Observe() *stream.Subscription[store.Update[T]]
}

// streamHandler pushes every published update of src over a websocket, starting with
// the latest one. The connection closes when the client goes away.
func streamHandler[T any](src observable[T], logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Debug("websocket upgrade failed", "error", err)
			return
		}
		defer ws.Close()

		sub := src.Observe()
		defer sub.Unsubscribe()

		closed := make(chan struct{})
		ws.SetReadDeadline(time.Now().Add(streamPongTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(streamPongTimeout))
		})
		go func() {
			defer close(closed)
			for {
				if _, _, err := ws.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ping := time.NewTicker(streamPingInterval)
		defer ping.Stop()

		for {
			select {
			case u, ok := <-sub.C():
				if !ok {
					return
				}
				msg := StreamMessage[T]{Items: u.Items, Version: u.Version}
				if u.Err != nil {
					problem := problemFor(u.Err)
					msg.Error = &problem
				}
				ws.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
				if err := ws.WriteJSON(msg); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			case <-ping.C:
				ws.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
				if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-closed:
				return
			case <-r.Context().Done():
				return
			}
		}
	}
}
